// Package services provides shared error classification and context plumbing
// for the optimization pipeline and its external collaborators.
//
// The sentinel errors here map one-to-one onto the pipeline's failure
// taxonomy: transient generative-service failures, structural validation
// failures, external compiler failures, and configuration problems. Wrapping
// errors with these markers lets the orchestrator route a failure into the
// correct retry loop (or terminal state) without string matching.
package services
