// Package preflight provides readiness checks for the external compiler,
// the generative API, and the filesystem paths the daemon depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and refuses to serve when a
//     required check fails, so a misconfigured host fails fast instead of
//     failing on the first request.
//   - The CLI "tailor status" command uses the individual check functions
//     to display host health.
package preflight
