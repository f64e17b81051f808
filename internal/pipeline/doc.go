// Package pipeline sequences the optimization run: one generative
// transformation followed by mechanical verification (structural validation,
// then compilation) and two independent bounded repair loops.
//
// The fix loop feeds the exact compiler diagnostic back to the generative
// service when a candidate fails to compile; the shrink loop asks for a
// condensed rewrite when a valid candidate exceeds the target page count.
// Both loops re-enter full verification, because a shrink can introduce a
// structural error and a fix can change the page count. Every exit path
// resolves to a Result; the pipeline never raises an unhandled fault to its
// caller.
package pipeline
