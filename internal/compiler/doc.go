// Package compiler drives the external LaTeX compiler against candidate
// documents inside isolated, disposable scratch workspaces.
//
// Every Compile call materializes the document into a uniquely-named
// subdirectory of the scratch root, runs the configured compiler binary under
// a hard wall-clock timeout, and converts the outcome into a structured
// latex.Diagnostic. The scratch directory is removed on every exit path,
// including timeouts and cancellation, so concurrent compiles never interfere
// and no partial artifacts leak.
package compiler
