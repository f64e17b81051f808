// Package daemon coordinates the long-running tailord process.
//
// It wires configuration, the optimization pipeline, and run-history storage
// into a single lifecycle with flock-based locking to prevent multiple
// instances, and serves the HTTP API (health, optimize, compile, history)
// plus optional static frontend assets.
//
// Keep orchestration logic here: pipeline steps live in their own packages
// while the daemon focuses on startup, shutdown, and the HTTP surface.
package daemon
