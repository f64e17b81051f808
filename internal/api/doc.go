// Package api defines the transport-level request and response types for the
// daemon's HTTP surface and the conversions from internal pipeline and
// history types. The CLI uses the same types to decode daemon responses.
package api
