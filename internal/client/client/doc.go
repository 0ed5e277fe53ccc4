// Package client gives the terminal UI one way to run operations whether
// the vault lives in-process (Local) or behind a nestkeyd daemon
// (GRPCClient).
//
// Transport failures surface as errors (ErrUnavailable); everything the
// vault itself reports comes back inside operations.Result.
package client
