// Package cli implements the nestkey terminal client: a small REPL over a
// client.Backend with hidden PIN entry, themed tables and clipboard copy.
package cli
