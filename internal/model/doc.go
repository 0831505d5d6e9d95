// Package model defines the domain types and value objects for the
// denver CLI.
//
// This package contains pure data structures with no external dependencies.
// Declared container definitions are loaded once per invocation from the
// configuration file; live container records are snapshots fetched from the
// container engine on demand and never cached beyond a single listing call.
//
// The package also defines the tagged error type (Error) shared by every
// layer, the error kinds it carries, and the exit codes (ExitCode) each kind
// maps to at the process boundary.
package model
