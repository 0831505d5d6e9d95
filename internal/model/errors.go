package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure. Every error that crosses a package
// boundary in denver is an *Error carrying one of these kinds.
type ErrorKind int

const (
	// KindGeneral is used for errors that were not produced by denver itself.
	KindGeneral ErrorKind = iota

	// KindUnknownContainer means the requested name is not declared.
	KindUnknownContainer

	// KindConfig means the configuration file could not be read or is invalid.
	KindConfig

	// KindDockerUnavailable means the engine could not be reached.
	KindDockerUnavailable

	// KindBuild means an image build failed.
	KindBuild

	// KindRun means creating or starting a container failed, or the
	// filesystem watch backing watch mode failed.
	KindRun

	// KindStop means stopping a container failed.
	KindStop

	// KindRemove means removing a container failed.
	KindRemove

	// KindList means listing containers failed.
	KindList

	// KindInvalidPattern means a name pattern is not a valid regular expression.
	KindInvalidPattern

	// KindUnknownShell means completion was requested for an unsupported shell.
	KindUnknownShell
)

var kindNames = map[ErrorKind]string{
	KindGeneral:           "general",
	KindUnknownContainer:  "unknown-container",
	KindConfig:            "config",
	KindDockerUnavailable: "docker-unavailable",
	KindBuild:             "build",
	KindRun:               "run",
	KindStop:              "stop",
	KindRemove:            "remove",
	KindList:              "list",
	KindInvalidPattern:    "invalid-pattern",
	KindUnknownShell:      "unknown-shell",
}

// String returns a stable lowercase identifier for the kind.
func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ExitCode defines the process exit codes returned by the CLI.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the configuration or a user-supplied
	// argument (name, pattern, shell) was rejected.
	ExitConfigError ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitBuildFailed indicates an image build failed.
	ExitBuildFailed ExitCode = 4

	// ExitRuntimeError indicates a container operation failed.
	ExitRuntimeError ExitCode = 5
)

// ExitCode returns the process exit code for the kind.
func (k ErrorKind) ExitCode() ExitCode {
	switch k {
	case KindUnknownContainer, KindConfig, KindInvalidPattern, KindUnknownShell:
		return ExitConfigError
	case KindDockerUnavailable:
		return ExitDockerNotRunning
	case KindBuild:
		return ExitBuildFailed
	case KindRun, KindStop, KindRemove, KindList:
		return ExitRuntimeError
	default:
		return ExitGeneralError
	}
}

// Error is the tagged error type used across denver. It carries a kind,
// a human-readable message, and an optional underlying error.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind and an empty message, so
// callers can write errors.Is(err, &model.Error{Kind: model.KindBuild}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// NewError creates a new Error with the given kind and message.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a new Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a new Error that wraps an existing error.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindGeneral if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneral
}
