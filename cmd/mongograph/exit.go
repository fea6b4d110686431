package main

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	exitFailure      = 1 // invalid schema, failed validation or store error
	exitCommandError = 2 // bad flags, unreadable files
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func failure(message string, err error) *ExitError {
	return &ExitError{Code: exitFailure, Message: message, Err: err}
}

func commandError(message string, err error) *ExitError {
	return &ExitError{Code: exitCommandError, Message: message, Err: err}
}

func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitFailure
}
