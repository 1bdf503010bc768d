package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports a field value that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation error: %s %s.", e.Field, e.Reason)
}

// NotFoundError reports a record lookup that found nothing.
type NotFoundError struct {
	Type string
	Keys []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with key: [%s]", e.Type, strings.Join(e.Keys, ", "))
}

// DuplicateKeyError reports an attempt to store a record under a
// composite key that is already taken.
type DuplicateKeyError struct {
	Type string
	Keys []string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s[%s] already listed", e.Type, strings.Join(e.Keys, ", "))
}

// UnknownCommandError reports a command verb with no registered handler.
type UnknownCommandError struct {
	Verb string
}

func (e *UnknownCommandError) Error() string {
	return "Invalid command " + e.Verb
}

// ArityError reports a command invoked with the wrong number of arguments.
type ArityError struct {
	Verb  string
	Given int
	Min   int
	Max   int
}

func (e *ArityError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("%s: wrong number of arguments (given %d, expected %d)", e.Verb, e.Given, e.Min)
	}
	return fmt.Sprintf("%s: wrong number of arguments (given %d, expected %d..%d)", e.Verb, e.Given, e.Min, e.Max)
}
