package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/cadence/internal/logger"
)

var (
	// ErrInconsistentInput means the event source returned data that violates
	// the window contract. It indicates a caller bug and is never retried.
	ErrInconsistentInput = errors.New("inconsistent input")
	// ErrSourceUnavailable means the event source could not be queried.
	ErrSourceUnavailable = errors.New("event source unavailable")
	// ErrCategoryNotFound is returned when a category id has no matching row.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrEventNotFound is returned when an event id has no matching row.
	ErrEventNotFound = errors.New("event not found")
	// ErrCategoryExists is returned when a label is already taken.
	ErrCategoryExists = errors.New("category already exists")
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
