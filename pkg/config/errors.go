package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownConfigField classifies strict YAML parse failures caused by unknown keys.
	// Use errors.Is(err, ErrUnknownConfigField) instead of string matching.
	ErrUnknownConfigField = errors.New("unknown config field")

	// ErrUnknownNetwork is matched by UnknownNetworkError.
	ErrUnknownNetwork = errors.New("unknown network")
)

// UnknownNetworkError is returned when a network name is not in the table.
type UnknownNetworkError struct {
	Name  string
	Known []string
}

func (e *UnknownNetworkError) Error() string {
	return fmt.Sprintf("network %q is not configured (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

func (e *UnknownNetworkError) Is(target error) bool {
	return target == ErrUnknownNetwork
}

// ValidationError collects every problem found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(format string, a ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, a...))
}
