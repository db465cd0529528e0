package types

import (
	"errors"
	"fmt"
)

var (
	ErrInputNotFound  = errors.New("input not found")
	ErrNoInputFiles   = errors.New("no CSV files found in input directory")
	ErrSchemaMissing  = errors.New("required columns missing")
	ErrOutputWrite    = errors.New("failed to write output")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrUnknownSource  = errors.New("unknown source kind")
	ErrUnknownTarget  = errors.New("unsupported publish target")
	ErrNothingToIndex = errors.New("no rows to index")
)

// Exit codes returned by the gaa-etl binary.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitInputMissing  = 2
	ExitSchemaMissing = 3
	ExitOutputWrite   = 4
	ExitInvalidConfig = 5
)

// ErrorKind classifies a failed run.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInputMissing
	KindSchemaMissing
	KindOutputWrite
	KindInvalidConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindInputMissing:
		return "input missing"
	case KindSchemaMissing:
		return "schema missing"
	case KindOutputWrite:
		return "output write"
	case KindInvalidConfig:
		return "invalid config"
	default:
		return "internal"
	}
}

// RunError carries the classification of a failure up to main.
type RunError struct {
	Kind ErrorKind
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError wraps err with kind, or returns nil when err is nil.
func NewRunError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{Kind: kind, Err: err}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var runErr *RunError
	if errors.As(err, &runErr) {
		switch runErr.Kind {
		case KindInputMissing:
			return ExitInputMissing
		case KindSchemaMissing:
			return ExitSchemaMissing
		case KindOutputWrite:
			return ExitOutputWrite
		case KindInvalidConfig:
			return ExitInvalidConfig
		}
		return ExitFailure
	}

	switch {
	case errors.Is(err, ErrInputNotFound), errors.Is(err, ErrNoInputFiles):
		return ExitInputMissing
	case errors.Is(err, ErrSchemaMissing):
		return ExitSchemaMissing
	case errors.Is(err, ErrOutputWrite):
		return ExitOutputWrite
	case errors.Is(err, ErrInvalidConfig):
		return ExitInvalidConfig
	}
	return ExitFailure
}
