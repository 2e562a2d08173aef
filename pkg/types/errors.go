// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
)

// ErrorKind classifies a pipeline failure.
type ErrorKind string

const (
	KindIO                ErrorKind = "io"
	KindMalformedTemplate ErrorKind = "malformed_template"
	KindRender            ErrorKind = "render"
	KindConversion        ErrorKind = "conversion"
	KindExport            ErrorKind = "export"
	KindCancelled         ErrorKind = "cancelled"
)

// CancelledMessage is the error text reported when the user declines to
// choose a destination.
const CancelledMessage = "Save cancelled"

// StageError is a failure raised by one pipeline stage. Error returns the
// cause message unchanged so callers can report it verbatim; Op and Kind
// carry the classification.
type StageError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err as a failure of kind raised during op.
func NewStageError(kind ErrorKind, op string, err error) error {
	return &StageError{Kind: kind, Op: op, Err: err}
}

// ErrCancelled marks a run the user declined to save.
var ErrCancelled = &StageError{Kind: KindCancelled, Op: "save", Err: errors.New(CancelledMessage)}

// KindOf returns the kind of the outermost StageError in err's chain, or
// the empty kind when err carries none.
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether any StageError in err's chain has the given kind.
func IsKind(err error, kind ErrorKind) bool {
	for err != nil {
		var se *StageError
		if !errors.As(err, &se) {
			return false
		}
		if se.Kind == kind {
			return true
		}
		err = se.Err
	}
	return false
}
