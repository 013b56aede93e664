package engine

import (
	"errors"
	"fmt"

	"github.com/willwagner/markupeditor/internal/edit"
	"github.com/willwagner/markupeditor/internal/position"
	"github.com/willwagner/markupeditor/internal/schema"
)

// ErrorKind is the host-facing failure category carried on error
// events.
type ErrorKind string

const (
	ErrSchemaViolation ErrorKind = "schemaViolation"
	ErrStyle           ErrorKind = "styleError"
	ErrOutOfRange      ErrorKind = "outOfRange"
	ErrNoCommonList    ErrorKind = "noCommonList"
	ErrNotInList       ErrorKind = "notInList"
	ErrNotInTable      ErrorKind = "notInTable"
	ErrNoSingleLink    ErrorKind = "noSingleLinkSelection"
	ErrNoImage         ErrorKind = "noImageSelection"
	ErrUnknownID       ErrorKind = "unknownId"
	ErrInternal        ErrorKind = "internal"
)

// Severity decides whether a failure is surfaced to the host as an
// error event or only returned to the caller. Precondition misses on
// structural commands (not in a list, not in a table, no single link)
// are expected during normal editing and stay silent.
type Severity int

const (
	Silent Severity = iota
	Alertable
)

// CommandError is the uniform failure value returned by engine
// commands. The document is never left changed by a failed command.
type CommandError struct {
	Op       string
	Kind     ErrorKind
	Severity Severity
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func classify(op string, err error) *CommandError {
	ce := &CommandError{Op: op, Err: err, Kind: ErrInternal, Severity: Alertable}
	switch {
	case errors.Is(err, schema.ErrViolation):
		ce.Kind = ErrSchemaViolation
	case errors.Is(err, position.ErrOutOfRange):
		ce.Kind = ErrOutOfRange
	case errors.Is(err, edit.ErrStyle):
		ce.Kind = ErrStyle
	case errors.Is(err, edit.ErrUnknownID):
		ce.Kind = ErrUnknownID
	case errors.Is(err, edit.ErrNoCommonList):
		ce.Kind, ce.Severity = ErrNoCommonList, Silent
	case errors.Is(err, edit.ErrNotInList):
		ce.Kind, ce.Severity = ErrNotInList, Silent
	case errors.Is(err, edit.ErrNotInTable):
		ce.Kind, ce.Severity = ErrNotInTable, Silent
	case errors.Is(err, edit.ErrNoSingleLinkSelection):
		ce.Kind, ce.Severity = ErrNoSingleLink, Silent
	case errors.Is(err, edit.ErrNoImageSelection):
		ce.Kind, ce.Severity = ErrNoImage, Silent
	}
	return ce
}
