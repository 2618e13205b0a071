package network

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("entity not found")
	ErrNameTaken    = errors.New("name already taken in group")
	ErrGadgetOutput = errors.New("gadget output contacts are written only by the gadget body")
	ErrRootGroup    = errors.New("operation not allowed on the root group")
	ErrUnknownKind  = errors.New("unknown gadget kind")
)

// ConnectionError rejects an illegal wire before any mutation. It names both
// endpoints so callers can surface the offending pair.
type ConnectionError struct {
	From   ID
	To     ID
	Reason string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot wire %s -> %s: %s", e.From, e.To, e.Reason)
}

// ValidationError rejects malformed arguments (missing ids, wrong parent)
// before any mutation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
