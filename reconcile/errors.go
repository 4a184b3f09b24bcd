package reconcile

import (
	"fmt"
)

type Step string

const (
	StepReadLocal  Step = "read_local"
	StepReadRemote Step = "read_remote"
	StepNormalize  Step = "normalize"
	StepCommit     Step = "commit"
)

// Error is the single failure reported by a reconciliation run. Kind is one
// of the collection_core sentinel errors.
type Error struct {
	Kind      error
	Step      Step
	PaymentID string
	Err       error
}

// Error implements error.
func (e *Error) Error() string {
	msg := fmt.Sprintf("reconcile %s: %s", e.Step, e.Kind)
	if e.PaymentID != "" {
		msg += fmt.Sprintf(" (payment %s)", e.PaymentID)
	}
	if e.Err != nil && e.Err != e.Kind {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
