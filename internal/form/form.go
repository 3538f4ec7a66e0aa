// Package form models a mutation-backed form: editable values plus a
// submission state that is exactly one of Idle, Submitting, Succeeded or
// Failed.
package form

import (
	"github.com/tgienger/perplex/internal/api"
)

// State is the submission state of a form. The concrete types below are the
// only implementations.
type State interface {
	state()
}

// Idle is the state before the first submission.
type Idle struct{}

// Submitting means a request is in flight.
type Submitting struct {
	Intent Intent
}

// Succeeded means the last submission was accepted. ID names the created or
// edited entity.
type Succeeded struct {
	ID     int64
	Intent Intent
}

// Failed means the last submission was rejected.
type Failed struct {
	Err error
}

func (Idle) state()       {}
func (Submitting) state() {}
func (Succeeded) state()  {}
func (Failed) state()     {}

// Intent says what happens after a successful submission.
type Intent int

const (
	// SaveAndNew keeps the form open with cleared fields.
	SaveAndNew Intent = iota
	// SaveAndClose hands the new ID to the caller, which closes the form.
	SaveAndClose
)

// Form holds values of type V and the submission state.
type Form[V any] struct {
	Values   V
	defaults func() V
	state    State
}

// New returns an idle form whose values start at defaults().
func New[V any](defaults func() V) *Form[V] {
	return &Form[V]{
		Values:   defaults(),
		defaults: defaults,
		state:    Idle{},
	}
}

// State returns the current submission state.
func (f *Form[V]) State() State {
	return f.state
}

// Submitting reports whether a request is in flight.
func (f *Form[V]) Submitting() bool {
	_, ok := f.state.(Submitting)
	return ok
}

// Begin moves the form to Submitting. It returns false, and changes
// nothing, when a submission is already in flight.
func (f *Form[V]) Begin(intent Intent) bool {
	if f.Submitting() {
		return false
	}
	f.state = Submitting{Intent: intent}
	return true
}

// Succeed records a successful submission, resets the values to their
// defaults, and returns the intent the submission was started with.
func (f *Form[V]) Succeed(id int64) Intent {
	intent := SaveAndNew
	if s, ok := f.state.(Submitting); ok {
		intent = s.Intent
	}
	f.Values = f.defaults()
	f.state = Succeeded{ID: id, Intent: intent}
	return intent
}

// Fail records a rejected submission. Values are kept so the user can
// correct and resubmit.
func (f *Form[V]) Fail(err error) {
	f.state = Failed{Err: err}
}

// Reset discards values and state, as when the form is reopened.
func (f *Form[V]) Reset() {
	f.Values = f.defaults()
	f.state = Idle{}
}

// Error returns the message of the last failure, or "" when the form is not
// in Failed.
func (f *Form[V]) Error() string {
	if failed, ok := f.state.(Failed); ok {
		return api.Message(failed.Err)
	}
	return ""
}
