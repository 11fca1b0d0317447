package workflow

import (
	"context"
	"errors"
)

var (
	// ErrInvalidTransition means the trigger is not configured for the current state
	ErrInvalidTransition = errors.New("submission step not allowed from current state")

	// ErrBlocked means every configured transition was refused by its guard
	ErrBlocked = errors.New("submission step blocked")
)

// Trigger is a user action or a store outcome on the new bill form
type Trigger string

const (
	TriggerChooseFile Trigger = "CHOOSE_FILE"
	TriggerAcceptFile Trigger = "ACCEPT_FILE"
	TriggerRejectFile Trigger = "REJECT_FILE"
	TriggerSubmit     Trigger = "SUBMIT"
	TriggerSucceed    Trigger = "SUCCEED"
	TriggerFail       Trigger = "FAIL"
)

func (t Trigger) String() string {
	return string(t)
}

// TransitionFunc observes a completed transition
type TransitionFunc func(from, to State, trigger Trigger)

// StateMachine holds the step a submission is at. It is not safe for
// concurrent use; callers serialize Fire.
type StateMachine interface {
	State() State
	CanFire(trigger Trigger) bool
	Fire(ctx context.Context, trigger Trigger) error
	OnTransition(fn TransitionFunc)
}
