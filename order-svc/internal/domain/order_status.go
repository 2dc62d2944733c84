package domain

import "fmt"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// AllOrderStatuses lists every status in lifecycle order.
var AllOrderStatuses = []OrderStatus{
	StatusPending,
	StatusPaid,
	StatusPreparing,
	StatusReady,
	StatusCompleted,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Next returns the statuses reachable from s in one step.
// Once the kitchen starts (preparing, ready) there is no path to cancelled.
func (s OrderStatus) Next() []OrderStatus {
	switch s {
	case StatusPending:
		return []OrderStatus{StatusPaid, StatusCancelled}
	case StatusPaid:
		return []OrderStatus{StatusPreparing, StatusCancelled}
	case StatusPreparing:
		return []OrderStatus{StatusReady}
	case StatusReady:
		return []OrderStatus{StatusCompleted}
	case StatusCompleted, StatusCancelled:
		return nil
	}
	return nil
}

func (s OrderStatus) Terminal() bool {
	return len(s.Next()) == 0
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range s.Next() {
		if next == target {
			return true
		}
	}
	return false
}

// Transition validates the move from s to target.
func (s OrderStatus) Transition(target OrderStatus) error {
	if !s.CanTransitionTo(target) {
		return &TransitionError{From: s, To: target}
	}
	return nil
}

// TransitionError is returned for any move outside the transition table.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
