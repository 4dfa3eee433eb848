package internships

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError describes a rejected posting status change.
type TransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move internship from %s to %s: %s", e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

var transitions = map[Status][]Status{
	StatusPending:  {StatusActive, StatusRejected},
	StatusActive:   {StatusClosed},
	StatusClosed:   {StatusActive},
	StatusRejected: nil,
}

// CheckTransition validates a status change. Leaving pending and entering
// rejected are moderation steps reserved to admins. Same-status is allowed.
func CheckTransition(from, to Status, isAdmin bool) error {
	if from == to {
		return nil
	}
	allowed := false
	for _, candidate := range transitions[from] {
		if candidate == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return &TransitionError{From: from, To: to, Reason: "transition not allowed"}
	}
	if !isAdmin && (from == StatusPending || to == StatusRejected) {
		return &TransitionError{From: from, To: to, Reason: "only an admin can moderate postings"}
	}
	return nil
}
