package offers

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists the administrator actions allowed from each status.
// expired and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusDraft:  {StatusActive, StatusCancelled},
	StatusActive: {StatusPaused, StatusExpired, StatusCancelled},
	StatusPaused: {StatusActive, StatusExpired, StatusCancelled},
}

// Transition checks that an offer may move from one status to another.
func Transition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusExpired || s == StatusCancelled
}
