package booking

import (
	"fmt"
	"time"
)

// InvalidRequestError indicates a request that fails validation before it
// reaches the policy layer: a missing required field or a value that
// cannot be interpreted.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SlotTakenError indicates the requested interval collides with an
// existing appointment (including the buffer around it).
type SlotTakenError struct {
	Start time.Time
	End   time.Time
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("the time slot starting %s is already booked", e.Start.Format("2006-01-02 15:04"))
}

// NotFoundError indicates no appointment exists with the given ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no appointment found with ID %s", e.ID)
}
