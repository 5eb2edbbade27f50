package reminder

import (
	"errors"
	"fmt"

	"tradecrm/internal/model"
)

// ErrNotFound reports that the requested reminder or related entity does
// not exist for the calling user. A record owned by someone else yields
// the same error, so callers cannot probe for other users' data.
var ErrNotFound = errors.New("not found")

// ErrDependency marks a related-entity lookup that failed for a reason
// other than absence (store unavailable and the like). Wrap it with
// fmt.Errorf("%w: ...") so errors.Is still matches.
var ErrDependency = errors.New("dependency failure")

// ValidationError reports an input that violates the engine's bounds.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidStateError reports a status transition that is not allowed from
// the reminder's current status.
type InvalidStateError struct {
	Current   model.ReminderStatus
	Requested model.ReminderStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot transition reminder from %s to %s", e.Current, e.Requested)
}
