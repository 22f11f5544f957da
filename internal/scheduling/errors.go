package scheduling

import "errors"

// ErrInvalidTransition is returned when a requested status change is not in
// the transition table, is disallowed for the requester's role, or proposes
// the entity's current status. It is raised before any store call.
var ErrInvalidTransition = errors.New("invalid status transition")
