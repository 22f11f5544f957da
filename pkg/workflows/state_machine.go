package workflows

// StateMachine enforces status transitions against an immutable table.
// The table is copied at construction time; queries never mutate it.
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewStateMachine creates a state machine from the given transition table
func NewStateMachine(table map[string][]string) *StateMachine {
	allowed := make(map[string][]string, len(table))
	for from, tos := range table {
		allowed[from] = append([]string(nil), tos...)
	}
	return &StateMachine{allowedTransitions: allowed}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the allowed next statuses for a given status.
// A terminal status yields an empty slice.
func (sm *StateMachine) AllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return append([]string(nil), allowed...)
}
