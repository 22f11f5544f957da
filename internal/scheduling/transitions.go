package scheduling

import (
	"fmt"

	"tutor-school/crm-portal/crm-portal-backend/pkg/workflows"
)

// NewGroupLessonStateMachine builds the transition table for group lessons.
// COMPLETED is terminal; CANCELLED may be reopened to SCHEDULED (reschedule).
func NewGroupLessonStateMachine() *workflows.StateMachine {
	return workflows.NewStateMachine(map[string][]string{
		string(GroupScheduled):  {string(GroupConfirmed), string(GroupCancelled), string(GroupPostponed)},
		string(GroupConfirmed):  {string(GroupInProgress), string(GroupCancelled), string(GroupPostponed)},
		string(GroupInProgress): {string(GroupCompleted), string(GroupCancelled)},
		string(GroupCompleted):  {},
		string(GroupCancelled):  {string(GroupScheduled)},
		string(GroupPostponed):  {string(GroupScheduled), string(GroupCancelled)},
	})
}

type lessonEdge struct {
	from LessonStatus
	to   LessonStatus
}

// LessonTransitionTable holds the role-scoped transition edges for individual
// lessons. The table is built once and never mutated afterwards.
type LessonTransitionTable struct {
	edges map[lessonEdge][]Role
}

// NewLessonTransitionTable builds the default role-scoped table.
//
// Marking a lesson conducted is reserved for the teacher who ran it (or the
// automatic evaluator); reopening a cancelled lesson is a manager action.
func NewLessonTransitionTable() *LessonTransitionTable {
	return &LessonTransitionTable{
		edges: map[lessonEdge][]Role{
			{LessonScheduled, LessonConducted}: {RoleTeacher, RoleSystem},
			{LessonScheduled, LessonCancelled}: {RoleTeacher, RoleManager, RoleSystem},
			{LessonScheduled, LessonMissed}:    {RoleTeacher, RoleManager, RoleSystem},
			{LessonConducted, LessonCompleted}: {RoleTeacher, RoleManager, RoleSystem},
			{LessonConducted, LessonCancelled}: {RoleManager},
			{LessonCancelled, LessonScheduled}: {RoleManager},
		},
	}
}

// CanChangeStatus reports whether role may move a lesson from current to
// proposed. Edges absent from the table are denied for every role.
func (t *LessonTransitionTable) CanChangeStatus(current, proposed LessonStatus, role Role) bool {
	roles, ok := t.edges[lessonEdge{current, proposed}]
	if !ok {
		return false
	}
	for _, allowed := range roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// AllowedFor returns the statuses role may move a lesson to from current.
// A terminal status yields an empty slice.
func (t *LessonTransitionTable) AllowedFor(current LessonStatus, role Role) []LessonStatus {
	var allowed []LessonStatus
	for edge, roles := range t.edges {
		if edge.from != current {
			continue
		}
		for _, r := range roles {
			if r == role {
				allowed = append(allowed, edge.to)
				break
			}
		}
	}
	return allowed
}

// ChangeRequest is a user-initiated status change for an individual lesson.
type ChangeRequest struct {
	NewStatus     LessonStatus `json:"new_status"`
	Reason        string       `json:"reason,omitempty"`
	DeductPackage bool         `json:"deduct_package,omitempty"`
}

// ValidateChange gates a manual status change before any store call.
// A proposal equal to the current status is never a valid change.
func (t *LessonTransitionTable) ValidateChange(current LessonStatus, req ChangeRequest, role Role) error {
	if !req.NewStatus.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, req.NewStatus)
	}
	if req.NewStatus == current {
		return fmt.Errorf("%w: lesson is already %s", ErrInvalidTransition, current)
	}
	if !t.CanChangeStatus(current, req.NewStatus, role) {
		return fmt.Errorf("%w: %s -> %s is not allowed for %s", ErrInvalidTransition, current, req.NewStatus, role)
	}
	return nil
}
