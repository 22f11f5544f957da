package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanChangeStatusRoleScoping(t *testing.T) {
	table := NewLessonTransitionTable()

	// Only the teacher or the system may mark a lesson conducted.
	assert.True(t, table.CanChangeStatus(LessonScheduled, LessonConducted, RoleTeacher))
	assert.True(t, table.CanChangeStatus(LessonScheduled, LessonConducted, RoleSystem))
	assert.False(t, table.CanChangeStatus(LessonScheduled, LessonConducted, RoleManager))
	assert.False(t, table.CanChangeStatus(LessonScheduled, LessonConducted, RoleStudent))

	// Cancelling a conducted lesson and reopening a cancelled one are
	// manager-only actions.
	assert.True(t, table.CanChangeStatus(LessonConducted, LessonCancelled, RoleManager))
	assert.False(t, table.CanChangeStatus(LessonConducted, LessonCancelled, RoleTeacher))
	assert.True(t, table.CanChangeStatus(LessonCancelled, LessonScheduled, RoleManager))
	assert.False(t, table.CanChangeStatus(LessonCancelled, LessonScheduled, RoleSystem))
}

func TestCanChangeStatusAbsentEdges(t *testing.T) {
	table := NewLessonTransitionTable()

	// Edges not in the table are denied for every role.
	for _, role := range []Role{RoleSystem, RoleManager, RoleTeacher, RoleStudent} {
		assert.False(t, table.CanChangeStatus(LessonScheduled, LessonCompleted, role))
		assert.False(t, table.CanChangeStatus(LessonCompleted, LessonScheduled, role))
		assert.False(t, table.CanChangeStatus(LessonMissed, LessonScheduled, role))
	}
}

func TestAllowedForTerminalStatuses(t *testing.T) {
	table := NewLessonTransitionTable()

	for _, role := range []Role{RoleSystem, RoleManager, RoleTeacher, RoleStudent} {
		assert.Empty(t, table.AllowedFor(LessonCompleted, role))
		assert.Empty(t, table.AllowedFor(LessonMissed, role))
	}
}

func TestAllowedFor(t *testing.T) {
	table := NewLessonTransitionTable()

	assert.ElementsMatch(t,
		[]LessonStatus{LessonConducted, LessonCancelled, LessonMissed},
		table.AllowedFor(LessonScheduled, RoleTeacher))
	assert.ElementsMatch(t,
		[]LessonStatus{LessonCompleted, LessonCancelled},
		table.AllowedFor(LessonConducted, RoleManager))
	assert.Empty(t, table.AllowedFor(LessonScheduled, RoleStudent))
}

func TestValidateChange(t *testing.T) {
	table := NewLessonTransitionTable()

	err := table.ValidateChange(LessonScheduled, ChangeRequest{NewStatus: LessonConducted}, RoleTeacher)
	assert.NoError(t, err)

	// Same status is never a valid change, even where a self edge could exist.
	err = table.ValidateChange(LessonScheduled, ChangeRequest{NewStatus: LessonScheduled}, RoleManager)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Unknown status strings are rejected before the table lookup.
	err = table.ValidateChange(LessonScheduled, ChangeRequest{NewStatus: "PAUSED"}, RoleManager)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Role not on the edge.
	err = table.ValidateChange(LessonConducted, ChangeRequest{NewStatus: LessonCancelled}, RoleTeacher)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("MANAGER")
	assert.True(t, ok)
	assert.Equal(t, RoleManager, role)

	_, ok = ParseRole("manager")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)
}
