package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestMachine() *StateMachine {
	return NewStateMachine(map[string][]string{
		"DRAFT":    {"REVIEW", "ARCHIVED"},
		"REVIEW":   {"APPROVED", "DRAFT"},
		"APPROVED": {},
		"ARCHIVED": {"DRAFT"},
	})
}

func TestCanTransition(t *testing.T) {
	sm := newTestMachine()

	assert.True(t, sm.CanTransition("DRAFT", "REVIEW"))
	assert.True(t, sm.CanTransition("ARCHIVED", "DRAFT"))
	assert.False(t, sm.CanTransition("DRAFT", "APPROVED"))
	assert.False(t, sm.CanTransition("APPROVED", "DRAFT"))
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	sm := newTestMachine()

	assert.False(t, sm.CanTransition("UNKNOWN", "DRAFT"))
	assert.False(t, sm.CanTransition("DRAFT", "UNKNOWN"))
}

func TestAllowedTransitions(t *testing.T) {
	sm := newTestMachine()

	assert.ElementsMatch(t, []string{"REVIEW", "ARCHIVED"}, sm.AllowedTransitions("DRAFT"))
	assert.Empty(t, sm.AllowedTransitions("APPROVED"))
	assert.Empty(t, sm.AllowedTransitions("UNKNOWN"))
}

func TestTableIsCopiedAtConstruction(t *testing.T) {
	table := map[string][]string{"A": {"B"}}
	sm := NewStateMachine(table)

	table["A"][0] = "C"
	table["X"] = []string{"Y"}

	assert.True(t, sm.CanTransition("A", "B"))
	assert.False(t, sm.CanTransition("A", "C"))
	assert.False(t, sm.CanTransition("X", "Y"))
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	sm := newTestMachine()

	got := sm.AllowedTransitions("ARCHIVED")
	got[0] = "APPROVED"

	assert.False(t, sm.CanTransition("ARCHIVED", "APPROVED"))
	assert.True(t, sm.CanTransition("ARCHIVED", "DRAFT"))
}
