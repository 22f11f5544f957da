package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultEvaluator() *Evaluator {
	return NewEvaluator(DefaultRules(DefaultRuleConfig()))
}

func sweepLesson(status LessonStatus, startsAt time.Time, confirmed bool) SweepLesson {
	return SweepLesson{
		ID:                 uuid.New(),
		StudentID:          uuid.New(),
		TeacherID:          uuid.New(),
		Status:             status,
		StartsAt:           startsAt,
		Duration:           60 * time.Minute,
		ConfirmedByTeacher: confirmed,
	}
}

func TestEvaluateConductsStartedLesson(t *testing.T) {
	now := time.Now()
	lesson := sweepLesson(LessonScheduled, now.Add(-10*time.Minute), true)

	rule, fired := defaultEvaluator().Evaluate(lesson, now)

	require.True(t, fired)
	assert.Equal(t, LessonScheduled, rule.From)
	assert.Equal(t, LessonConducted, rule.To)
}

func TestEvaluateCancelsUnconfirmedLesson(t *testing.T) {
	now := time.Now()
	lesson := sweepLesson(LessonScheduled, now.Add(30*time.Minute), false)

	rule, fired := defaultEvaluator().Evaluate(lesson, now)

	require.True(t, fired)
	assert.Equal(t, LessonCancelled, rule.To)
}

func TestEvaluateConfirmedLessonNotCancelled(t *testing.T) {
	now := time.Now()
	lesson := sweepLesson(LessonScheduled, now.Add(30*time.Minute), true)

	_, fired := defaultEvaluator().Evaluate(lesson, now)

	assert.False(t, fired)
}

func TestEvaluateMissesLessonPastThreshold(t *testing.T) {
	now := time.Now()
	// 20 minutes past start with a 15 minute threshold: MISSED wins over
	// CONDUCTED even though the scheduled hour is still open.
	lesson := sweepLesson(LessonScheduled, now.Add(-20*time.Minute), true)

	rule, fired := defaultEvaluator().Evaluate(lesson, now)

	require.True(t, fired)
	assert.Equal(t, LessonMissed, rule.To)
}

func TestEvaluateCompletesConductedLesson(t *testing.T) {
	now := time.Now()
	lesson := sweepLesson(LessonConducted, now.Add(-90*time.Minute), true)

	rule, fired := defaultEvaluator().Evaluate(lesson, now)

	require.True(t, fired)
	assert.Equal(t, LessonConducted, rule.From)
	assert.Equal(t, LessonCompleted, rule.To)
}

func TestEvaluateConductedLessonStillRunning(t *testing.T) {
	now := time.Now()
	lesson := sweepLesson(LessonConducted, now.Add(-30*time.Minute), true)

	_, fired := defaultEvaluator().Evaluate(lesson, now)

	assert.False(t, fired)
}

func TestEvaluateTerminalStatusesNeverFire(t *testing.T) {
	now := time.Now()
	for _, status := range []LessonStatus{LessonCompleted, LessonCancelled, LessonMissed} {
		lesson := sweepLesson(status, now.Add(-2*time.Hour), false)
		_, fired := defaultEvaluator().Evaluate(lesson, now)
		assert.False(t, fired, "status %s should not fire", status)
	}
}

func TestEvaluateAtMostOneRulePerPass(t *testing.T) {
	now := time.Now()
	// Far enough past start that miss, conduct, and (had it been conducted)
	// complete could all be argued; exactly one rule fires and it is the
	// highest-priority match.
	lesson := sweepLesson(LessonScheduled, now.Add(-50*time.Minute), true)

	rule, fired := defaultEvaluator().Evaluate(lesson, now)

	require.True(t, fired)
	assert.Equal(t, LessonMissed, rule.To)
}

func TestEvaluateCustomThresholds(t *testing.T) {
	now := time.Now()
	rules := DefaultRules(RuleConfig{
		CancelWindow:  2 * time.Hour,
		MissThreshold: 5 * time.Minute,
	})
	evaluator := NewEvaluator(rules)

	// Unconfirmed lesson 90 minutes out: inside the widened cancel window.
	lesson := sweepLesson(LessonScheduled, now.Add(90*time.Minute), false)
	rule, fired := evaluator.Evaluate(lesson, now)
	require.True(t, fired)
	assert.Equal(t, LessonCancelled, rule.To)

	// 10 minutes past start: past the tightened miss threshold.
	lesson = sweepLesson(LessonScheduled, now.Add(-10*time.Minute), true)
	rule, fired = evaluator.Evaluate(lesson, now)
	require.True(t, fired)
	assert.Equal(t, LessonMissed, rule.To)
}

func TestRulesCopiedAtConstruction(t *testing.T) {
	rules := DefaultRules(DefaultRuleConfig())
	evaluator := NewEvaluator(rules)

	rules[0] = Rule{
		From: LessonScheduled,
		To:   LessonCompleted,
		Applies: func(SweepLesson, time.Time) bool {
			return true
		},
	}

	now := time.Now()
	lesson := sweepLesson(LessonScheduled, now.Add(30*time.Minute), false)
	rule, fired := evaluator.Evaluate(lesson, now)

	require.True(t, fired)
	assert.Equal(t, LessonCancelled, rule.To)
}
