package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// SweepLesson is the slice of a lesson the evaluator needs to decide an
// automatic transition. StartsAt and Duration define the closed interval
// [StartsAt, StartsAt+Duration).
type SweepLesson struct {
	ID                 uuid.UUID
	StudentID          uuid.UUID
	TeacherID          uuid.UUID
	Status             LessonStatus
	StartsAt           time.Time
	Duration           time.Duration
	ConfirmedByTeacher bool
}

// EndsAt returns the exclusive end of the lesson interval.
func (l SweepLesson) EndsAt() time.Time {
	return l.StartsAt.Add(l.Duration)
}

// Rule is one automatic transition rule. Applies is a pure predicate over the
// lesson and the current time.
type Rule struct {
	From        LessonStatus
	To          LessonStatus
	Description string
	Applies     func(l SweepLesson, now time.Time) bool
}

// RuleConfig holds the wall-clock thresholds of the default rules. The sweep
// interval is configured separately; it must be short enough to catch the
// CancelWindow and MissThreshold windows reliably.
type RuleConfig struct {
	// CancelWindow is how close to start an unconfirmed lesson gets
	// auto-cancelled.
	CancelWindow time.Duration
	// MissThreshold is how long after start a still-scheduled lesson is
	// considered missed.
	MissThreshold time.Duration
}

// DefaultRuleConfig returns the default thresholds.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		CancelWindow:  60 * time.Minute,
		MissThreshold: 15 * time.Minute,
	}
}

// DefaultRules builds the automatic rule list in priority order.
//
// The miss rule is ordered ahead of the conduct rule: once a lesson has sat
// unconducted past the miss threshold it is marked MISSED even while the
// scheduled interval is still open.
func DefaultRules(cfg RuleConfig) []Rule {
	return []Rule{
		{
			From:        LessonScheduled,
			To:          LessonCancelled,
			Description: "teacher did not confirm within the pre-start cancel window",
			Applies: func(l SweepLesson, now time.Time) bool {
				if l.ConfirmedByTeacher {
					return false
				}
				untilStart := l.StartsAt.Sub(now)
				return untilStart > 0 && untilStart <= cfg.CancelWindow
			},
		},
		{
			From:        LessonScheduled,
			To:          LessonMissed,
			Description: "lesson was never conducted after the miss threshold",
			Applies: func(l SweepLesson, now time.Time) bool {
				return now.After(l.StartsAt.Add(cfg.MissThreshold))
			},
		},
		{
			From:        LessonScheduled,
			To:          LessonConducted,
			Description: "lesson interval has started",
			Applies: func(l SweepLesson, now time.Time) bool {
				return !now.Before(l.StartsAt) && now.Before(l.EndsAt())
			},
		},
		{
			From:        LessonConducted,
			To:          LessonCompleted,
			Description: "lesson interval has ended",
			Applies: func(l SweepLesson, now time.Time) bool {
				return !now.Before(l.EndsAt())
			},
		},
	}
}

// Evaluator decides automatic transitions against a fixed rule list. The rule
// list is copied at construction and injected everywhere it is needed; there
// is no package-level mutable rule state.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator creates an evaluator over the given rules.
func NewEvaluator(rules []Rule) *Evaluator {
	return &Evaluator{rules: append([]Rule(nil), rules...)}
}

// Evaluate returns the first rule whose source status matches the lesson and
// whose predicate holds at now. At most one rule fires per pass; if none
// applies the second result is false.
func (e *Evaluator) Evaluate(l SweepLesson, now time.Time) (Rule, bool) {
	for _, rule := range e.rules {
		if rule.From != l.Status {
			continue
		}
		if rule.Applies(l, now) {
			return rule, true
		}
	}
	return Rule{}, false
}
