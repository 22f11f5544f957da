package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// LessonStore is the persistence surface the sweeper needs. The backend's
// persisted state is authoritative; the sweeper re-fetches every tick and
// never caches lessons across ticks.
type LessonStore interface {
	// ListForSweep returns the lessons scheduled on the given day, in fetch
	// order, projected to what the evaluator needs.
	ListForSweep(ctx context.Context, day time.Time) ([]SweepLesson, error)
	// ApplyAutoTransition persists an automatic status change.
	ApplyAutoTransition(ctx context.Context, lessonID uuid.UUID, from, to LessonStatus, reason string) error
}

// StatusNotifier emits a best-effort notification for an applied transition.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, recipientID, lessonID uuid.UUID, from, to LessonStatus, reason string) error
}

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Evaluated   int
	Transitions int
	Failures    int
}

// Sweeper runs the evaluator over a day's lessons and applies fired rules.
type Sweeper struct {
	store     LessonStore
	notifier  StatusNotifier
	evaluator *Evaluator
	logger    *zap.Logger
	now       func() time.Time
}

// NewSweeper creates a sweeper.
func NewSweeper(store LessonStore, notifier StatusNotifier, evaluator *Evaluator, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:     store,
		notifier:  notifier,
		evaluator: evaluator,
		logger:    logger,
		now:       time.Now,
	}
}

// SweepOnce evaluates today's lessons sequentially. A failure on one lesson
// is logged and skipped; it never aborts the rest of the batch.
func (s *Sweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	now := s.now()

	lessons, err := s.store.ListForSweep(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to fetch lessons for sweep: %w", err)
	}

	result := SweepResult{Evaluated: len(lessons)}

	for _, lesson := range lessons {
		rule, fired := s.evaluator.Evaluate(lesson, now)
		if !fired {
			continue
		}

		if err := s.store.ApplyAutoTransition(ctx, lesson.ID, rule.From, rule.To, rule.Description); err != nil {
			result.Failures++
			s.logger.Error("Failed to apply automatic transition",
				zap.String("lesson_id", lesson.ID.String()),
				zap.String("from", string(rule.From)),
				zap.String("to", string(rule.To)),
				zap.Error(err))
			continue
		}

		result.Transitions++
		s.logger.Info("Applied automatic transition",
			zap.String("lesson_id", lesson.ID.String()),
			zap.String("from", string(rule.From)),
			zap.String("to", string(rule.To)),
			zap.String("rule", rule.Description))

		// Notification is outside the transition's atomicity boundary.
		if err := s.notifier.NotifyStatusChange(ctx, lesson.StudentID, lesson.ID, rule.From, rule.To, rule.Description); err != nil {
			s.logger.Warn("Failed to send status change notification",
				zap.String("lesson_id", lesson.ID.String()),
				zap.Error(err))
		}
	}

	return result, nil
}

// SweepManager schedules recurring sweeps. Overlapping ticks are serialized:
// a tick is skipped while the previous one is still running.
type SweepManager struct {
	cron    *cron.Cron
	sweeper *Sweeper
	logger  *zap.Logger
	entry   cron.EntryID
}

// NewSweepManager creates a manager that sweeps at the given interval.
func NewSweepManager(sweeper *Sweeper, interval time.Duration, logger *zap.Logger) (*SweepManager, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	m := &SweepManager{cron: c, sweeper: sweeper, logger: logger}

	entry, err := c.AddFunc(fmt.Sprintf("@every %s", interval), m.runSweep)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule sweep: %w", err)
	}
	m.entry = entry

	return m, nil
}

// Start begins the recurring sweep and runs one pass immediately.
func (m *SweepManager) Start() {
	m.logger.Info("Starting status sweep manager")
	m.cron.Start()
	go m.runSweep()
}

// Stop stops scheduling and waits for a running sweep to finish.
func (m *SweepManager) Stop() {
	m.logger.Info("Stopping status sweep manager")
	ctx := m.cron.Stop()
	<-ctx.Done()
}

func (m *SweepManager) runSweep() {
	ctx := context.Background()

	result, err := m.sweeper.SweepOnce(ctx)
	if err != nil {
		m.logger.Error("Sweep pass failed", zap.Error(err))
		return
	}

	if result.Transitions > 0 || result.Failures > 0 {
		m.logger.Info("Sweep pass completed",
			zap.Int("evaluated", result.Evaluated),
			zap.Int("transitions", result.Transitions),
			zap.Int("failures", result.Failures))
	}
}
