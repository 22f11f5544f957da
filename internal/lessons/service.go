package lessons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
)

// PackageDeductor triggers a lesson-package deduction for a student.
type PackageDeductor interface {
	DeductLesson(ctx context.Context, studentID uuid.UUID, lessonID uuid.UUID) error
}

// Service implements lesson operations including the manual transition gate.
type Service interface {
	CreateLesson(ctx context.Context, req CreateLessonRequest) (*Lesson, error)
	GetLesson(ctx context.Context, id uuid.UUID) (*Lesson, error)
	ListLessons(ctx context.Context, filter LessonFilter) ([]Lesson, error)
	ListForTeacher(ctx context.Context, teacherID uuid.UUID, date time.Time) ([]Lesson, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID, date time.Time) ([]Lesson, error)
	ConfirmLesson(ctx context.Context, id uuid.UUID) (*Lesson, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, req scheduling.ChangeRequest, role scheduling.Role) (*Lesson, error)
}

type service struct {
	repo      Repository
	table     *scheduling.LessonTransitionTable
	notifier  scheduling.StatusNotifier
	packages  PackageDeductor
	logger    *zap.Logger
}

// NewService creates the lesson service. The transition table is injected so
// every caller validates against the same immutable configuration.
func NewService(
	repo Repository,
	table *scheduling.LessonTransitionTable,
	notifier scheduling.StatusNotifier,
	packages PackageDeductor,
	logger *zap.Logger,
) Service {
	return &service{
		repo:     repo,
		table:    table,
		notifier: notifier,
		packages: packages,
		logger:   logger,
	}
}

func (s *service) CreateLesson(ctx context.Context, req CreateLessonRequest) (*Lesson, error) {
	if req.TeacherID == uuid.Nil {
		return nil, errors.New("teacher_id is required")
	}
	if req.StudentID == uuid.Nil {
		return nil, errors.New("student_id is required")
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 60
	}

	lesson := &Lesson{
		TeacherID:       req.TeacherID,
		StudentID:       req.StudentID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: duration,
		Status:          scheduling.LessonScheduled,
		Notes:           req.Notes,
	}

	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *service) GetLesson(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListLessons(ctx context.Context, filter LessonFilter) ([]Lesson, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListForTeacher(ctx context.Context, teacherID uuid.UUID, date time.Time) ([]Lesson, error) {
	return s.repo.List(ctx, LessonFilter{TeacherID: &teacherID, Date: &date})
}

func (s *service) ListForStudent(ctx context.Context, studentID uuid.UUID, date time.Time) ([]Lesson, error) {
	return s.repo.List(ctx, LessonFilter{StudentID: &studentID, Date: &date})
}

// ConfirmLesson marks a scheduled lesson as confirmed by its teacher, which
// shields it from the automatic pre-start cancellation rule.
func (s *service) ConfirmLesson(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson.Status != scheduling.LessonScheduled {
		return nil, fmt.Errorf("cannot confirm a %s lesson", lesson.Status)
	}
	if lesson.ConfirmedByTeacher {
		return lesson, nil
	}

	lesson.ConfirmedByTeacher = true
	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// ChangeStatus applies a user-requested status change. Invalid requests fail
// with scheduling.ErrInvalidTransition before the store is touched; store
// rejections are surfaced to the caller unchanged, with no retry.
func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, req scheduling.ChangeRequest, role scheduling.Role) (*Lesson, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.table.ValidateChange(lesson.Status, req, role); err != nil {
		return nil, err
	}

	oldStatus := lesson.Status
	lesson.Status = req.NewStatus
	switch req.NewStatus {
	case scheduling.LessonCancelled, scheduling.LessonMissed:
		lesson.CancellationReason = req.Reason
	case scheduling.LessonScheduled:
		// Reopened lessons go back to an unconfirmed slot.
		lesson.ConfirmedByTeacher = false
		lesson.CancellationReason = ""
	}

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, err
	}

	if req.NewStatus == scheduling.LessonCompleted && req.DeductPackage {
		if err := s.packages.DeductLesson(ctx, lesson.StudentID, lesson.ID); err != nil {
			s.logger.Warn("Failed to deduct lesson package",
				zap.String("lesson_id", lesson.ID.String()),
				zap.String("student_id", lesson.StudentID.String()),
				zap.Error(err))
		}
	}

	// Best-effort: a notification failure never rolls back the change.
	if err := s.notifier.NotifyStatusChange(ctx, lesson.StudentID, lesson.ID, oldStatus, req.NewStatus, req.Reason); err != nil {
		s.logger.Warn("Failed to send status change notification",
			zap.String("lesson_id", lesson.ID.String()),
			zap.Error(err))
	}

	return lesson, nil
}
