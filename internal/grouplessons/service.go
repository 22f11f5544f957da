package grouplessons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
	"tutor-school/crm-portal/crm-portal-backend/pkg/workflows"
)

// GroupNotifier fans a status change out to a group lesson's participants.
type GroupNotifier interface {
	NotifyGroupStatusChange(ctx context.Context, recipientIDs []uuid.UUID, groupLessonID uuid.UUID, from, to scheduling.GroupLessonStatus, reason string) error
}

// Service implements group lesson operations.
type Service interface {
	Create(ctx context.Context, req CreateGroupLessonRequest) (*GroupLesson, error)
	Get(ctx context.Context, id uuid.UUID) (*GroupLesson, error)
	List(ctx context.Context, from, to *time.Time) ([]GroupLesson, error)
	Enroll(ctx context.Context, groupLessonID, studentID uuid.UUID) error
	Participants(ctx context.Context, groupLessonID uuid.UUID) ([]Participant, error)

	Confirm(ctx context.Context, id uuid.UUID) (*GroupLesson, error)
	Start(ctx context.Context, id uuid.UUID) (*GroupLesson, error)
	Complete(ctx context.Context, id uuid.UUID) (*GroupLesson, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*GroupLesson, error)
	Postpone(ctx context.Context, id uuid.UUID, reason string) (*GroupLesson, error)
	Reopen(ctx context.Context, id uuid.UUID) (*GroupLesson, error)
}

type service struct {
	repo         Repository
	stateMachine *workflows.StateMachine
	notifier     GroupNotifier
	logger       *zap.Logger
}

// NewService creates the group lesson service.
func NewService(repo Repository, stateMachine *workflows.StateMachine, notifier GroupNotifier, logger *zap.Logger) Service {
	return &service{
		repo:         repo,
		stateMachine: stateMachine,
		notifier:     notifier,
		logger:       logger,
	}
}

func (s *service) Create(ctx context.Context, req CreateGroupLessonRequest) (*GroupLesson, error) {
	if req.Capacity <= 0 {
		return nil, errors.New("capacity must be positive")
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 60
	}

	lesson := &GroupLesson{
		Topic:           req.Topic,
		Description:     req.Description,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: duration,
		Capacity:        req.Capacity,
		Status:          scheduling.GroupScheduled,
		MeetingLink:     req.MeetingLink,
	}

	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*GroupLesson, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, from, to *time.Time) ([]GroupLesson, error) {
	return s.repo.List(ctx, from, to)
}

func (s *service) Enroll(ctx context.Context, groupLessonID, studentID uuid.UUID) error {
	return s.repo.AddParticipant(ctx, &Participant{
		GroupLessonID: groupLessonID,
		StudentID:     studentID,
	})
}

func (s *service) Participants(ctx context.Context, groupLessonID uuid.UUID) ([]Participant, error) {
	return s.repo.ListParticipants(ctx, groupLessonID)
}

func (s *service) Confirm(ctx context.Context, id uuid.UUID) (*GroupLesson, error) {
	return s.transition(ctx, id, scheduling.GroupConfirmed, "")
}

func (s *service) Start(ctx context.Context, id uuid.UUID) (*GroupLesson, error) {
	return s.transition(ctx, id, scheduling.GroupInProgress, "")
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) (*GroupLesson, error) {
	return s.transition(ctx, id, scheduling.GroupCompleted, "")
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*GroupLesson, error) {
	return s.transition(ctx, id, scheduling.GroupCancelled, reason)
}

func (s *service) Postpone(ctx context.Context, id uuid.UUID, reason string) (*GroupLesson, error) {
	return s.transition(ctx, id, scheduling.GroupPostponed, reason)
}

// Reopen returns a cancelled or postponed group lesson to SCHEDULED. The
// original time slot is kept; rescheduling it is a separate update.
func (s *service) Reopen(ctx context.Context, id uuid.UUID) (*GroupLesson, error) {
	return s.transition(ctx, id, scheduling.GroupScheduled, "")
}

// transition funnels every status change through the transition table and
// fans a best-effort notification out to enrolled students.
func (s *service) transition(ctx context.Context, id uuid.UUID, to scheduling.GroupLessonStatus, reason string) (*GroupLesson, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if lesson.Status == to {
		return nil, fmt.Errorf("%w: group lesson is already %s", scheduling.ErrInvalidTransition, to)
	}
	if !s.stateMachine.CanTransition(string(lesson.Status), string(to)) {
		return nil, fmt.Errorf("%w: %s -> %s", scheduling.ErrInvalidTransition, lesson.Status, to)
	}

	oldStatus := lesson.Status
	lesson.Status = to

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, err
	}

	s.notifyParticipants(ctx, lesson, oldStatus, to, reason)

	return lesson, nil
}

func (s *service) notifyParticipants(ctx context.Context, lesson *GroupLesson, from, to scheduling.GroupLessonStatus, reason string) {
	participants, err := s.repo.ListParticipants(ctx, lesson.ID)
	if err != nil {
		s.logger.Warn("Failed to list participants for notification",
			zap.String("group_lesson_id", lesson.ID.String()),
			zap.Error(err))
		return
	}
	if len(participants) == 0 {
		return
	}

	recipients := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		recipients = append(recipients, p.StudentID)
	}

	if err := s.notifier.NotifyGroupStatusChange(ctx, recipients, lesson.ID, from, to, reason); err != nil {
		s.logger.Warn("Failed to notify group lesson participants",
			zap.String("group_lesson_id", lesson.ID.String()),
			zap.Error(err))
	}
}
