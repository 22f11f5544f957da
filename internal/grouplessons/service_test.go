package grouplessons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, lesson *GroupLesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*GroupLesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GroupLesson), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, lesson *GroupLesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, from, to *time.Time) ([]GroupLesson, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]GroupLesson), args.Error(1)
}

func (m *MockRepository) AddParticipant(ctx context.Context, participant *Participant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *MockRepository) ListParticipants(ctx context.Context, groupLessonID uuid.UUID) ([]Participant, error) {
	args := m.Called(ctx, groupLessonID)
	return args.Get(0).([]Participant), args.Error(1)
}

type MockGroupNotifier struct {
	mock.Mock
}

func (m *MockGroupNotifier) NotifyGroupStatusChange(ctx context.Context, recipientIDs []uuid.UUID, groupLessonID uuid.UUID, from, to scheduling.GroupLessonStatus, reason string) error {
	args := m.Called(ctx, recipientIDs, groupLessonID, from, to, reason)
	return args.Error(0)
}

func newTestService(repo *MockRepository, notifier *MockGroupNotifier) Service {
	return NewService(repo, scheduling.NewGroupLessonStateMachine(), notifier, zap.NewNop())
}

func testGroupLesson(status scheduling.GroupLessonStatus) *GroupLesson {
	return &GroupLesson{
		ID:              uuid.New(),
		Topic:           "Algebra workshop",
		ScheduledAt:     time.Now().Add(24 * time.Hour),
		DurationMinutes: 90,
		Capacity:        8,
		Status:          status,
	}
}

func TestConfirmScheduledLesson(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockGroupNotifier)
	service := newTestService(repo, notifier)

	lesson := testGroupLesson(scheduling.GroupScheduled)
	student := uuid.New()
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(nil)
	repo.On("ListParticipants", mock.Anything, lesson.ID).Return([]Participant{{GroupLessonID: lesson.ID, StudentID: student}}, nil)
	notifier.On("NotifyGroupStatusChange", mock.Anything, []uuid.UUID{student}, lesson.ID, scheduling.GroupScheduled, scheduling.GroupConfirmed, "").Return(nil)

	updated, err := service.Confirm(context.Background(), lesson.ID)

	require.NoError(t, err)
	assert.Equal(t, scheduling.GroupConfirmed, updated.Status)
	notifier.AssertExpectations(t)
}

func TestCompletedLessonRejectsAllTransitions(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockGroupNotifier))

	lesson := testGroupLesson(scheduling.GroupCompleted)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)

	_, err := service.Cancel(context.Background(), lesson.ID, "room unavailable")
	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)

	_, err = service.Reopen(context.Background(), lesson.ID)
	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)

	_, err = service.Postpone(context.Background(), lesson.ID, "holiday")
	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)

	repo.AssertNotCalled(t, "Update")
}

func TestSameStatusRejected(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockGroupNotifier))

	lesson := testGroupLesson(scheduling.GroupConfirmed)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)

	_, err := service.Confirm(context.Background(), lesson.ID)

	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)
	repo.AssertNotCalled(t, "Update")
}

func TestScheduledCannotStartDirectly(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockGroupNotifier))

	lesson := testGroupLesson(scheduling.GroupScheduled)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)

	_, err := service.Start(context.Background(), lesson.ID)

	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)
}

func TestReopenPostponedLesson(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockGroupNotifier)
	service := newTestService(repo, notifier)

	lesson := testGroupLesson(scheduling.GroupPostponed)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(nil)
	repo.On("ListParticipants", mock.Anything, lesson.ID).Return([]Participant{}, nil)

	updated, err := service.Reopen(context.Background(), lesson.ID)

	require.NoError(t, err)
	assert.Equal(t, scheduling.GroupScheduled, updated.Status)
	// No participants, no notification.
	notifier.AssertNotCalled(t, "NotifyGroupStatusChange")
}

func TestNotificationFailureNonFatal(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockGroupNotifier)
	service := newTestService(repo, notifier)

	lesson := testGroupLesson(scheduling.GroupInProgress)
	student := uuid.New()
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(nil)
	repo.On("ListParticipants", mock.Anything, lesson.ID).Return([]Participant{{GroupLessonID: lesson.ID, StudentID: student}}, nil)
	notifier.On("NotifyGroupStatusChange", mock.Anything, []uuid.UUID{student}, lesson.ID, scheduling.GroupInProgress, scheduling.GroupCompleted, "").Return(assert.AnError)

	updated, err := service.Complete(context.Background(), lesson.ID)

	require.NoError(t, err)
	assert.Equal(t, scheduling.GroupCompleted, updated.Status)
}

func TestCreateRequiresCapacity(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockGroupNotifier))

	_, err := service.Create(context.Background(), CreateGroupLessonRequest{
		Topic:       "Geometry",
		ScheduledAt: time.Now().Add(time.Hour),
		Capacity:    0,
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}
