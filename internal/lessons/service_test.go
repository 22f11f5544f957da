package lessons

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

func (m *MockRepository) Create(ctx context.Context, lesson *Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lesson), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, lesson *Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, filter LessonFilter) ([]Lesson, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]Lesson), args.Error(1)
}

func (m *MockRepository) ListForDate(ctx context.Context, day time.Time) ([]Lesson, error) {
	args := m.Called(ctx, day)
	return args.Get(0).([]Lesson), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChange(ctx context.Context, recipientID, lessonID uuid.UUID, from, to scheduling.LessonStatus, reason string) error {
	args := m.Called(ctx, recipientID, lessonID, from, to, reason)
	return args.Error(0)
}

type MockDeductor struct {
	mock.Mock
}

func (m *MockDeductor) DeductLesson(ctx context.Context, studentID uuid.UUID, lessonID uuid.UUID) error {
	args := m.Called(ctx, studentID, lessonID)
	return args.Error(0)
}

func newTestService(repo *MockRepository, notifier *MockNotifier, deductor *MockDeductor) Service {
	return NewService(repo, scheduling.NewLessonTransitionTable(), notifier, deductor, zap.NewNop())
}

func testLesson(status scheduling.LessonStatus) *Lesson {
	return &Lesson{
		ID:              uuid.New(),
		TeacherID:       uuid.New(),
		StudentID:       uuid.New(),
		ScheduledAt:     time.Now().Add(time.Hour),
		DurationMinutes: 60,
		Status:          status,
	}
}

func TestChangeStatusValidTransition(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockNotifier)
	deductor := new(MockDeductor)
	service := newTestService(repo, notifier, deductor)

	lesson := testLesson(scheduling.LessonScheduled)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(nil)
	notifier.On("NotifyStatusChange", mock.Anything, lesson.StudentID, lesson.ID, scheduling.LessonScheduled, scheduling.LessonConducted, "").Return(nil)

	updated, err := service.ChangeStatus(context.Background(), lesson.ID,
		scheduling.ChangeRequest{NewStatus: scheduling.LessonConducted}, scheduling.RoleTeacher)

	require.NoError(t, err)
	assert.Equal(t, scheduling.LessonConducted, updated.Status)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestChangeStatusSameStatusRejected(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockNotifier), new(MockDeductor))

	lesson := testLesson(scheduling.LessonScheduled)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)

	_, err := service.ChangeStatus(context.Background(), lesson.ID,
		scheduling.ChangeRequest{NewStatus: scheduling.LessonScheduled}, scheduling.RoleManager)

	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)
	repo.AssertNotCalled(t, "Update")
}

func TestChangeStatusRoleDisallowed(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockNotifier), new(MockDeductor))

	lesson := testLesson(scheduling.LessonConducted)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)

	// Only a manager may cancel a conducted lesson.
	_, err := service.ChangeStatus(context.Background(), lesson.ID,
		scheduling.ChangeRequest{NewStatus: scheduling.LessonCancelled}, scheduling.RoleTeacher)

	assert.ErrorIs(t, err, scheduling.ErrInvalidTransition)
	repo.AssertNotCalled(t, "Update")
}

func TestChangeStatusStoreErrorSurfaced(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockNotifier), new(MockDeductor))

	lesson := testLesson(scheduling.LessonScheduled)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(assert.AnError)

	_, err := service.ChangeStatus(context.Background(), lesson.ID,
		scheduling.ChangeRequest{NewStatus: scheduling.LessonConducted}, scheduling.RoleTeacher)

	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, scheduling.ErrInvalidTransition)
}

func TestChangeStatusCompletedDeductsPackage(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockNotifier)
	deductor := new(MockDeductor)
	service := newTestService(repo, notifier, deductor)

	lesson := testLesson(scheduling.LessonConducted)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(nil)
	deductor.On("DeductLesson", mock.Anything, lesson.StudentID, lesson.ID).Return(nil)
	notifier.On("NotifyStatusChange", mock.Anything, lesson.StudentID, lesson.ID, scheduling.LessonConducted, scheduling.LessonCompleted, "").Return(nil)

	_, err := service.ChangeStatus(context.Background(), lesson.ID,
		scheduling.ChangeRequest{NewStatus: scheduling.LessonCompleted, DeductPackage: true}, scheduling.RoleManager)

	require.NoError(t, err)
	deductor.AssertExpectations(t)
}

func TestChangeStatusDeductionFailureNonFatal(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockNotifier)
	deductor := new(MockDeductor)
	service := newTestService(repo, notifier, deductor)

	lesson := testLesson(scheduling.LessonConducted)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(nil)
	deductor.On("DeductLesson", mock.Anything, lesson.StudentID, lesson.ID).Return(assert.AnError)
	notifier.On("NotifyStatusChange", mock.Anything, lesson.StudentID, lesson.ID, scheduling.LessonConducted, scheduling.LessonCompleted, "").Return(nil)

	updated, err := service.ChangeStatus(context.Background(), lesson.ID,
		scheduling.ChangeRequest{NewStatus: scheduling.LessonCompleted, DeductPackage: true}, scheduling.RoleManager)

	require.NoError(t, err)
	assert.Equal(t, scheduling.LessonCompleted, updated.Status)
}

func TestChangeStatusNotificationFailureNonFatal(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockNotifier)
	service := newTestService(repo, notifier, new(MockDeductor))

	lesson := testLesson(scheduling.LessonScheduled)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(nil)
	notifier.On("NotifyStatusChange", mock.Anything, lesson.StudentID, lesson.ID, scheduling.LessonScheduled, scheduling.LessonCancelled, "sick").Return(assert.AnError)

	updated, err := service.ChangeStatus(context.Background(), lesson.ID,
		scheduling.ChangeRequest{NewStatus: scheduling.LessonCancelled, Reason: "sick"}, scheduling.RoleManager)

	require.NoError(t, err)
	assert.Equal(t, scheduling.LessonCancelled, updated.Status)
	assert.Equal(t, "sick", updated.CancellationReason)
}

func TestChangeStatusReopenClearsState(t *testing.T) {
	repo := new(MockRepository)
	notifier := new(MockNotifier)
	service := newTestService(repo, notifier, new(MockDeductor))

	lesson := testLesson(scheduling.LessonCancelled)
	lesson.ConfirmedByTeacher = true
	lesson.CancellationReason = "sick"
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(nil)
	notifier.On("NotifyStatusChange", mock.Anything, lesson.StudentID, lesson.ID, scheduling.LessonCancelled, scheduling.LessonScheduled, "").Return(nil)

	updated, err := service.ChangeStatus(context.Background(), lesson.ID,
		scheduling.ChangeRequest{NewStatus: scheduling.LessonScheduled}, scheduling.RoleManager)

	require.NoError(t, err)
	assert.Equal(t, scheduling.LessonScheduled, updated.Status)
	assert.False(t, updated.ConfirmedByTeacher)
	assert.Empty(t, updated.CancellationReason)
}

func TestConfirmLesson(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockNotifier), new(MockDeductor))

	lesson := testLesson(scheduling.LessonScheduled)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(nil)

	updated, err := service.ConfirmLesson(context.Background(), lesson.ID)

	require.NoError(t, err)
	assert.True(t, updated.ConfirmedByTeacher)
}

func TestConfirmLessonWrongStatus(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockNotifier), new(MockDeductor))

	lesson := testLesson(scheduling.LessonCancelled)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)

	_, err := service.ConfirmLesson(context.Background(), lesson.ID)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Update")
}

func TestSweepStoreConcurrentManualChangeWins(t *testing.T) {
	repo := new(MockRepository)
	store := NewSweepStore(repo)

	// The snapshot said SCHEDULED but a manager cancelled it meanwhile.
	lesson := testLesson(scheduling.LessonCancelled)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)

	err := store.ApplyAutoTransition(context.Background(), lesson.ID,
		scheduling.LessonScheduled, scheduling.LessonConducted, "lesson interval has started")

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Update")
}

func TestSweepStoreAppliesTransition(t *testing.T) {
	repo := new(MockRepository)
	store := NewSweepStore(repo)

	lesson := testLesson(scheduling.LessonScheduled)
	repo.On("GetByID", mock.Anything, lesson.ID).Return(lesson, nil)
	repo.On("Update", mock.Anything, lesson).Return(nil)

	err := store.ApplyAutoTransition(context.Background(), lesson.ID,
		scheduling.LessonScheduled, scheduling.LessonMissed, "lesson was never conducted after the miss threshold")

	require.NoError(t, err)
	assert.Equal(t, scheduling.LessonMissed, lesson.Status)
	assert.NotEmpty(t, lesson.CancellationReason)
}
