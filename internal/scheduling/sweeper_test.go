package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockLessonStore struct {
	mock.Mock
}

func (m *MockLessonStore) ListForSweep(ctx context.Context, day time.Time) ([]SweepLesson, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SweepLesson), args.Error(1)
}

func (m *MockLessonStore) ApplyAutoTransition(ctx context.Context, lessonID uuid.UUID, from, to LessonStatus, reason string) error {
	args := m.Called(ctx, lessonID, from, to, reason)
	return args.Error(0)
}

type MockStatusNotifier struct {
	mock.Mock
}

func (m *MockStatusNotifier) NotifyStatusChange(ctx context.Context, recipientID, lessonID uuid.UUID, from, to LessonStatus, reason string) error {
	args := m.Called(ctx, recipientID, lessonID, from, to, reason)
	return args.Error(0)
}

func TestSweepOnceAppliesTransitions(t *testing.T) {
	store := new(MockLessonStore)
	notifier := new(MockStatusNotifier)
	sweeper := NewSweeper(store, notifier, defaultEvaluator(), zap.NewNop())

	now := time.Now()
	started := sweepLesson(LessonScheduled, now.Add(-5*time.Minute), true)
	idle := sweepLesson(LessonScheduled, now.Add(3*time.Hour), false)

	store.On("ListForSweep", mock.Anything, mock.Anything).Return([]SweepLesson{started, idle}, nil)
	store.On("ApplyAutoTransition", mock.Anything, started.ID, LessonScheduled, LessonConducted, mock.Anything).Return(nil)
	notifier.On("NotifyStatusChange", mock.Anything, started.StudentID, started.ID, LessonScheduled, LessonConducted, mock.Anything).Return(nil)

	result, err := sweeper.SweepOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Evaluated)
	assert.Equal(t, 1, result.Transitions)
	assert.Equal(t, 0, result.Failures)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSweepOnceContainsPerLessonFailures(t *testing.T) {
	store := new(MockLessonStore)
	notifier := new(MockStatusNotifier)
	sweeper := NewSweeper(store, notifier, defaultEvaluator(), zap.NewNop())

	now := time.Now()
	first := sweepLesson(LessonScheduled, now.Add(-5*time.Minute), true)
	second := sweepLesson(LessonScheduled, now.Add(-6*time.Minute), true)
	third := sweepLesson(LessonConducted, now.Add(-2*time.Hour), true)

	store.On("ListForSweep", mock.Anything, mock.Anything).Return([]SweepLesson{first, second, third}, nil)
	store.On("ApplyAutoTransition", mock.Anything, first.ID, LessonScheduled, LessonConducted, mock.Anything).Return(nil)
	store.On("ApplyAutoTransition", mock.Anything, second.ID, LessonScheduled, LessonConducted, mock.Anything).Return(assert.AnError)
	store.On("ApplyAutoTransition", mock.Anything, third.ID, LessonConducted, LessonCompleted, mock.Anything).Return(nil)
	notifier.On("NotifyStatusChange", mock.Anything, first.StudentID, first.ID, LessonScheduled, LessonConducted, mock.Anything).Return(nil)
	notifier.On("NotifyStatusChange", mock.Anything, third.StudentID, third.ID, LessonConducted, LessonCompleted, mock.Anything).Return(nil)

	result, err := sweeper.SweepOnce(context.Background())

	// The middle lesson's failure is contained; the other two still land.
	require.NoError(t, err)
	assert.Equal(t, 3, result.Evaluated)
	assert.Equal(t, 2, result.Transitions)
	assert.Equal(t, 1, result.Failures)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSweepOnceNotificationFailureIsNonFatal(t *testing.T) {
	store := new(MockLessonStore)
	notifier := new(MockStatusNotifier)
	sweeper := NewSweeper(store, notifier, defaultEvaluator(), zap.NewNop())

	now := time.Now()
	lesson := sweepLesson(LessonScheduled, now.Add(-5*time.Minute), true)

	store.On("ListForSweep", mock.Anything, mock.Anything).Return([]SweepLesson{lesson}, nil)
	store.On("ApplyAutoTransition", mock.Anything, lesson.ID, LessonScheduled, LessonConducted, mock.Anything).Return(nil)
	notifier.On("NotifyStatusChange", mock.Anything, lesson.StudentID, lesson.ID, LessonScheduled, LessonConducted, mock.Anything).Return(assert.AnError)

	result, err := sweeper.SweepOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Transitions)
	assert.Equal(t, 0, result.Failures)
}

func TestSweepOnceStoreFetchError(t *testing.T) {
	store := new(MockLessonStore)
	notifier := new(MockStatusNotifier)
	sweeper := NewSweeper(store, notifier, defaultEvaluator(), zap.NewNop())

	store.On("ListForSweep", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	_, err := sweeper.SweepOnce(context.Background())

	assert.Error(t, err)
	store.AssertNotCalled(t, "ApplyAutoTransition")
}
