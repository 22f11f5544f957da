package packages

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

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, pkg *Package) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Package), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, pkg *Package) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Package, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]Package), args.Error(1)
}

func (m *MockRepository) ActiveForStudent(ctx context.Context, studentID uuid.UUID) (*Package, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Package), args.Error(1)
}

func (m *MockRepository) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]Package, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).([]Package), args.Error(1)
}

func TestDeductLesson(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, zap.NewNop())

	studentID := uuid.New()
	pkg := &Package{
		ID:           uuid.New(),
		StudentID:    studentID,
		TotalLessons: 10,
		UsedLessons:  3,
		Status:       PackageActive,
	}
	repo.On("ActiveForStudent", mock.Anything, studentID).Return(pkg, nil)
	repo.On("Update", mock.Anything, pkg).Return(nil)

	err := service.DeductLesson(context.Background(), studentID, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 4, pkg.UsedLessons)
	assert.Equal(t, PackageActive, pkg.Status)
}

func TestDeductLessonExhaustsPackage(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, zap.NewNop())

	studentID := uuid.New()
	pkg := &Package{
		ID:           uuid.New(),
		StudentID:    studentID,
		TotalLessons: 10,
		UsedLessons:  9,
		Status:       PackageActive,
	}
	repo.On("ActiveForStudent", mock.Anything, studentID).Return(pkg, nil)
	repo.On("Update", mock.Anything, pkg).Return(nil)

	err := service.DeductLesson(context.Background(), studentID, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 10, pkg.UsedLessons)
	assert.Equal(t, PackageExhausted, pkg.Status)
}

func TestDeductLessonNoPackage(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, zap.NewNop())

	studentID := uuid.New()
	repo.On("ActiveForStudent", mock.Anything, studentID).Return(nil, ErrNotFound)

	err := service.DeductLesson(context.Background(), studentID, uuid.New())

	assert.ErrorIs(t, err, ErrNoDeductiblePackage)
	repo.AssertNotCalled(t, "Update")
}

func TestDeductLessonExpiredPackage(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, zap.NewNop())

	studentID := uuid.New()
	expired := time.Now().Add(-24 * time.Hour)
	pkg := &Package{
		ID:           uuid.New(),
		StudentID:    studentID,
		TotalLessons: 10,
		UsedLessons:  2,
		ExpiresAt:    &expired,
		Status:       PackageActive,
	}
	repo.On("ActiveForStudent", mock.Anything, studentID).Return(pkg, nil)
	repo.On("Update", mock.Anything, pkg).Return(nil)

	err := service.DeductLesson(context.Background(), studentID, uuid.New())

	assert.ErrorIs(t, err, ErrNoDeductiblePackage)
	// The stale row is flagged expired, not consumed.
	assert.Equal(t, PackageExpired, pkg.Status)
	assert.Equal(t, 2, pkg.UsedLessons)
}

func TestCreateRejectsNonPositiveTotal(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, zap.NewNop())

	_, err := service.Create(context.Background(), CreatePackageRequest{
		StudentID:    uuid.New(),
		Name:         "Starter",
		TotalLessons: 0,
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}
