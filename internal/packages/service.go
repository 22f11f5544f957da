package packages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoDeductiblePackage is returned when a deduction finds no usable package.
var ErrNoDeductiblePackage = errors.New("no active package with remaining lessons")

// Service implements lesson-package tracking.
type Service interface {
	Create(ctx context.Context, req CreatePackageRequest) (*Package, error)
	Get(ctx context.Context, id uuid.UUID) (*Package, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Package, error)
	ExpiringSoon(ctx context.Context, within time.Duration) ([]Package, error)
	DeductLesson(ctx context.Context, studentID uuid.UUID, lessonID uuid.UUID) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the package service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger, now: time.Now}
}

func (s *service) Create(ctx context.Context, req CreatePackageRequest) (*Package, error) {
	if req.TotalLessons <= 0 {
		return nil, errors.New("total_lessons must be positive")
	}

	pkg := &Package{
		StudentID:    req.StudentID,
		Name:         req.Name,
		TotalLessons: req.TotalLessons,
		ExpiresAt:    req.ExpiresAt,
		Status:       PackageActive,
	}

	if err := s.repo.Create(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Package, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Package, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

// ExpiringSoon backs the dashboard expiry widget.
func (s *service) ExpiringSoon(ctx context.Context, within time.Duration) ([]Package, error) {
	return s.repo.ListExpiringBefore(ctx, s.now().Add(within))
}

// DeductLesson consumes one lesson from the student's oldest usable package.
// Exhausted and expired packages are rejected and flagged.
func (s *service) DeductLesson(ctx context.Context, studentID uuid.UUID, lessonID uuid.UUID) error {
	pkg, err := s.repo.ActiveForStudent(ctx, studentID)
	if errors.Is(err, ErrNotFound) {
		return ErrNoDeductiblePackage
	}
	if err != nil {
		return err
	}

	if pkg.ExpiredAt(s.now()) {
		pkg.Status = PackageExpired
		if err := s.repo.Update(ctx, pkg); err != nil {
			return err
		}
		return fmt.Errorf("%w: package %s expired", ErrNoDeductiblePackage, pkg.ID)
	}

	pkg.UsedLessons++
	if pkg.RemainingLessons() == 0 {
		pkg.Status = PackageExhausted
	}

	if err := s.repo.Update(ctx, pkg); err != nil {
		return err
	}

	s.logger.Info("Deducted lesson from package",
		zap.String("package_id", pkg.ID.String()),
		zap.String("student_id", studentID.String()),
		zap.String("lesson_id", lessonID.String()),
		zap.Int("remaining", pkg.RemainingLessons()))

	return nil
}
