package packages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a package does not exist.
var ErrNotFound = errors.New("package not found")

// Repository is the persistence surface for lesson packages.
type Repository interface {
	Create(ctx context.Context, pkg *Package) error
	GetByID(ctx context.Context, id uuid.UUID) (*Package, error)
	Update(ctx context.Context, pkg *Package) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Package, error)
	ActiveForStudent(ctx context.Context, studentID uuid.UUID) (*Package, error)
	ListExpiringBefore(ctx context.Context, deadline time.Time) ([]Package, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed package repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, pkg *Package) error {
	if err := r.db.WithContext(ctx).Create(pkg).Error; err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Package, error) {
	var pkg Package
	err := r.db.WithContext(ctx).First(&pkg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return &pkg, nil
}

func (r *gormRepository) Update(ctx context.Context, pkg *Package) error {
	if err := r.db.WithContext(ctx).Save(pkg).Error; err != nil {
		return fmt.Errorf("failed to update package: %w", err)
	}
	return nil
}

func (r *gormRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Package, error) {
	var result []Package
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return result, nil
}

// ActiveForStudent returns the oldest active package with lessons remaining.
func (r *gormRepository) ActiveForStudent(ctx context.Context, studentID uuid.UUID) (*Package, error) {
	var pkg Package
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ? AND used_lessons < total_lessons", studentID, PackageActive).
		Order("created_at ASC").
		First(&pkg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active package: %w", err)
	}
	return &pkg, nil
}

func (r *gormRepository) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]Package, error) {
	var result []Package
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", PackageActive, deadline).
		Order("expires_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring packages: %w", err)
	}
	return result, nil
}
