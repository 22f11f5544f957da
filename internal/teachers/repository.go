package teachers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a teacher does not exist.
var ErrNotFound = errors.New("teacher not found")

// Repository is the persistence surface for teacher records.
type Repository interface {
	Create(ctx context.Context, teacher *Teacher) error
	GetByID(ctx context.Context, id uuid.UUID) (*Teacher, error)
	Update(ctx context.Context, teacher *Teacher) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]Teacher, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed teacher repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, teacher *Teacher) error {
	if err := r.db.WithContext(ctx).Create(teacher).Error; err != nil {
		return fmt.Errorf("failed to create teacher: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Teacher, error) {
	var teacher Teacher
	err := r.db.WithContext(ctx).First(&teacher, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	return &teacher, nil
}

func (r *gormRepository) Update(ctx context.Context, teacher *Teacher) error {
	if err := r.db.WithContext(ctx).Save(teacher).Error; err != nil {
		return fmt.Errorf("failed to update teacher: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Teacher{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete teacher: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, activeOnly bool) ([]Teacher, error) {
	query := r.db.WithContext(ctx).Model(&Teacher{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var result []Teacher
	if err := query.Order("last_name ASC, first_name ASC").Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return result, nil
}
