package students

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a student does not exist.
var ErrNotFound = errors.New("student not found")

// Repository is the persistence surface for student records.
type Repository interface {
	Create(ctx context.Context, student *Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*Student, error)
	Update(ctx context.Context, student *Student) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]Student, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed student repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, student *Student) error {
	if err := r.db.WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Student, error) {
	var student Student
	err := r.db.WithContext(ctx).First(&student, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (r *gormRepository) Update(ctx context.Context, student *Student) error {
	if err := r.db.WithContext(ctx).Save(student).Error; err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Student{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete student: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, activeOnly bool) ([]Student, error) {
	query := r.db.WithContext(ctx).Model(&Student{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var result []Student
	if err := query.Order("last_name ASC, first_name ASC").Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return result, nil
}

// EmailDirectory resolves student emails for the notification email channel.
type EmailDirectory struct {
	repo Repository
}

// NewEmailDirectory creates the directory adapter.
func NewEmailDirectory(repo Repository) *EmailDirectory {
	return &EmailDirectory{repo: repo}
}

// EmailFor returns the student's email, or empty when no record exists so the
// email channel is skipped rather than failed.
func (d *EmailDirectory) EmailFor(ctx context.Context, userID uuid.UUID) (string, error) {
	student, err := d.repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return student.Email, nil
}
