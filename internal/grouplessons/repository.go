package grouplessons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a group lesson does not exist.
var ErrNotFound = errors.New("group lesson not found")

// ErrFull is returned when enrolling into a group lesson at capacity.
var ErrFull = errors.New("group lesson is full")

// Repository is the persistence surface for group lessons.
type Repository interface {
	Create(ctx context.Context, lesson *GroupLesson) error
	GetByID(ctx context.Context, id uuid.UUID) (*GroupLesson, error)
	Update(ctx context.Context, lesson *GroupLesson) error
	List(ctx context.Context, from, to *time.Time) ([]GroupLesson, error)
	AddParticipant(ctx context.Context, participant *Participant) error
	ListParticipants(ctx context.Context, groupLessonID uuid.UUID) ([]Participant, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed group lesson repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, lesson *GroupLesson) error {
	if err := r.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create group lesson: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*GroupLesson, error) {
	var lesson GroupLesson
	err := r.db.WithContext(ctx).First(&lesson, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group lesson: %w", err)
	}
	return &lesson, nil
}

func (r *gormRepository) Update(ctx context.Context, lesson *GroupLesson) error {
	if err := r.db.WithContext(ctx).Save(lesson).Error; err != nil {
		return fmt.Errorf("failed to update group lesson: %w", err)
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, from, to *time.Time) ([]GroupLesson, error) {
	query := r.db.WithContext(ctx).Model(&GroupLesson{})
	if from != nil {
		query = query.Where("scheduled_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("scheduled_at < ?", *to)
	}

	var result []GroupLesson
	if err := query.Order("scheduled_at ASC").Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list group lessons: %w", err)
	}
	return result, nil
}

// AddParticipant enrolls a student and bumps the enrollment counter in one
// transaction, rejecting enrollment past capacity.
func (r *gormRepository) AddParticipant(ctx context.Context, participant *Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lesson GroupLesson
		if err := tx.First(&lesson, "id = ?", participant.GroupLessonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if lesson.EnrolledCount >= lesson.Capacity {
			return ErrFull
		}
		if err := tx.Create(participant).Error; err != nil {
			return fmt.Errorf("failed to enroll participant: %w", err)
		}
		return tx.Model(&lesson).Update("enrolled_count", gorm.Expr("enrolled_count + 1")).Error
	})
}

func (r *gormRepository) ListParticipants(ctx context.Context, groupLessonID uuid.UUID) ([]Participant, error) {
	var result []Participant
	err := r.db.WithContext(ctx).
		Where("group_lesson_id = ?", groupLessonID).
		Order("enrolled_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return result, nil
}
