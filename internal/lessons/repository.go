package lessons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
)

// ErrNotFound is returned when a lesson does not exist.
var ErrNotFound = errors.New("lesson not found")

// Repository is the persistence surface for lessons.
type Repository interface {
	Create(ctx context.Context, lesson *Lesson) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lesson, error)
	Update(ctx context.Context, lesson *Lesson) error
	List(ctx context.Context, filter LessonFilter) ([]Lesson, error)
	ListForDate(ctx context.Context, day time.Time) ([]Lesson, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed lesson repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, lesson *Lesson) error {
	if err := r.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	var lesson Lesson
	err := r.db.WithContext(ctx).First(&lesson, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

func (r *gormRepository) Update(ctx context.Context, lesson *Lesson) error {
	if err := r.db.WithContext(ctx).Save(lesson).Error; err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, filter LessonFilter) ([]Lesson, error) {
	query := r.db.WithContext(ctx).Model(&Lesson{})

	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Date != nil {
		start, end := dayBounds(*filter.Date)
		query = query.Where("scheduled_at >= ? AND scheduled_at < ?", start, end)
	}

	var result []Lesson
	if err := query.Order("scheduled_at ASC").Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return result, nil
}

func (r *gormRepository) ListForDate(ctx context.Context, day time.Time) ([]Lesson, error) {
	start, end := dayBounds(day)

	var result []Lesson
	err := r.db.WithContext(ctx).
		Where("scheduled_at >= ? AND scheduled_at < ?", start, end).
		Order("scheduled_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons for date: %w", err)
	}
	return result, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// SweepStore adapts the repository to the sweeper's persistence surface.
type SweepStore struct {
	repo Repository
}

// NewSweepStore creates the sweeper adapter.
func NewSweepStore(repo Repository) *SweepStore {
	return &SweepStore{repo: repo}
}

// ListForSweep returns the day's lessons projected for evaluation.
func (s *SweepStore) ListForSweep(ctx context.Context, day time.Time) ([]scheduling.SweepLesson, error) {
	lessons, err := s.repo.ListForDate(ctx, day)
	if err != nil {
		return nil, err
	}

	snapshots := make([]scheduling.SweepLesson, 0, len(lessons))
	for i := range lessons {
		snapshots = append(snapshots, lessons[i].Snapshot())
	}
	return snapshots, nil
}

// ApplyAutoTransition persists an automatic status change. The lesson is
// re-fetched so a concurrent manual change wins over a stale snapshot.
func (s *SweepStore) ApplyAutoTransition(ctx context.Context, lessonID uuid.UUID, from, to scheduling.LessonStatus, reason string) error {
	lesson, err := s.repo.GetByID(ctx, lessonID)
	if err != nil {
		return err
	}
	if lesson.Status != from {
		return fmt.Errorf("lesson %s is %s, expected %s", lessonID, lesson.Status, from)
	}

	lesson.Status = to
	if to == scheduling.LessonCancelled || to == scheduling.LessonMissed {
		lesson.CancellationReason = reason
	}
	return s.repo.Update(ctx, lesson)
}
