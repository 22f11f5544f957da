package lessons

import (
	"time"

	"github.com/google/uuid"

	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
)

// Lesson represents an individual tutoring session between one teacher and
// one student. ScheduledAt and DurationMinutes define the interval
// [ScheduledAt, ScheduledAt+DurationMinutes).
type Lesson struct {
	ID                 uuid.UUID                `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TeacherID          uuid.UUID                `json:"teacher_id" gorm:"type:uuid;not null;index"`
	StudentID          uuid.UUID                `json:"student_id" gorm:"type:uuid;not null;index"`
	ScheduledAt        time.Time                `json:"scheduled_at" gorm:"not null;index"`
	DurationMinutes    int                      `json:"duration_minutes" gorm:"not null;default:60"`
	Status             scheduling.LessonStatus  `json:"status" gorm:"not null;default:SCHEDULED;index"`
	ConfirmedByTeacher bool                     `json:"confirmed_by_teacher" gorm:"default:false"`
	Notes              string                   `json:"notes,omitempty"`
	CancellationReason string                   `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time                `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time                `json:"updated_at" gorm:"autoUpdateTime"`
}

// StartsAt returns the start of the lesson interval.
func (l *Lesson) StartsAt() time.Time {
	return l.ScheduledAt
}

// EndsAt returns the exclusive end of the lesson interval.
func (l *Lesson) EndsAt() time.Time {
	return l.ScheduledAt.Add(time.Duration(l.DurationMinutes) * time.Minute)
}

// Snapshot projects the lesson to the evaluator's view.
func (l *Lesson) Snapshot() scheduling.SweepLesson {
	return scheduling.SweepLesson{
		ID:                 l.ID,
		StudentID:          l.StudentID,
		TeacherID:          l.TeacherID,
		Status:             l.Status,
		StartsAt:           l.ScheduledAt,
		Duration:           time.Duration(l.DurationMinutes) * time.Minute,
		ConfirmedByTeacher: l.ConfirmedByTeacher,
	}
}

// CreateLessonRequest is the payload for scheduling a new lesson.
type CreateLessonRequest struct {
	TeacherID       uuid.UUID `json:"teacher_id" binding:"required"`
	StudentID       uuid.UUID `json:"student_id" binding:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
}

// LessonFilter narrows lesson listings.
type LessonFilter struct {
	TeacherID *uuid.UUID
	StudentID *uuid.UUID
	Status    *scheduling.LessonStatus
	Date      *time.Time
}
