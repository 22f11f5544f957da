package grouplessons

import (
	"time"

	"github.com/google/uuid"

	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
)

// GroupLesson represents a scheduled group session with enrollment capacity.
type GroupLesson struct {
	ID              uuid.UUID                    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Topic           string                       `json:"topic" gorm:"not null"`
	Description     string                       `json:"description,omitempty"`
	ScheduledAt     time.Time                    `json:"scheduled_at" gorm:"not null;index"`
	DurationMinutes int                          `json:"duration_minutes" gorm:"not null;default:60"`
	Capacity        int                          `json:"capacity" gorm:"not null"`
	EnrolledCount   int                          `json:"enrolled_count" gorm:"not null;default:0"`
	Status          scheduling.GroupLessonStatus `json:"status" gorm:"not null;default:SCHEDULED;index"`
	MeetingLink     string                       `json:"meeting_link,omitempty"`
	CreatedAt       time.Time                    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                    `json:"updated_at" gorm:"autoUpdateTime"`
}

// Participant links a student to a group lesson.
type Participant struct {
	ID            uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	GroupLessonID uuid.UUID `json:"group_lesson_id" gorm:"type:uuid;not null;index"`
	StudentID     uuid.UUID `json:"student_id" gorm:"type:uuid;not null;index"`
	EnrolledAt    time.Time `json:"enrolled_at" gorm:"autoCreateTime"`
}

// CreateGroupLessonRequest is the payload for scheduling a group lesson.
type CreateGroupLessonRequest struct {
	Topic           string    `json:"topic" binding:"required"`
	Description     string    `json:"description,omitempty"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Capacity        int       `json:"capacity" binding:"required"`
	MeetingLink     string    `json:"meeting_link,omitempty"`
}
