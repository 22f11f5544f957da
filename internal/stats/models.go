package stats

import (
	"time"

	"github.com/google/uuid"
)

// StatusCount is one row of a lessons-by-status aggregate.
type StatusCount struct {
	Status string `json:"status" db:"status"`
	Count  int    `json:"count" db:"count"`
}

// TeacherLoad summarizes one teacher's lesson volume for a period.
type TeacherLoad struct {
	TeacherID      uuid.UUID `json:"teacher_id" db:"teacher_id"`
	LessonCount    int       `json:"lesson_count" db:"lesson_count"`
	CompletedCount int       `json:"completed_count" db:"completed_count"`
	MissedCount    int       `json:"missed_count" db:"missed_count"`
	TotalMinutes   int       `json:"total_minutes" db:"total_minutes"`
}

// StudentActivity summarizes one student's lesson volume for a period.
type StudentActivity struct {
	StudentID      uuid.UUID `json:"student_id" db:"student_id"`
	LessonCount    int       `json:"lesson_count" db:"lesson_count"`
	CompletedCount int       `json:"completed_count" db:"completed_count"`
	MissedCount    int       `json:"missed_count" db:"missed_count"`
}

// PackageUtilization reports how far a lesson package has been consumed.
type PackageUtilization struct {
	PackageID    uuid.UUID  `json:"package_id" db:"package_id"`
	StudentID    uuid.UUID  `json:"student_id" db:"student_id"`
	Name         string     `json:"name" db:"name"`
	TotalLessons int        `json:"total_lessons" db:"total_lessons"`
	UsedLessons  int        `json:"used_lessons" db:"used_lessons"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

// ScheduleEntry is one lesson row for a schedule export.
type ScheduleEntry struct {
	LessonID        uuid.UUID `json:"lesson_id" db:"lesson_id"`
	TeacherID       uuid.UUID `json:"teacher_id" db:"teacher_id"`
	StudentID       uuid.UUID `json:"student_id" db:"student_id"`
	ScheduledAt     time.Time `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Status          string    `json:"status" db:"status"`
}

// Period bounds an aggregate query. Zero values mean unbounded.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DashboardSummary is the headline block on the manager dashboard.
type DashboardSummary struct {
	LessonsToday      int           `json:"lessons_today"`
	LessonsThisWeek   int           `json:"lessons_this_week"`
	ActiveStudents    int           `json:"active_students"`
	ActiveTeachers    int           `json:"active_teachers"`
	LessonsByStatus   []StatusCount `json:"lessons_by_status"`
	ExpiringPackages  int           `json:"expiring_packages"`
	GeneratedAt       time.Time     `json:"generated_at"`
}
