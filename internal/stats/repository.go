package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository runs the aggregate queries behind dashboards and exports.
// Aggregates read the same tables the gorm models write, but go through
// sqlx because the queries are hand-tuned SQL rather than entity access.
type Repository interface {
	LessonsByStatus(ctx context.Context, period Period) ([]StatusCount, error)
	TeacherLoads(ctx context.Context, period Period) ([]TeacherLoad, error)
	StudentActivities(ctx context.Context, period Period) ([]StudentActivity, error)
	PackageUtilizations(ctx context.Context, expiringBefore *time.Time) ([]PackageUtilization, error)
	ScheduleForRange(ctx context.Context, from, to time.Time, teacherID *uuid.UUID) ([]ScheduleEntry, error)
	CountLessonsBetween(ctx context.Context, from, to time.Time) (int, error)
	CountActiveStudents(ctx context.Context) (int, error)
	CountActiveTeachers(ctx context.Context) (int, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL stats repository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func periodClause(period Period, column string, args *[]interface{}) string {
	var conditions []string
	if !period.From.IsZero() {
		*args = append(*args, period.From)
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", column, len(*args)))
	}
	if !period.To.IsZero() {
		*args = append(*args, period.To)
		conditions = append(conditions, fmt.Sprintf("%s < $%d", column, len(*args)))
	}
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

func (r *PostgresRepository) LessonsByStatus(ctx context.Context, period Period) ([]StatusCount, error) {
	var args []interface{}
	query := `
		SELECT status, COUNT(*) AS count
		FROM lessons
	` + periodClause(period, "scheduled_at", &args) + `
		GROUP BY status
		ORDER BY status
	`

	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate lessons by status: %w", err)
	}
	return counts, nil
}

func (r *PostgresRepository) TeacherLoads(ctx context.Context, period Period) ([]TeacherLoad, error) {
	var args []interface{}
	query := `
		SELECT teacher_id,
			   COUNT(*) AS lesson_count,
			   COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed_count,
			   COUNT(*) FILTER (WHERE status = 'MISSED') AS missed_count,
			   COALESCE(SUM(duration_minutes) FILTER (WHERE status IN ('CONDUCTED', 'COMPLETED')), 0) AS total_minutes
		FROM lessons
	` + periodClause(period, "scheduled_at", &args) + `
		GROUP BY teacher_id
		ORDER BY lesson_count DESC
	`

	var loads []TeacherLoad
	if err := r.db.SelectContext(ctx, &loads, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate teacher loads: %w", err)
	}
	return loads, nil
}

func (r *PostgresRepository) StudentActivities(ctx context.Context, period Period) ([]StudentActivity, error) {
	var args []interface{}
	query := `
		SELECT student_id,
			   COUNT(*) AS lesson_count,
			   COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed_count,
			   COUNT(*) FILTER (WHERE status = 'MISSED') AS missed_count
		FROM lessons
	` + periodClause(period, "scheduled_at", &args) + `
		GROUP BY student_id
		ORDER BY lesson_count DESC
	`

	var activities []StudentActivity
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate student activities: %w", err)
	}
	return activities, nil
}

func (r *PostgresRepository) PackageUtilizations(ctx context.Context, expiringBefore *time.Time) ([]PackageUtilization, error) {
	var args []interface{}
	query := `
		SELECT id AS package_id, student_id, name, total_lessons, used_lessons, expires_at
		FROM packages
		WHERE status = 'ACTIVE'
	`
	if expiringBefore != nil {
		args = append(args, *expiringBefore)
		query += fmt.Sprintf(" AND expires_at IS NOT NULL AND expires_at < $%d", len(args))
	}
	query += " ORDER BY expires_at ASC NULLS LAST"

	var utilizations []PackageUtilization
	if err := r.db.SelectContext(ctx, &utilizations, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate package utilizations: %w", err)
	}
	return utilizations, nil
}

func (r *PostgresRepository) ScheduleForRange(ctx context.Context, from, to time.Time, teacherID *uuid.UUID) ([]ScheduleEntry, error) {
	args := []interface{}{from, to}
	query := `
		SELECT id AS lesson_id, teacher_id, student_id, scheduled_at, duration_minutes, status
		FROM lessons
		WHERE scheduled_at >= $1 AND scheduled_at < $2
	`
	if teacherID != nil {
		args = append(args, *teacherID)
		query += fmt.Sprintf(" AND teacher_id = $%d", len(args))
	}
	query += " ORDER BY scheduled_at ASC"

	var entries []ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return entries, nil
}

func (r *PostgresRepository) CountLessonsBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM lessons WHERE scheduled_at >= $1 AND scheduled_at < $2`
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) CountActiveStudents(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students WHERE active = true`); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) CountActiveTeachers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM teachers WHERE active = true`); err != nil {
		return 0, fmt.Errorf("failed to count teachers: %w", err)
	}
	return count, nil
}
