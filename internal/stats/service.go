package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutor-school/crm-portal/crm-portal-backend/internal/stats/export"
)

// Service produces dashboard aggregates and schedule exports.
type Service interface {
	DashboardSummary(ctx context.Context) (*DashboardSummary, error)
	LessonsByStatus(ctx context.Context, period Period) ([]StatusCount, error)
	TeacherLoads(ctx context.Context, period Period) ([]TeacherLoad, error)
	StudentActivities(ctx context.Context, period Period) ([]StudentActivity, error)
	PackageUtilizations(ctx context.Context, expiringBefore *time.Time) ([]PackageUtilization, error)
	ExportLessonStatsExcel(ctx context.Context, period Period, w io.Writer) error
	ExportSchedulePDF(ctx context.Context, weekStart time.Time, teacherID *uuid.UUID, w io.Writer) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the stats service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger, now: time.Now}
}

func (s *service) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()-time.Monday+7)%7)

	lessonsToday, err := s.repo.CountLessonsBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	lessonsWeek, err := s.repo.CountLessonsBetween(ctx, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	students, err := s.repo.CountActiveStudents(ctx)
	if err != nil {
		return nil, err
	}
	teachers, err := s.repo.CountActiveTeachers(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.LessonsByStatus(ctx, Period{From: weekStart, To: weekStart.AddDate(0, 0, 7)})
	if err != nil {
		return nil, err
	}
	expiryCutoff := now.AddDate(0, 0, 14)
	expiring, err := s.repo.PackageUtilizations(ctx, &expiryCutoff)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		LessonsToday:     lessonsToday,
		LessonsThisWeek:  lessonsWeek,
		ActiveStudents:   students,
		ActiveTeachers:   teachers,
		LessonsByStatus:  byStatus,
		ExpiringPackages: len(expiring),
		GeneratedAt:      now,
	}, nil
}

func (s *service) LessonsByStatus(ctx context.Context, period Period) ([]StatusCount, error) {
	return s.repo.LessonsByStatus(ctx, period)
}

func (s *service) TeacherLoads(ctx context.Context, period Period) ([]TeacherLoad, error) {
	return s.repo.TeacherLoads(ctx, period)
}

func (s *service) StudentActivities(ctx context.Context, period Period) ([]StudentActivity, error) {
	return s.repo.StudentActivities(ctx, period)
}

func (s *service) PackageUtilizations(ctx context.Context, expiringBefore *time.Time) ([]PackageUtilization, error) {
	return s.repo.PackageUtilizations(ctx, expiringBefore)
}

func (s *service) ExportLessonStatsExcel(ctx context.Context, period Period, w io.Writer) error {
	byStatus, err := s.repo.LessonsByStatus(ctx, period)
	if err != nil {
		return err
	}
	loads, err := s.repo.TeacherLoads(ctx, period)
	if err != nil {
		return err
	}
	activities, err := s.repo.StudentActivities(ctx, period)
	if err != nil {
		return err
	}

	exporter := export.NewExcelExporter(export.DefaultExcelOptions())
	defer exporter.Close()

	statusRows := make([]map[string]interface{}, 0, len(byStatus))
	for _, c := range byStatus {
		statusRows = append(statusRows, map[string]interface{}{"status": c.Status, "count": c.Count})
	}
	if err := exporter.AddSheet("Lessons by Status", []string{"status", "count"}, statusRows); err != nil {
		return fmt.Errorf("failed to export status sheet: %w", err)
	}

	loadRows := make([]map[string]interface{}, 0, len(loads))
	for _, l := range loads {
		loadRows = append(loadRows, map[string]interface{}{
			"teacher_id":      l.TeacherID.String(),
			"lessons":         l.LessonCount,
			"completed":       l.CompletedCount,
			"missed":          l.MissedCount,
			"taught_minutes":  l.TotalMinutes,
		})
	}
	if err := exporter.AddSheet("Teacher Load", []string{"teacher_id", "lessons", "completed", "missed", "taught_minutes"}, loadRows); err != nil {
		return fmt.Errorf("failed to export teacher load sheet: %w", err)
	}

	activityRows := make([]map[string]interface{}, 0, len(activities))
	for _, a := range activities {
		activityRows = append(activityRows, map[string]interface{}{
			"student_id": a.StudentID.String(),
			"lessons":    a.LessonCount,
			"completed":  a.CompletedCount,
			"missed":     a.MissedCount,
		})
	}
	if err := exporter.AddSheet("Student Activity", []string{"student_id", "lessons", "completed", "missed"}, activityRows); err != nil {
		return fmt.Errorf("failed to export student activity sheet: %w", err)
	}

	s.logger.Info("exported lesson statistics workbook",
		zap.Int("statuses", len(byStatus)),
		zap.Int("teachers", len(loads)),
		zap.Int("students", len(activities)))

	return exporter.WriteTo(w)
}

func (s *service) ExportSchedulePDF(ctx context.Context, weekStart time.Time, teacherID *uuid.UUID, w io.Writer) error {
	entries, err := s.repo.ScheduleForRange(ctx, weekStart, weekStart.AddDate(0, 0, 7), teacherID)
	if err != nil {
		return err
	}

	opts := export.DefaultPDFOptions()
	opts.Title = "Weekly Schedule"
	opts.Subtitle = fmt.Sprintf("Week of %s", weekStart.Format("2006-01-02"))

	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]interface{}{
			"when":     e.ScheduledAt.Format("Mon 15:04"),
			"duration": fmt.Sprintf("%d min", e.DurationMinutes),
			"teacher":  e.TeacherID.String(),
			"student":  e.StudentID.String(),
			"status":   e.Status,
		})
	}

	generator := export.NewPDFGenerator(opts)
	if err := generator.GenerateReport(
		[]string{"when", "duration", "teacher", "student", "status"},
		[]string{"When", "Duration", "Teacher", "Student", "Status"},
		rows,
	); err != nil {
		return fmt.Errorf("failed to build schedule pdf: %w", err)
	}

	return generator.WriteTo(w)
}
