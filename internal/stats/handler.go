package stats

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers dashboard and export routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/stats")
	{
		g.GET("/dashboard", h.Dashboard)
		g.GET("/lessons-by-status", h.LessonsByStatus)
		g.GET("/teacher-loads", h.TeacherLoads)
		g.GET("/student-activity", h.StudentActivities)
		g.GET("/package-utilization", h.PackageUtilizations)
		g.GET("/export/lessons.xlsx", h.ExportLessonsExcel)
		g.GET("/export/schedule.pdf", h.ExportSchedulePDF)
	}
}

func parsePeriod(c *gin.Context) (Period, bool) {
	var period Period
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return period, false
		}
		period.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
			return period, false
		}
		period.To = t
	}
	return period, true
}

func (h *Handler) Dashboard(c *gin.Context) {
	summary, err := h.service.DashboardSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) LessonsByStatus(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	counts, err := h.service.LessonsByStatus(c.Request.Context(), period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) TeacherLoads(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	loads, err := h.service.TeacherLoads(c.Request.Context(), period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, loads)
}

func (h *Handler) StudentActivities(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	activities, err := h.service.StudentActivities(c.Request.Context(), period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *Handler) PackageUtilizations(c *gin.Context) {
	var expiringBefore *time.Time
	if v := c.Query("expiring_before"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expiring_before date, expected YYYY-MM-DD"})
			return
		}
		expiringBefore = &t
	}

	utilizations, err := h.service.PackageUtilizations(c.Request.Context(), expiringBefore)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, utilizations)
}

func (h *Handler) ExportLessonsExcel(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="lesson-stats.xlsx"`)

	if err := h.service.ExportLessonStatsExcel(c.Request.Context(), period, c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
}

func (h *Handler) ExportSchedulePDF(c *gin.Context) {
	weekStart := time.Now()
	if v := c.Query("week"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week date, expected YYYY-MM-DD"})
			return
		}
		weekStart = t
	}

	var teacherID *uuid.UUID
	if v := c.Query("teacher_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid teacher id"})
			return
		}
		teacherID = &id
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="schedule.pdf"`)

	if err := h.service.ExportSchedulePDF(c.Request.Context(), weekStart, teacherID, c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
}
