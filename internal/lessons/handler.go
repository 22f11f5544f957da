package lessons

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tutor-school/crm-portal/crm-portal-backend/internal/auth"
	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers lesson routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/lessons", h.ListLessons)
	r.POST("/lessons", h.CreateLesson)
	r.GET("/lessons/:id", h.GetLesson)
	r.PUT("/lessons/:id/status", h.ChangeStatus)
	r.POST("/lessons/:id/confirm", h.ConfirmLesson)
	r.GET("/teachers/:id/lessons", h.ListForTeacher)
	r.GET("/students/:id/lessons", h.ListForStudent)
}

func (h *Handler) CreateLesson(c *gin.Context) {
	var req CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson, err := h.service.CreateLesson(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

func (h *Handler) GetLesson(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	lesson, err := h.service.GetLesson(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lesson)
}

func (h *Handler) ListLessons(c *gin.Context) {
	var filter LessonFilter

	if teacherID, err := uuid.Parse(c.Query("teacher_id")); err == nil {
		filter.TeacherID = &teacherID
	}
	if studentID, err := uuid.Parse(c.Query("student_id")); err == nil {
		filter.StudentID = &studentID
	}
	if status := c.Query("status"); status != "" {
		s := scheduling.LessonStatus(status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		filter.Status = &s
	}
	if date, err := time.Parse("2006-01-02", c.Query("date")); err == nil {
		filter.Date = &date
	}

	result, err := h.service.ListLessons(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ChangeStatus is the manual transition endpoint. Invalid transitions come
// back as 422 with the gate's error; store rejections surface verbatim.
func (h *Handler) ChangeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	var req scheduling.ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := auth.RoleFromContext(c)

	lesson, err := h.service.ChangeStatus(c.Request.Context(), id, req, role)
	if errors.Is(err, scheduling.ErrInvalidTransition) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lesson)
}

func (h *Handler) ConfirmLesson(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	lesson, err := h.service.ConfirmLesson(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lesson)
}

func (h *Handler) ListForTeacher(c *gin.Context) {
	teacherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid teacher id"})
		return
	}
	h.listForDate(c, func(date time.Time) ([]Lesson, error) {
		return h.service.ListForTeacher(c.Request.Context(), teacherID, date)
	})
}

func (h *Handler) ListForStudent(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	h.listForDate(c, func(date time.Time) ([]Lesson, error) {
		return h.service.ListForStudent(c.Request.Context(), studentID, date)
	})
}

func (h *Handler) listForDate(c *gin.Context, list func(time.Time) ([]Lesson, error)) {
	date := time.Now()
	if q := c.Query("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	result, err := list(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
