package grouplessons

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers group lesson routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/group-lessons")
	{
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/:id", h.Get)
		g.GET("/:id/participants", h.Participants)
		g.POST("/:id/enroll", h.Enroll)

		g.POST("/:id/confirm", h.statusAction(h.service.Confirm))
		g.POST("/:id/start", h.statusAction(h.service.Start))
		g.POST("/:id/complete", h.statusAction(h.service.Complete))
		g.POST("/:id/cancel", h.reasonAction(h.service.Cancel))
		g.POST("/:id/postpone", h.reasonAction(h.service.Postpone))
		g.POST("/:id/reopen", h.statusAction(h.service.Reopen))
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateGroupLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group lesson id"})
		return
	}

	lesson, err := h.service.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "group lesson not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lesson)
}

func (h *Handler) List(c *gin.Context) {
	var from, to *time.Time
	if t, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		from = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		to = &t
	}

	result, err := h.service.List(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Enroll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group lesson id"})
		return
	}

	var req struct {
		StudentID uuid.UUID `json:"student_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.Enroll(c.Request.Context(), id, req.StudentID)
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "group lesson not found"})
	case errors.Is(err, ErrFull):
		c.JSON(http.StatusConflict, gin.H{"error": "group lesson is full"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "enrolled"})
	}
}

func (h *Handler) Participants(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group lesson id"})
		return
	}

	participants, err := h.service.Participants(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, participants)
}

func (h *Handler) statusAction(fn func(ctx context.Context, id uuid.UUID) (*GroupLesson, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group lesson id"})
			return
		}
		h.respondTransition(c, func() (*GroupLesson, error) {
			return fn(c.Request.Context(), id)
		})
	}
}

func (h *Handler) reasonAction(fn func(ctx context.Context, id uuid.UUID, reason string) (*GroupLesson, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group lesson id"})
			return
		}

		var req struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&req)

		h.respondTransition(c, func() (*GroupLesson, error) {
			return fn(c.Request.Context(), id, req.Reason)
		})
	}
}

func (h *Handler) respondTransition(c *gin.Context, apply func() (*GroupLesson, error)) {
	lesson, err := apply()
	if errors.Is(err, scheduling.ErrInvalidTransition) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "group lesson not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lesson)
}
