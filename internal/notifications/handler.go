package notifications

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tutor-school/crm-portal/crm-portal-backend/internal/auth"
	"tutor-school/crm-portal/crm-portal-backend/internal/notifications/websocket"
)

type Handler struct {
	service   *Service
	wsManager *websocket.Manager
}

func NewHandler(service *Service, wsManager *websocket.Manager) *Handler {
	return &Handler{service: service, wsManager: wsManager}
}

// RegisterRoutes registers notification routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/notifications", h.List)
	r.POST("/notifications/:id/read", h.MarkRead)
	r.GET("/notifications/ws", h.Connect)
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	limit := 50
	offset := 0
	if q := c.Query("limit"); q != "" {
		if parsed, err := strconv.Atoi(q); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if q := c.Query("offset"); q != "" {
		if parsed, err := strconv.Atoi(q); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	result, err := h.service.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// Connect upgrades the request to a WebSocket for real-time notifications.
func (h *Handler) Connect(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.wsManager.HandleConnection(c.Writer, c.Request, userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
}
