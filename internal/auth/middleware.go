package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
)

const (
	contextUserIDKey = "auth_user_id"
	contextRoleKey   = "auth_role"
)

// Middleware validates the Bearer token and stores the requester's identity
// and role on the request context.
func Middleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			// Websocket clients pass the token as a query parameter.
			header = "Bearer " + c.Query("token")
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == "" || tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := service.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		role, ok := scheduling.ParseRole(claims.Role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown role"})
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Set(contextRoleKey, role)
		c.Next()
	}
}

// RequireRole rejects requests whose role is not in the allowed set.
func RequireRole(allowed ...scheduling.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleFromContext(c)
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// RoleFromContext returns the requester's role. Unauthenticated requests get
// the least-privileged role.
func RoleFromContext(c *gin.Context) scheduling.Role {
	if v, exists := c.Get(contextRoleKey); exists {
		if role, ok := v.(scheduling.Role); ok {
			return role
		}
	}
	return scheduling.RoleStudent
}

// UserIDFromContext returns the authenticated user's id.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(contextUserIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
