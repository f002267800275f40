package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
	"github.com/Marga-Ghale/ora-crm-backend/internal/models"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// AuthMiddleware validates JWT tokens and sets user context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.App().WithField("path", c.Request.URL.Path).Debug("[Auth] Missing or malformed Authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			logger.App().WithError(err).WithField("path", c.Request.URL.Path).Debug("[Auth] Invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid token"})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects authenticated users whose role is not in allowed.
func RequireRole(allowed ...string) gin.HandlerFunc {
	set := make(map[string]bool, len(allowed))
	for _, r := range allowed {
		set[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if !set[role] {
			logger.App().WithFields(logrus.Fields{
				"user_id": c.GetString(ContextUserID),
				"role":    role,
				"path":    c.Request.URL.Path,
			}).Warn("[Auth] Role not permitted")
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: "Forbidden"})
			return
		}
		c.Next()
	}
}

// BearerToken extracts the token from a "Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// RequireUserID writes a 401 when no user is in the context.
func RequireUserID(c *gin.Context) (string, bool) {
	userID := GetUserID(c)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return "", false
	}
	return userID, true
}
