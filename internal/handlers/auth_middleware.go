package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

// AuthMiddleware authenticates requests with the session token
type AuthMiddleware struct {
	BaseHandler
	auth       services.AuthService
	cookieName string
}

func NewAuthMiddleware(auth services.AuthService, cookieName string, logger utils.Logger) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "token"
	}
	return &AuthMiddleware{
		BaseHandler: NewBaseHandler(logger),
		auth:        auth,
		cookieName:  cookieName,
	}
}

// RequireAuth rejects requests without a valid token and stores the user id
// in the context under "user_id".
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			m.RespondWithError(c, http.StatusUnauthorized, "User not authenticated!", nil)
			return
		}

		userID, err := m.auth.ParseToken(token)
		if err != nil {
			if !errors.Is(err, services.ErrTokenExpired) {
				m.log(c).Warn("Rejected session token", "error", err)
			}
			m.RespondWithError(c, http.StatusUnauthorized, "Authentication failed. Invalid or expired token.", nil)
			return
		}

		c.Set(contextUserID, userID)
		c.Next()
	}
}

// extractToken reads the session cookie, falling back to a Bearer header
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if token, err := c.Cookie(m.cookieName); err == nil && token != "" {
		return token
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// userIDFromContext extracts the authenticated user id set by RequireAuth
func userIDFromContext(c *gin.Context) (uint, bool) {
	v, ok := c.Get(contextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
