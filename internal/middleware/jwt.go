package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/response"
	"github.com/quizdrill/backend/internal/service"
)

// ContextKeyClaims is the Gin context key holding validated JWT claims.
const ContextKeyClaims = "claims"

// RequireAuth validates the bearer token and stores its claims in the
// context for handlers to read via GetClaims.
func RequireAuth(authService *service.AuthService) gin.HandlerFunc {
	return authWith(authService, false)
}

// RequireAdmin validates the bearer token and additionally rejects
// anyone without the admin role.
func RequireAdmin(authService *service.AuthService) gin.HandlerFunc {
	return authWith(authService, true)
}

func authWith(authService *service.AuthService, adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authService.ValidateToken(c.Request.Context(), bearerToken(c))
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		if adminOnly && claims.Role != model.RoleAdmin {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireWSAuth reads the token from the ?token query parameter.
// Browsers cannot set headers on WebSocket upgrade requests.
func RequireWSAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), tokenStr)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims stored by the auth middleware.
// Returns nil when the route is not behind one.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func abortUnauthorized(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTokenRevoked) {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRevoked)
		return
	}
	response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// Returns empty on any other shape; validation rejects empty tokens.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
