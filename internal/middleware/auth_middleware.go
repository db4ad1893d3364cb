package middleware

import (
	"strings"

	"messagely/internal/services"
	messagely_errors "messagely/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AuthenticateJWT attaches the caller's username to the request context when
// a valid bearer token is present. It never rejects a request.
func AuthenticateJWT(service *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := service.ParseAccessToken(token)
		if err != nil {
			c.Next()
			return
		}

		ctx := services.WithUsername(c.Request.Context(), claims.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// EnsureLoggedIn rejects requests without an authenticated caller.
func EnsureLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := services.UsernameFromContext(c.Request.Context()); !ok {
			c.Error(messagely_errors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// EnsureCorrectUser only lets the caller whose username equals the named
// path parameter through.
func EnsureCorrectUser(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := services.UsernameFromContext(c.Request.Context())
		if !ok {
			c.Error(messagely_errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if username != c.Param(param) {
			c.Error(messagely_errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	return BearerToken(c.GetHeader("Authorization"))
}

// BearerToken returns the token of an "Authorization: Bearer <token>" value.
func BearerToken(value string) string {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
