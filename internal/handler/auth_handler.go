// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"fmt"
	"net/http"

	"messagely/internal/services"
	"messagely/internal/transport/httpdto"
	messagely_errors "messagely/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication HTTP endpoints.
type AuthHandler struct {
	service *services.AuthService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register creates a user and returns a token for them.
func (h *AuthHandler) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errInvalidBody)
		return
	}

	token, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.TokenResponse{Token: token})
}

// Login returns a token for valid credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, messagely_errors.ErrInvalidCredentials)
		return
	}

	token, err := h.service.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.TokenResponse{Token: token})
}

// abortWithError hands err to the error middleware.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

var errInvalidBody = fmt.Errorf("invalid request body: %w", messagely_errors.ErrInvalidInput)
