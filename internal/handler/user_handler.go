package handler

import (
	"net/http"

	"messagely/internal/services"
	"messagely/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.All(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.UsersResponse{Users: httpdto.FromUserBasicSlice(users)})
}

func (h *UserHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.UserResponse{User: httpdto.FromProfile(profile)})
}

// MessagesTo lists messages received by :username.
func (h *UserHandler) MessagesTo(c *gin.Context) {
	msgs, err := h.service.MessagesTo(c.Request.Context(), c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.MessagesResponse[httpdto.ReceivedMessageDTO]{Messages: httpdto.FromReceivedSlice(msgs)})
}

// MessagesFrom lists messages sent by :username.
func (h *UserHandler) MessagesFrom(c *gin.Context) {
	msgs, err := h.service.MessagesFrom(c.Request.Context(), c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.MessagesResponse[httpdto.SentMessageDTO]{Messages: httpdto.FromSentSlice(msgs)})
}
