package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"messagely/internal/services"
	"messagely/internal/transport/httpdto"
	messagely_errors "messagely/pkg/errors"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Get returns a message to its sender or recipient.
func (h *MessageHandler) Get(c *gin.Context) {
	id, err := parseMessageID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	username, _ := services.UsernameFromContext(c.Request.Context())

	detail, err := h.service.GetForUser(c.Request.Context(), id, username)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.MessageDetailResponse{Message: httpdto.FromDetail(detail)})
}

// Create sends a message from the caller.
func (h *MessageHandler) Create(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errInvalidBody)
		return
	}
	username, _ := services.UsernameFromContext(c.Request.Context())

	msg, err := h.service.Send(c.Request.Context(), services.SendInput{
		FromUsername: username,
		ToUsername:   req.ToUsername,
		Body:         req.Body,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.MessageCreatedResponse{Message: httpdto.FromMessage(msg)})
}

// MarkRead marks a message read. Only the recipient may do this.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, err := parseMessageID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	username, _ := services.UsernameFromContext(c.Request.Context())

	receipt, err := h.service.MarkReadForUser(c.Request.Context(), id, username)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.MessageReadResponse{MessageRead: httpdto.FromReadReceipt(receipt)})
}

func parseMessageID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid message id %q: %w", raw, messagely_errors.ErrInvalidInput)
	}
	return id, nil
}
