package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type startSessionRequest struct {
	UserID string `json:"userId" binding:"required"`
	Title  string `json:"title" binding:"max=200"`
}

func (h *handlers) startSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	sess, err := h.chat.StartSession(c.Request.Context(), req.UserID, req.Title)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *handlers) listMessages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondServiceError(c, fmt.Errorf("%w: limit must be a positive integer", errInvalidQuery))
			return
		}
		limit = min(n, maxListLimit)
	}
	msgs, err := h.chat.Messages(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"sessionId": c.Param("id"), "messages": msgs})
}

type sendMessageRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message" binding:"required"`
}

func (h *handlers) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	reply, err := h.chat.Send(c.Request.Context(), c.Param("id"), req.UserID, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, reply)
}

func (h *handlers) issues(c *gin.Context) {
	list, err := h.chat.Issues(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"userId": c.Param("userId"), "issues": list})
}
