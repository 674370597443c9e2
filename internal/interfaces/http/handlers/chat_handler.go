package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
)

// ChatService answers compliance questions.
type ChatService interface {
	Reply(ctx context.Context, query, contextText string) (string, error)
}

// ChatHandler serves the chatbot endpoint.
type ChatHandler struct {
	svc    ChatService
	logger logging.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc ChatService, logger logging.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// Chat handles POST /api/v1/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	reply, err := h.svc.Reply(c.Request.Context(), req.UserQuery, req.Context)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, ChatResponse{Response: reply})
}
