package handlers

import (
	"io"
	"net/http"
	"time"

	"nafany/models"
	"nafany/services/chat"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const streamHeartbeat = 25 * time.Second

type ChatHandler struct {
	ChatService chat.ChatService
}

func NewChatHandler(chatService chat.ChatService) *ChatHandler {
	return &ChatHandler{ChatService: chatService}
}

// ListChatsHandler handles GET /api/chats.
func (h *ChatHandler) ListChatsHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	chats, err := h.ChatService.Chats(c.Request.Context(), s)
	if err != nil {
		respondError(c, err, zap.String("email", s.Email))
		return
	}
	c.JSON(http.StatusOK, chats)
}

// MessagesHandler handles GET /api/chats/:chatID/messages.
func (h *ChatHandler) MessagesHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	chatID := c.Param("chatID")
	msgs, err := h.ChatService.Messages(c.Request.Context(), chatID, s)
	if err != nil {
		respondError(c, err, zap.String("chatID", chatID))
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// SendMessageHandler handles POST /api/chats/messages.
func (h *ChatHandler) SendMessageHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var req models.MessageInput
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.ChatService.Send(c.Request.Context(), s, req)
	if err != nil {
		respondError(c, err, zap.String("sender", s.Email), zap.String("receiver", req.ReceiverID))
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkReadHandler handles PUT /api/chats/:chatID/read.
func (h *ChatHandler) MarkReadHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	chatID := c.Param("chatID")
	n, err := h.ChatService.MarkRead(c.Request.Context(), chatID, s)
	if err != nil {
		respondError(c, err, zap.String("chatID", chatID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// StreamHandler handles GET /api/chats/:chatID/stream as Server-Sent Events.
func (h *ChatHandler) StreamHandler(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	chatID := c.Param("chatID")
	msgs, err := h.ChatService.Subscribe(c.Request.Context(), chatID, s)
	if err != nil {
		respondError(c, err, zap.String("chatID", chatID))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()
	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, open := <-msgs:
			if !open {
				return false
			}
			c.SSEvent("message", msg)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
