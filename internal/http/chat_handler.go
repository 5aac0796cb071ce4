package httpapi

import (
	"errors"
	"net/http"

	"vitalwatch/internal/chat"
	"vitalwatch/internal/models"

	"go.uber.org/zap"
)

// ChatHandler 急救助手会话接口
type ChatHandler struct {
	sessions *chat.Sessions
	logger   *zap.Logger
}

func NewChatHandler(sessions *chat.Sessions, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{sessions: sessions, logger: logger}
}

type createSessionResponse struct {
	SessionID string               `json:"session_id"`
	Messages  []models.ChatMessage `json:"messages"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// POST /api/v1/chat/sessions
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.sessions.Create()
	msgs, _ := h.sessions.Messages(id)
	writeJSON(w, http.StatusOK, Ok(createSessionResponse{SessionID: id, Messages: msgs}))
}

// GET /api/v1/chat/sessions/{id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request, id string) {
	msgs, err := h.sessions.Messages(id)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(msgs))
}

// POST /api/v1/chat/sessions/{id}/messages
// body: {"text": "..."}
// 回复在延迟后异步追加，客户端轮询 GET 获取
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request, id string) {
	var req sendMessageRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if err := h.sessions.Send(id, req.Text); err != nil {
		h.writeSessionError(w, err)
		return
	}
	msgs, _ := h.sessions.Messages(id)
	writeJSON(w, http.StatusAccepted, Ok(msgs))
}

func (h *ChatHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
	case errors.Is(err, chat.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	default:
		h.logger.Error("Chat request failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
	}
}
