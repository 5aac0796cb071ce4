package chat

import (
	"errors"
	"strings"
	"sync"
	"time"

	"vitalwatch/internal/models"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrEmptyMessage    = errors.New("empty chat message")
)

// DefaultReplyDelay 模拟回复延迟
const DefaultReplyDelay = 600 * time.Millisecond

// conversation 单个会话的消息日志（只追加）
type conversation struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

func (c *conversation) append(m models.ChatMessage) {
	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()
}

func (c *conversation) snapshot() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatMessage(nil), c.messages...)
}

// Sessions 会话存储（go-cache，访问时续期）
type Sessions struct {
	cache      *cache.Cache
	responder  *Responder
	replyDelay time.Duration
	logger     *zap.Logger
}

// NewSessions ttl 为会话空闲过期时间
func NewSessions(responder *Responder, replyDelay, ttl time.Duration, logger *zap.Logger) *Sessions {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if replyDelay < 0 {
		replyDelay = 0
	}
	return &Sessions{
		cache:      cache.New(ttl, ttl/2),
		responder:  responder,
		replyDelay: replyDelay,
		logger:     logger,
	}
}

// Create 新建会话，首条消息为机器人问候
func (s *Sessions) Create() string {
	id := uuid.NewString()
	conv := &conversation{}
	conv.append(models.ChatMessage{Sender: models.SenderBot, Text: Greeting})
	s.cache.Set(id, conv, cache.DefaultExpiration)
	return id
}

func (s *Sessions) get(id string) (*conversation, error) {
	x, found := s.cache.Get(id)
	if !found {
		return nil, ErrSessionNotFound
	}
	conv := x.(*conversation)
	s.cache.Set(id, conv, cache.DefaultExpiration)
	return conv, nil
}

// Messages 返回会话消息副本
func (s *Sessions) Messages(id string) ([]models.ChatMessage, error) {
	conv, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return conv.snapshot(), nil
}

// Send 立即追加用户消息，延迟后追加机器人回复（定时器不可取消，会话过期后回复丢失）
func (s *Sessions) Send(id, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	conv, err := s.get(id)
	if err != nil {
		return err
	}

	conv.append(models.ChatMessage{Sender: models.SenderUser, Text: text})
	reply := s.responder.Respond(text)

	s.logger.Debug("Chat message received",
		zap.String("session_id", id),
		zap.String("matched", s.responder.Match(text)),
	)

	time.AfterFunc(s.replyDelay, func() {
		conv.append(models.ChatMessage{Sender: models.SenderBot, Text: reply})
	})
	return nil
}
