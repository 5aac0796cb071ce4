package models

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatMessage 急救助手对话消息（只追加）
type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}
