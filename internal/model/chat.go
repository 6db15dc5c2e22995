package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MessageType string

const (
	MessageUser      MessageType = "user"
	MessageAssistant MessageType = "assistant"
)

// ChatMessage 本地聊天记录，按用户追加，读取时按 Timestamp 升序
type ChatMessage struct {
	ID         string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string              `gorm:"type:varchar(64);index:idx_chat_user_ts,priority:1;not null" json:"user_id"`
	Type       MessageType         `gorm:"type:varchar(16);not null" json:"type"`
	Content    string              `gorm:"type:text" json:"content"`
	Timestamp  time.Time           `gorm:"index:idx_chat_user_ts,priority:2;index" json:"timestamp"`
	Attachment *string             `gorm:"type:text" json:"attachment,omitempty"`
	Category   *string             `gorm:"type:varchar(32)" json:"category,omitempty"`
	Amount     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"amount"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
