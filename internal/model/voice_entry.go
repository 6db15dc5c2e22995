package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// VoiceEntry 每次处理用户输入都会落一条，作为不可变的审计记录
type VoiceEntry struct {
	ID          string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string              `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Transcript  string              `gorm:"type:text" json:"transcript"`
	Amount      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"amount"`
	Category    *string             `gorm:"type:varchar(32)" json:"category,omitempty"`
	Description string              `gorm:"type:text" json:"description"`
	IsReminder  *bool               `json:"is_reminder,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
	// Operations keeps every operation of the turn, not only the first one.
	Operations datatypes.JSON `json:"operations,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (VoiceEntry) TableName() string {
	return "voice_entries"
}
