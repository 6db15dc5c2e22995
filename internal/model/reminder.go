package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "PENDING"
	ReminderCompleted ReminderStatus = "COMPLETED"
	ReminderCancelled ReminderStatus = "CANCELLED"
)

// Valid reports whether s is one of the three known statuses.
func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderPending, ReminderCompleted, ReminderCancelled:
		return true
	}
	return false
}

type Reminder struct {
	ID          string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string              `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Title       string              `gorm:"type:varchar(255);not null" json:"title"`
	Amount      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"amount"`
	Description *string             `gorm:"type:text" json:"description,omitempty"`
	DueDate     time.Time           `gorm:"index" json:"due_date"`
	Recurring   bool                `json:"recurring"`
	Frequency   *string             `gorm:"type:varchar(32)" json:"frequency,omitempty"`
	Status      ReminderStatus      `gorm:"type:varchar(16);index;default:PENDING" json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

func (Reminder) TableName() string {
	return "reminders"
}
