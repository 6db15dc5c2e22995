package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ServiceTypeMaid  = "maid"
	FrequencyMonthly = "monthly"
)

// ServiceProvider household help (maid, cook, driver) employed by a user.
type ServiceProvider struct {
	ID               string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID           string              `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Name             string              `gorm:"type:varchar(100);not null" json:"name"`
	ServiceType      string              `gorm:"type:varchar(32)" json:"service_type"`
	Salary           decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"salary"`
	PaymentFrequency *string             `gorm:"type:varchar(32)" json:"payment_frequency,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

func (ServiceProvider) TableName() string {
	return "service_providers"
}

// AttendanceLog 一条出勤记录，ProviderID 必须指向已存在的 ServiceProvider
type AttendanceLog struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	ProviderID string    `gorm:"type:varchar(36);index;not null" json:"provider_id"`
	Date       time.Time `gorm:"index" json:"date"`
	Present    bool      `json:"present"`
	Notes      *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	Provider *ServiceProvider `gorm:"foreignKey:ProviderID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (AttendanceLog) TableName() string {
	return "attendance_logs"
}
