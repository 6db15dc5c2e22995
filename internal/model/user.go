package model

import "time"

type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null;unique;index" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthClaims struct {
	UserID string `json:"user_id"`
}

// UserSettings 个人偏好 (语言、语音播报、大字体)
type UserSettings struct {
	UserID       string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	Language     string    `gorm:"type:varchar(16)" json:"language"`
	VoiceEnabled bool      `json:"voice_enabled"`
	LargeText    bool      `json:"large_text"`
	Currency     string    `gorm:"type:varchar(8)" json:"currency"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

type EmergencyContact struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID       string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Relationship string    `gorm:"type:varchar(64)" json:"relationship"`
	Phone        string    `gorm:"type:varchar(32);not null" json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

func (EmergencyContact) TableName() string {
	return "emergency_contacts"
}

type LinkedBank struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	BankName      string    `gorm:"type:varchar(100);not null" json:"bank_name"`
	AccountType   string    `gorm:"type:varchar(32)" json:"account_type"`
	AccountNumber string    `gorm:"type:varchar(64);not null" json:"account_number"`
	CreatedAt     time.Time `json:"created_at"`
}

func (LinkedBank) TableName() string {
	return "linked_banks"
}

// Profile 是前端 "当前用户" 会话记录：用户 + 设置 + 紧急联系人 + 绑定银行
type Profile struct {
	User     User               `json:"user"`
	Settings UserSettings       `json:"settings"`
	Contacts []EmergencyContact `json:"emergency_contacts"`
	Banks    []LinkedBank       `json:"linked_banks"`
}
