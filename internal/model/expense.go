package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense 是映射 expenses 表的结构体
type Expense struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string          `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	Category    string          `gorm:"type:varchar(32);index" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	Date        time.Time       `gorm:"index" json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName 强制指定表名
func (Expense) TableName() string {
	return "expenses"
}

// IncomeEntry 收入记录 (pension, rent, interest ...)
type IncomeEntry struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string          `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	Source      string          `gorm:"type:varchar(64);index" json:"source"`
	Description string          `gorm:"type:text" json:"description"`
	Date        time.Time       `gorm:"index" json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (IncomeEntry) TableName() string {
	return "income_entries"
}
