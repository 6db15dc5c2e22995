package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/leon37/KindKeeper/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthlySummary 月度汇总
type MonthlySummary struct {
	Month        string                     `json:"month"`
	TotalExpense decimal.Decimal            `json:"total_expense"`
	TotalIncome  decimal.Decimal            `json:"total_income"`
	Balance      decimal.Decimal            `json:"balance"`
	ByCategory   map[string]decimal.Decimal `json:"by_category"`
	Pending      int64                      `json:"pending_reminders"`
}

type SummaryRepo struct {
	db *gorm.DB
}

func NewSummaryRepo(db *gorm.DB) *SummaryRepo {
	return &SummaryRepo{db: db}
}

// Monthly month 格式 2006-01
func (r *SummaryRepo) Monthly(ctx context.Context, userID, month string) (*MonthlySummary, error) {
	start, err := time.ParseInLocation("2006-01", month, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", month, err)
	}
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	var rows []struct {
		Category string
		Total    decimal.Decimal
	}
	err = r.db.WithContext(ctx).Model(&model.Expense{}).
		Select("category, SUM(amount) AS total").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	s := &MonthlySummary{Month: month, ByCategory: make(map[string]decimal.Decimal, len(rows))}
	for _, row := range rows {
		s.ByCategory[row.Category] = row.Total
		s.TotalExpense = s.TotalExpense.Add(row.Total)
	}

	var income struct{ Total decimal.NullDecimal }
	err = r.db.WithContext(ctx).Model(&model.IncomeEntry{}).
		Select("SUM(amount) AS total").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Scan(&income).Error
	if err != nil {
		return nil, err
	}
	if income.Total.Valid {
		s.TotalIncome = income.Total.Decimal
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)

	err = r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("user_id = ? AND status = ?", userID, model.ReminderPending).
		Count(&s.Pending).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}
