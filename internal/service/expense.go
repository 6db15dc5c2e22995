package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leon37/KindKeeper/internal/model"
	"github.com/leon37/KindKeeper/internal/repository"
	"github.com/shopspring/decimal"
)

// ErrInvalidInput 表单字段校验失败 (ValidationError)
var ErrInvalidInput = errors.New("invalid input")

// ExpenseInput 前端手动记账表单 (DTO)
type ExpenseInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" binding:"required"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

type IncomeInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source" binding:"required"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

type ReminderInput struct {
	Title       string              `json:"title" binding:"required"`
	Amount      decimal.NullDecimal `json:"amount"`
	Description *string             `json:"description"`
	DueDate     string              `json:"due_date" binding:"required"`
	Recurring   bool                `json:"recurring"`
	Frequency   *string             `json:"frequency"`
}

type ProviderInput struct {
	Name             string              `json:"name" binding:"required"`
	ServiceType      string              `json:"service_type"`
	Salary           decimal.NullDecimal `json:"salary"`
	PaymentFrequency *string             `json:"payment_frequency"`
}

type AttendanceInput struct {
	Date    string  `json:"date"`
	Present bool    `json:"present"`
	Notes   *string `json:"notes"`
}

// Page 列表返回值
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// LedgerService 账本页面的读写：手动录入、按条件查询、月度汇总
type LedgerService struct {
	g   *repository.Gateway
	now func() time.Time
}

func NewLedgerService(g *repository.Gateway) *LedgerService {
	return &LedgerService{g: g, now: time.Now}
}

func (s *LedgerService) AddExpense(ctx context.Context, userID string, in ExpenseInput) (*model.Expense, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	e := &model.Expense{
		UserID:      userID,
		Amount:      in.Amount,
		Category:    string(model.NormalizeCategory(in.Category)),
		Description: in.Description,
		Date:        model.DateOr(in.Date, s.now()),
	}
	if err := s.g.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	slog.Info("expense recorded", "uid", userID, "id", e.ID, "category", e.Category)
	return e, nil
}

func (s *LedgerService) Expenses(ctx context.Context, f repository.ExpenseFilter) (*Page[model.Expense], error) {
	items, total, err := s.g.Expenses.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Page[model.Expense]{Items: items, Total: total}, nil
}

func (s *LedgerService) AddIncome(ctx context.Context, userID string, in IncomeInput) (*model.IncomeEntry, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	e := &model.IncomeEntry{
		UserID:      userID,
		Amount:      in.Amount,
		Source:      in.Source,
		Description: in.Description,
		Date:        model.DateOr(in.Date, s.now()),
	}
	if err := s.g.CreateIncome(ctx, e); err != nil {
		return nil, fmt.Errorf("create income: %w", err)
	}
	return e, nil
}

func (s *LedgerService) Income(ctx context.Context, f repository.IncomeFilter) (*Page[model.IncomeEntry], error) {
	items, total, err := s.g.Income.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Page[model.IncomeEntry]{Items: items, Total: total}, nil
}

func (s *LedgerService) AddReminder(ctx context.Context, userID string, in ReminderInput) (*model.Reminder, error) {
	due, ok := model.ParseDate(in.DueDate)
	if !ok {
		return nil, fmt.Errorf("%w: due_date %q", ErrInvalidInput, in.DueDate)
	}
	r := &model.Reminder{
		UserID:      userID,
		Title:       in.Title,
		Amount:      in.Amount,
		Description: in.Description,
		DueDate:     due,
		Recurring:   in.Recurring,
		Frequency:   in.Frequency,
	}
	if err := s.g.CreateReminder(ctx, r); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	return r, nil
}

func (s *LedgerService) Reminders(ctx context.Context, f repository.ReminderFilter) ([]model.Reminder, error) {
	return s.g.Reminders.List(ctx, f)
}

func (s *LedgerService) AddProvider(ctx context.Context, userID string, in ProviderInput) (*model.ServiceProvider, error) {
	p := &model.ServiceProvider{
		UserID:           userID,
		Name:             in.Name,
		ServiceType:      in.ServiceType,
		Salary:           in.Salary,
		PaymentFrequency: in.PaymentFrequency,
	}
	if p.ServiceType == "" {
		p.ServiceType = model.ServiceTypeMaid
	}
	if err := s.g.CreateServiceProvider(ctx, p); err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	return p, nil
}

func (s *LedgerService) Providers(ctx context.Context, userID string) ([]model.ServiceProvider, error) {
	return s.g.Providers.List(ctx, userID)
}

// MarkAttendance provider 不存在 (或不属于该用户) 时返回 repository.ErrNotFound
func (s *LedgerService) MarkAttendance(ctx context.Context, userID, providerID string, in AttendanceInput) (*model.AttendanceLog, error) {
	l := &model.AttendanceLog{
		UserID:     userID,
		ProviderID: providerID,
		Date:       model.DateOr(in.Date, s.now()),
		Present:    in.Present,
		Notes:      in.Notes,
	}
	if err := s.g.CreateAttendanceLog(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *LedgerService) Attendance(ctx context.Context, f repository.AttendanceFilter) ([]model.AttendanceLog, error) {
	if _, err := s.g.Providers.GetByID(ctx, f.UserID, f.ProviderID); err != nil {
		return nil, err
	}
	return s.g.Attendance.List(ctx, f)
}

func (s *LedgerService) VoiceEntries(ctx context.Context, userID string, dr repository.DateRange) ([]model.VoiceEntry, error) {
	return s.g.VoiceEntries.List(ctx, userID, dr)
}

// MonthlySummary month 为空时取当前月
func (s *LedgerService) MonthlySummary(ctx context.Context, userID, month string) (*repository.MonthlySummary, error) {
	if month == "" {
		month = s.now().Format("2006-01")
	}
	return s.g.Summaries.Monthly(ctx, userID, month)
}
