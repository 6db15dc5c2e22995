package repository

import (
	"context"

	"github.com/leon37/KindKeeper/internal/model"
	"gorm.io/gorm"
)

// Gateway 把各表仓储聚合在一起，对 service 层暴露窄接口
type Gateway struct {
	Expenses     ExpenseRepo
	Income       IncomeRepo
	Providers    ProviderRepo
	Attendance   AttendanceRepo
	Reminders    ReminderRepo
	VoiceEntries VoiceEntryRepo
	Profiles     *ProfileRepo
	Summaries    *SummaryRepo
}

func NewGateway(db *gorm.DB) *Gateway {
	return &Gateway{
		Expenses:     NewExpenseRepo(db),
		Income:       NewIncomeRepo(db),
		Providers:    NewProviderRepo(db),
		Attendance:   NewAttendanceRepo(db),
		Reminders:    NewReminderRepo(db),
		VoiceEntries: NewVoiceEntryRepo(db),
		Profiles:     NewProfileRepo(db),
		Summaries:    NewSummaryRepo(db),
	}
}

func (g *Gateway) CreateExpense(ctx context.Context, e *model.Expense) error {
	return g.Expenses.Create(ctx, e)
}

func (g *Gateway) CreateIncome(ctx context.Context, e *model.IncomeEntry) error {
	return g.Income.Create(ctx, e)
}

func (g *Gateway) CreateServiceProvider(ctx context.Context, p *model.ServiceProvider) error {
	return g.Providers.Create(ctx, p)
}

func (g *Gateway) CreateAttendanceLog(ctx context.Context, l *model.AttendanceLog) error {
	return g.Attendance.Create(ctx, l)
}

func (g *Gateway) CreateReminder(ctx context.Context, r *model.Reminder) error {
	return g.Reminders.Create(ctx, r)
}

func (g *Gateway) CreateVoiceEntry(ctx context.Context, e *model.VoiceEntry) error {
	return g.VoiceEntries.Create(ctx, e)
}
