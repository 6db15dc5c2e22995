package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&model.Expense{}, &model.IncomeEntry{}, &model.ServiceProvider{}, &model.AttendanceLog{},
		&model.Reminder{}, &model.VoiceEntry{}, &model.EmergencyContact{}, &model.LinkedBank{},
		&model.UserSettings{}, &model.User{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestExpenseRepo_CreateAndList(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(newTestDB(t))

	day := time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)
	fixtures := []model.Expense{
		{UserID: "u1", Amount: decimal.NewFromInt(500), Category: "GROCERIES", Description: "Vegetables", Date: day},
		{UserID: "u1", Amount: decimal.NewFromInt(200), Category: "MEDICAL", Description: "Tablets", Date: day.AddDate(0, 0, 1)},
		{UserID: "u2", Amount: decimal.NewFromInt(900), Category: "GROCERIES", Description: "Rice", Date: day},
	}
	for i := range fixtures {
		if err := g.CreateExpense(ctx, &fixtures[i]); err != nil {
			t.Fatalf("CreateExpense error = %v", err)
		}
		if fixtures[i].ID == "" {
			t.Fatal("CreateExpense did not assign an id")
		}
	}

	list, total, err := g.Expenses.List(ctx, ExpenseFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("List total=%d len=%d, want 2/2", total, len(list))
	}
	if list[0].Description != "Tablets" {
		t.Errorf("first = %q, want newest first (Tablets)", list[0].Description)
	}

	list, _, err = g.Expenses.List(ctx, ExpenseFilter{UserID: "u1", Category: "GROCERIES"})
	if err != nil || len(list) != 1 || !list[0].Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("List(category) = %+v, %v", list, err)
	}

	list, total, err = g.Expenses.List(ctx, ExpenseFilter{UserID: "u1", Pagination: Pagination{Page: 2, PageSize: 1}})
	if err != nil || total != 2 || len(list) != 1 || list[0].Description != "Vegetables" {
		t.Errorf("List(page 2) = %+v total=%d err=%v", list, total, err)
	}
}

func TestExpenseRepo_DefaultsDate(t *testing.T) {
	g := NewGateway(newTestDB(t))
	e := &model.Expense{UserID: "u1", Amount: decimal.NewFromInt(10), Category: "MISC"}
	if err := g.CreateExpense(context.Background(), e); err != nil {
		t.Fatalf("CreateExpense error = %v", err)
	}
	if e.Date.IsZero() {
		t.Error("Date was not defaulted")
	}
}

func TestAttendanceRepo_RequiresProvider(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(newTestDB(t))

	err := g.CreateAttendanceLog(ctx, &model.AttendanceLog{UserID: "u1", ProviderID: "missing", Present: true})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateAttendanceLog error = %v, want ErrNotFound", err)
	}

	p := &model.ServiceProvider{UserID: "u1", Name: faker.FirstName(), ServiceType: model.ServiceTypeMaid}
	if err := g.CreateServiceProvider(ctx, p); err != nil {
		t.Fatalf("CreateServiceProvider error = %v", err)
	}

	// provider 属于别的用户也不行
	err = g.CreateAttendanceLog(ctx, &model.AttendanceLog{UserID: "u2", ProviderID: p.ID})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user CreateAttendanceLog error = %v, want ErrNotFound", err)
	}

	if err := g.CreateAttendanceLog(ctx, &model.AttendanceLog{UserID: "u1", ProviderID: p.ID, Present: false}); err != nil {
		t.Fatalf("CreateAttendanceLog error = %v", err)
	}
	logs, err := g.Attendance.List(ctx, AttendanceFilter{UserID: "u1", ProviderID: p.ID})
	if err != nil || len(logs) != 1 || logs[0].Present {
		t.Errorf("Attendance.List = %+v, %v", logs, err)
	}
}

func TestProviderRepo_DuplicatesAllowed(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(newTestDB(t))
	for i := 0; i < 2; i++ {
		if err := g.CreateServiceProvider(ctx, &model.ServiceProvider{UserID: "u1", Name: "Priya"}); err != nil {
			t.Fatalf("CreateServiceProvider error = %v", err)
		}
	}
	list, err := g.Providers.List(ctx, "u1")
	if err != nil || len(list) != 2 {
		t.Errorf("Providers.List = %d rows, %v; want 2", len(list), err)
	}
	if _, err := g.Providers.GetByID(ctx, "u2", list[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID other user error = %v, want ErrNotFound", err)
	}
}

func TestReminderRepo_ForcesPending(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(newTestDB(t))

	r := &model.Reminder{UserID: "u1", Title: "Pay electricity bill", DueDate: time.Now().AddDate(0, 0, 3), Status: model.ReminderCompleted}
	if err := g.CreateReminder(ctx, r); err != nil {
		t.Fatalf("CreateReminder error = %v", err)
	}
	if r.Status != model.ReminderPending {
		t.Errorf("Status = %s, want PENDING", r.Status)
	}

	list, err := g.Reminders.List(ctx, ReminderFilter{UserID: "u1", Status: model.ReminderPending})
	if err != nil || len(list) != 1 {
		t.Errorf("Reminders.List = %+v, %v", list, err)
	}
}

func TestSummaryRepo_Monthly(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	g := NewGateway(db)

	in := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	out := time.Date(2024, 4, 2, 12, 0, 0, 0, time.Local)
	_ = g.CreateExpense(ctx, &model.Expense{UserID: "u1", Amount: decimal.NewFromInt(500), Category: "GROCERIES", Date: in})
	_ = g.CreateExpense(ctx, &model.Expense{UserID: "u1", Amount: decimal.NewFromInt(250), Category: "GROCERIES", Date: in})
	_ = g.CreateExpense(ctx, &model.Expense{UserID: "u1", Amount: decimal.NewFromInt(300), Category: "MEDICAL", Date: in})
	_ = g.CreateExpense(ctx, &model.Expense{UserID: "u1", Amount: decimal.NewFromInt(999), Category: "MEDICAL", Date: out})
	_ = g.CreateIncome(ctx, &model.IncomeEntry{UserID: "u1", Amount: decimal.NewFromInt(25000), Source: "pension", Date: in})

	s, err := g.Summaries.Monthly(ctx, "u1", "2024-03")
	if err != nil {
		t.Fatalf("Monthly error = %v", err)
	}
	if !s.TotalExpense.Equal(decimal.NewFromInt(1050)) {
		t.Errorf("TotalExpense = %s, want 1050", s.TotalExpense)
	}
	if !s.ByCategory["GROCERIES"].Equal(decimal.NewFromInt(750)) {
		t.Errorf("GROCERIES = %s, want 750", s.ByCategory["GROCERIES"])
	}
	if !s.Balance.Equal(decimal.NewFromInt(23950)) {
		t.Errorf("Balance = %s, want 23950", s.Balance)
	}

	if _, err := g.Summaries.Monthly(ctx, "u1", "March"); err == nil {
		t.Error("Monthly(bad month) error = nil")
	}
}

func TestProfileRepo(t *testing.T) {
	ctx := context.Background()
	p := NewProfileRepo(newTestDB(t))

	s, err := p.Settings(ctx, "u1")
	if err != nil || s.Language != "en-IN" || !s.VoiceEnabled {
		t.Fatalf("default Settings = %+v, %v", s, err)
	}
	s.Language = "hi-IN"
	s.VoiceEnabled = false
	if err := p.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings error = %v", err)
	}
	s.Currency = "USD"
	if err := p.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings (update) error = %v", err)
	}
	got, _ := p.Settings(ctx, "u1")
	if got.Language != "hi-IN" || got.VoiceEnabled || got.Currency != "USD" {
		t.Errorf("Settings = %+v", got)
	}

	if err := p.AddContact(ctx, &model.EmergencyContact{UserID: "u1", Name: faker.Name(), Relationship: "son", Phone: "9876543210"}); err != nil {
		t.Fatalf("AddContact error = %v", err)
	}
	if err := p.AddBank(ctx, &model.LinkedBank{UserID: "u1", BankName: "SBI", AccountType: "savings", AccountNumber: "XXXX1234"}); err != nil {
		t.Fatalf("AddBank error = %v", err)
	}
	contacts, _ := p.Contacts(ctx, "u1")
	banks, _ := p.Banks(ctx, "u1")
	if len(contacts) != 1 || len(banks) != 1 {
		t.Errorf("contacts=%d banks=%d, want 1/1", len(contacts), len(banks))
	}
}
