package service

import (
	"context"
	"fmt"
	"io"

	"github.com/leon37/KindKeeper/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetExpenses  = "Expenses"
	sheetIncome    = "Income"
	sheetReminders = "Reminders"
)

// ExportService 把账本导出成 xlsx，三个工作表
type ExportService struct {
	expenses  repository.ExpenseRepo
	income    repository.IncomeRepo
	reminders repository.ReminderRepo
}

func NewExportService(g *repository.Gateway) *ExportService {
	return &ExportService{expenses: g.Expenses, income: g.Income, reminders: g.Reminders}
}

func (s *ExportService) Logbook(ctx context.Context, userID string, dr repository.DateRange, w io.Writer) error {
	expenses, _, err := s.expenses.List(ctx, repository.ExpenseFilter{UserID: userID, Range: dr})
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	income, _, err := s.income.List(ctx, repository.IncomeFilter{UserID: userID, Range: dr})
	if err != nil {
		return fmt.Errorf("list income: %w", err)
	}
	reminders, err := s.reminders.List(ctx, repository.ReminderFilter{UserID: userID, Range: dr})
	if err != nil {
		return fmt.Errorf("list reminders: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	expenseRows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		expenseRows = append(expenseRows, []any{e.Date.Format("2006-01-02"), e.Category, e.Description, e.Amount.InexactFloat64()})
	}
	if err := writeSheet(f, sheetExpenses, []any{"Date", "Category", "Description", "Amount"}, expenseRows); err != nil {
		return err
	}

	incomeRows := make([][]any, 0, len(income))
	for _, e := range income {
		incomeRows = append(incomeRows, []any{e.Date.Format("2006-01-02"), e.Source, e.Description, e.Amount.InexactFloat64()})
	}
	if err := writeSheet(f, sheetIncome, []any{"Date", "Source", "Description", "Amount"}, incomeRows); err != nil {
		return err
	}

	reminderRows := make([][]any, 0, len(reminders))
	for _, r := range reminders {
		reminderRows = append(reminderRows, []any{
			r.DueDate.Format("2006-01-02"), r.Title, deref(r.Description), nullAmount(r.Amount), r.Recurring, string(r.Status),
		})
	}
	if err := writeSheet(f, sheetReminders, []any{"Due date", "Title", "Description", "Amount", "Recurring", "Status"}, reminderRows); err != nil {
		return err
	}

	// NewFile 自带的默认 Sheet1 不需要
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if idx, err := f.GetSheetIndex(sheetExpenses); err == nil {
		f.SetActiveSheet(idx)
	}
	return f.Write(w)
}

func writeSheet(f *excelize.File, name string, header []any, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(name, "A", "A", 12)
	_ = f.SetColWidth(name, "B", "C", 30)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullAmount(d decimal.NullDecimal) any {
	if !d.Valid {
		return ""
	}
	return d.Decimal.InexactFloat64()
}

