package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrUnknownTable = errors.New("unknown operation table")

// OperationVisitor has one handler per operation kind. Adding a kind to the
// set without a handler is a compile error for every visitor.
type OperationVisitor interface {
	VisitExpense(ctx context.Context, op ExpenseOp) error
	VisitIncome(ctx context.Context, op IncomeOp) error
	VisitAttendance(ctx context.Context, op AttendanceOp) error
	VisitReminder(ctx context.Context, op ReminderOp) error
}

// Operation is the closed set of write instructions.
type Operation interface {
	Accept(ctx context.Context, v OperationVisitor) error
	Table() string
	isOperation()
}

type ExpenseOp struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`

	table string
}

type IncomeOp struct {
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	Description string          `json:"description"`
	Date        string          `json:"date"`

	table string
}

// AttendanceOp maid_daily_log: 先建 provider 再记出勤
type AttendanceOp struct {
	MaidName string              `json:"maid_name"`
	Salary   decimal.NullDecimal `json:"salary"`
	Date     string              `json:"date"`
	Present  bool                `json:"present"`
	Notes    *string             `json:"notes"`

	table string
}

type ReminderOp struct {
	Title       string              `json:"title"`
	Amount      decimal.NullDecimal `json:"amount"`
	Description *string             `json:"description"`
	DueDate     string              `json:"due_date"`
	Recurring   bool                `json:"recurring"`
	Frequency   *string             `json:"frequency"`
	// Status is accepted from the payload but never persisted.
	Status string `json:"status"`

	table string
}

func (o ExpenseOp) Accept(ctx context.Context, v OperationVisitor) error {
	return v.VisitExpense(ctx, o)
}
func (o IncomeOp) Accept(ctx context.Context, v OperationVisitor) error {
	return v.VisitIncome(ctx, o)
}
func (o AttendanceOp) Accept(ctx context.Context, v OperationVisitor) error {
	return v.VisitAttendance(ctx, o)
}
func (o ReminderOp) Accept(ctx context.Context, v OperationVisitor) error {
	return v.VisitReminder(ctx, o)
}

func (o ExpenseOp) Table() string    { return o.table }
func (o IncomeOp) Table() string     { return o.table }
func (o AttendanceOp) Table() string { return o.table }
func (o ReminderOp) Table() string   { return o.table }

func (ExpenseOp) isOperation()    {}
func (IncomeOp) isOperation()     {}
func (AttendanceOp) isOperation() {}
func (ReminderOp) isOperation()   {}

// DecodeOperation maps a raw instruction onto its variant. bills is an
// expense, maid_attendance is the same payload as maid_daily_log.
func DecodeOperation(raw RawOperation) (Operation, error) {
	data := raw.Data
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}

	switch raw.Table {
	case TableExpenses, TableBills:
		op := ExpenseOp{table: raw.Table}
		if err := json.Unmarshal(data, &op); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", raw.Table, err)
		}
		if op.Category == "" && raw.Table == TableBills {
			op.Category = string(CategoryBills)
		}
		return op, nil
	case TableIncomeEntries:
		op := IncomeOp{table: raw.Table}
		if err := json.Unmarshal(data, &op); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", raw.Table, err)
		}
		return op, nil
	case TableMaidDailyLog, TableMaidAttendance:
		op := AttendanceOp{table: raw.Table}
		if err := json.Unmarshal(data, &op); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", raw.Table, err)
		}
		return op, nil
	case TableReminders:
		op := ReminderOp{table: raw.Table}
		if err := json.Unmarshal(data, &op); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", raw.Table, err)
		}
		return op, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTable, raw.Table)
}
