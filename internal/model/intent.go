package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Table names the Intent Service is allowed to return.
const (
	TableExpenses       = "expenses"
	TableIncomeEntries  = "income_entries"
	TableMaidDailyLog   = "maid_daily_log"
	TableMaidAttendance = "maid_attendance"
	TableReminders      = "reminders"
	TableBills          = "bills"
)

// RawOperation 是 LLM 返回的一条数据库操作指令，data 原样保留
type RawOperation struct {
	Table     string          `json:"table"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
}

// Intent LLM 对一次用户输入的解析结果
type Intent struct {
	Reply      string         `json:"userResponse"`
	Operations []RawOperation `json:"dbOperations"`
}

// TurnSummary is the projection of the first operation of a turn.
type TurnSummary struct {
	Amount     decimal.NullDecimal
	Category   *string
	DueDate    *time.Time
	IsReminder bool
}

// SummarizeFirst builds the projection from ops[0]; an empty list yields
// a zero summary. Malformed data is ignored field by field.
func SummarizeFirst(ops []RawOperation) TurnSummary {
	if len(ops) == 0 {
		return TurnSummary{}
	}
	first := ops[0]
	var fields struct {
		Amount   json.RawMessage `json:"amount"`
		Category *string         `json:"category"`
		DueDate  string          `json:"due_date"`
	}
	_ = json.Unmarshal(first.Data, &fields)

	s := TurnSummary{
		Category:   fields.Category,
		IsReminder: first.Table == TableReminders,
	}
	if len(fields.Amount) > 0 {
		var amt decimal.NullDecimal
		if err := json.Unmarshal(fields.Amount, &amt); err == nil {
			s.Amount = amt
		}
	}
	if t, ok := ParseDate(fields.DueDate); ok {
		s.DueDate = &t
	}
	return s
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the date shapes the model tends to produce.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateOr parses s and falls back to def when s is empty or unparseable.
func DateOr(s string, def time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return def
}
