package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leon37/KindKeeper/internal/chatstore"
	"github.com/leon37/KindKeeper/internal/infrastructure/llm"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Persistence 编排器需要的写接口，由 repository.Gateway 实现
type Persistence interface {
	CreateExpense(ctx context.Context, e *model.Expense) error
	CreateIncome(ctx context.Context, e *model.IncomeEntry) error
	CreateServiceProvider(ctx context.Context, p *model.ServiceProvider) error
	CreateAttendanceLog(ctx context.Context, l *model.AttendanceLog) error
	CreateReminder(ctx context.Context, r *model.Reminder) error
	CreateVoiceEntry(ctx context.Context, e *model.VoiceEntry) error
}

// Publisher 新 VoiceEntry 的通知出口，由 events.Bus 实现
type Publisher interface {
	Publish(entry model.VoiceEntry)
}

// ProcessedData 由第一条操作投影出来的摘要
type ProcessedData struct {
	Category    *string             `json:"category,omitempty"`
	Amount      decimal.NullDecimal `json:"amount"`
	Description string              `json:"description"`
	IsReminder  bool                `json:"is_reminder"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
}

type ProcessResult struct {
	AIResponse    string            `json:"ai_response"`
	ProcessedData ProcessedData     `json:"processed_data"`
	Entry         *model.VoiceEntry `json:"entry,omitempty"`
}

// MessageService 一次用户输入的完整处理：解析 -> 写库 -> 审计 -> 聊天记录 -> 通知
type MessageService struct {
	intent  llm.Provider
	store   Persistence
	history chatstore.Store
	bus     Publisher
	now     func() time.Time
}

func NewMessageService(intent llm.Provider, store Persistence, history chatstore.Store, bus Publisher) *MessageService {
	return &MessageService{
		intent:  intent,
		store:   store,
		history: history,
		bus:     bus,
		now:     time.Now,
	}
}

func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ProcessMessage 只有 Intent Service 失败才返回 error，此时不会有任何写入
func (s *MessageService) ProcessMessage(ctx context.Context, userID, text string) (*ProcessResult, error) {
	return s.process(ctx, userID, text, nil)
}

func (s *MessageService) process(ctx context.Context, userID, text string, attachment *string) (*ProcessResult, error) {
	slog.Info("processing message", "uid", userID, "len", len(text))

	intent, err := s.intent.Interpret(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("interpret message: %w", err)
	}
	callTime := s.now()

	w := &operationWriter{store: s.store, userID: userID, now: callTime}
	for i, raw := range intent.Operations {
		op, err := model.DecodeOperation(raw)
		if errors.Is(err, model.ErrUnknownTable) {
			slog.Debug("ignoring operation", "index", i, "table", raw.Table)
			continue
		}
		if err != nil {
			slog.Error("decode operation failed", "index", i, "table", raw.Table, "err", err)
			continue
		}
		if err := op.Accept(ctx, w); err != nil {
			slog.Error("apply operation failed", "index", i, "table", op.Table(), "err", err)
		}
	}

	summary := model.SummarizeFirst(intent.Operations)
	processed := ProcessedData{
		Category:    summary.Category,
		Amount:      summary.Amount,
		Description: text,
		IsReminder:  summary.IsReminder,
		DueDate:     summary.DueDate,
	}

	entry := s.saveVoiceEntry(ctx, userID, text, processed, intent.Operations, callTime)

	s.appendHistory(ctx, &model.ChatMessage{
		ID:         newMessageID(),
		UserID:     userID,
		Type:       model.MessageUser,
		Content:    text,
		Timestamp:  callTime,
		Attachment: attachment,
		Category:   processed.Category,
		Amount:     processed.Amount,
	})
	s.appendHistory(ctx, &model.ChatMessage{
		ID:        newMessageID(),
		UserID:    userID,
		Type:      model.MessageAssistant,
		Content:   intent.Reply,
		Timestamp: s.now(),
	})

	if entry != nil && s.bus != nil {
		s.bus.Publish(*entry)
	}

	return &ProcessResult{
		AIResponse:    intent.Reply,
		ProcessedData: processed,
		Entry:         entry,
	}, nil
}

// saveVoiceEntry 写审计记录；失败只记日志，返回 nil
func (s *MessageService) saveVoiceEntry(ctx context.Context, userID, text string, p ProcessedData, ops []model.RawOperation, at time.Time) *model.VoiceEntry {
	isReminder := p.IsReminder
	entry := &model.VoiceEntry{
		UserID:      userID,
		Transcript:  text,
		Amount:      p.Amount,
		Category:    p.Category,
		Description: p.Description,
		IsReminder:  &isReminder,
		DueDate:     p.DueDate,
		CreatedAt:   at,
	}
	if ops == nil {
		ops = []model.RawOperation{}
	}
	if raw, err := json.Marshal(ops); err == nil {
		entry.Operations = datatypes.JSON(raw)
	}

	if err := s.store.CreateVoiceEntry(ctx, entry); err != nil {
		slog.Error("save voice entry failed", "uid", userID, "err", err)
		return nil
	}
	return entry
}

func (s *MessageService) appendHistory(ctx context.Context, msg *model.ChatMessage) {
	if err := s.history.Save(ctx, msg); err != nil {
		slog.Error("save chat message failed", "uid", msg.UserID, "type", msg.Type, "err", err)
	}
}

var _ model.OperationVisitor = (*operationWriter)(nil)

// operationWriter 把每种操作落到对应的表
type operationWriter struct {
	store  Persistence
	userID string
	now    time.Time
}

func (w *operationWriter) VisitExpense(ctx context.Context, op model.ExpenseOp) error {
	return w.store.CreateExpense(ctx, &model.Expense{
		UserID:      w.userID,
		Amount:      op.Amount,
		Category:    op.Category,
		Description: op.Description,
		Date:        model.DateOr(op.Date, w.now),
	})
}

func (w *operationWriter) VisitIncome(ctx context.Context, op model.IncomeOp) error {
	return w.store.CreateIncome(ctx, &model.IncomeEntry{
		UserID:      w.userID,
		Amount:      op.Amount,
		Source:      op.Source,
		Description: op.Description,
		Date:        model.DateOr(op.Date, w.now),
	})
}

// VisitAttendance 每次都新建 provider，不按名字查重
func (w *operationWriter) VisitAttendance(ctx context.Context, op model.AttendanceOp) error {
	frequency := model.FrequencyMonthly
	provider := &model.ServiceProvider{
		UserID:           w.userID,
		Name:             op.MaidName,
		ServiceType:      model.ServiceTypeMaid,
		Salary:           op.Salary,
		PaymentFrequency: &frequency,
	}
	if err := w.store.CreateServiceProvider(ctx, provider); err != nil {
		return fmt.Errorf("create service provider: %w", err)
	}

	return w.store.CreateAttendanceLog(ctx, &model.AttendanceLog{
		UserID:     w.userID,
		ProviderID: provider.ID,
		Date:       model.DateOr(op.Date, w.now),
		Present:    op.Present,
		Notes:      op.Notes,
	})
}

// VisitReminder payload 里的 status 一律忽略
func (w *operationWriter) VisitReminder(ctx context.Context, op model.ReminderOp) error {
	return w.store.CreateReminder(ctx, &model.Reminder{
		UserID:      w.userID,
		Title:       op.Title,
		Amount:      op.Amount,
		Description: op.Description,
		DueDate:     model.DateOr(op.DueDate, w.now),
		Recurring:   op.Recurring,
		Frequency:   op.Frequency,
		Status:      model.ReminderPending,
	})
}
