package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leon37/KindKeeper/internal/chatstore"
	"github.com/leon37/KindKeeper/internal/infrastructure/ocr"
	"github.com/leon37/KindKeeper/internal/model"
)

const (
	GreetingMessage     = "Hello, tell me, I am listening."
	FailureMessage      = "Sorry, there was an error processing your message. Please try again."
	VoiceFailureMessage = "Sorry, there was an error with the voice input. Please try again."
	BillImagePrompt     = "I have uploaded a bill image. Please help me record this expense."
)

// ChatReply 返回给聊天界面的一轮回复；Failed 时 Reply 是通用错误提示
type ChatReply struct {
	Reply     string         `json:"reply"`
	Failed    bool           `json:"failed"`
	Processed *ProcessResult `json:"result,omitempty"`
}

// ChatService 聊天界面的入口：文本、账单照片、开场白、历史
type ChatService struct {
	messages *MessageService
	history  chatstore.Store
	ocr      ocr.Reader // 可为 nil，此时照片只作为附件
}

func NewChatService(messages *MessageService, history chatstore.Store, reader ocr.Reader) *ChatService {
	return &ChatService{messages: messages, history: history, ocr: reader}
}

// SendText 致命错误时写入通用提示并返回原始错误，不会重新调用 Intent Service
func (s *ChatService) SendText(ctx context.Context, userID, text string) (*ChatReply, error) {
	return s.send(ctx, userID, text, nil, FailureMessage)
}

func (s *ChatService) send(ctx context.Context, userID, text string, attachment *string, failure string) (*ChatReply, error) {
	result, err := s.messages.process(ctx, userID, text, attachment)
	if err != nil {
		slog.Error("error processing message", "uid", userID, "err", err)
		s.saveFailure(ctx, userID, failure)
		return &ChatReply{Reply: failure, Failed: true}, err
	}
	return &ChatReply{Reply: result.AIResponse, Processed: result}, nil
}

func (s *ChatService) saveFailure(ctx context.Context, userID, content string) {
	s.messages.appendHistory(ctx, &model.ChatMessage{
		ID:        newMessageID(),
		UserID:    userID,
		Type:      model.MessageAssistant,
		Content:   content,
		Timestamp: s.messages.now(),
	})
}

// SendImage 账单照片：OCR 出的文字附在固定提示后面，图片以 data URL 存到用户消息上
func (s *ChatService) SendImage(ctx context.Context, userID string, image []byte, mimeType string) (*ChatReply, error) {
	if len(image) == 0 {
		return nil, ocr.ErrEmptyImage
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	text := BillImagePrompt
	if s.ocr != nil {
		recognized, err := s.ocr.Read(ctx, image)
		if err != nil {
			slog.Warn("bill ocr failed, sending prompt only", "uid", userID, "err", err)
		} else if recognized = strings.TrimSpace(recognized); recognized != "" {
			text = fmt.Sprintf("%s\nThe bill reads:\n%s", BillImagePrompt, recognized)
		}
	}

	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	return s.send(ctx, userID, text, &dataURL, FailureMessage)
}

// Greet 历史为空时写入开场白；返回是否新写入
func (s *ChatService) Greet(ctx context.Context, userID string) (*model.ChatMessage, bool, error) {
	list, err := s.history.List(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if len(list) > 0 {
		return nil, false, nil
	}

	greeting := &model.ChatMessage{
		ID:        newMessageID(),
		UserID:    userID,
		Type:      model.MessageAssistant,
		Content:   GreetingMessage,
		Timestamp: s.messages.now(),
	}
	if err := s.history.Save(ctx, greeting); err != nil {
		return nil, false, err
	}
	return greeting, true, nil
}

func (s *ChatService) History(ctx context.Context, userID string) ([]model.ChatMessage, error) {
	return s.history.List(ctx, userID)
}

func (s *ChatService) ClearHistory(ctx context.Context, userID string) error {
	return s.history.Clear(ctx, userID)
}
