// Package chatstore keeps the per-user chat history in a device-local
// sqlite file, separate from the remote database.
package chatstore

import (
	"context"
	"fmt"

	"github.com/leon37/KindKeeper/internal/model"
	"gorm.io/gorm"
)

// Store 追加写、按用户读
type Store interface {
	Save(ctx context.Context, msg *model.ChatMessage) error
	List(ctx context.Context, userID string) ([]model.ChatMessage, error)
	Clear(ctx context.Context, userID string) error
}

type gormStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Save 主键冲突直接报错，不覆盖已有消息
// sqlite 把时间存成带偏移的文本，统一转 UTC 后按文本排序才等于按时刻排序
func (s *gormStore) Save(ctx context.Context, msg *model.ChatMessage) error {
	if msg.ID == "" || msg.UserID == "" {
		return fmt.Errorf("chat message requires id and user id")
	}
	msg.Timestamp = msg.Timestamp.UTC()
	return s.db.WithContext(ctx).Create(msg).Error
}

// List 按时间升序；同一时间戳按 id (UUIDv7，单调) 排序
func (s *gormStore) List(ctx context.Context, userID string) ([]model.ChatMessage, error) {
	var list []model.ChatMessage
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp asc").
		Order("id asc").
		Find(&list).Error
	return list, err
}

func (s *gormStore) Clear(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.ChatMessage{}).Error
}
