package repository

import (
	"context"
	"time"
)

// MemoryResult 一条语义检索命中的记录
type MemoryResult struct {
	EntryID   string    `json:"entry_id"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Score     float32   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// MemoryRepo 定义了记账记录向量记忆相关的接口
type MemoryRepo interface {
	SaveMemory(ctx context.Context, userID, entryID, content, category string, createdAt time.Time, vector []float32) error
	SearchSimilar(ctx context.Context, userID string, limit int, queryVector []float32) ([]MemoryResult, error)
}
