package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/leon37/KindKeeper/internal/infrastructure/embedding"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/leon37/KindKeeper/internal/repository"
)

var ErrMemoryDisabled = errors.New("entry search is not configured")

// MemoryService 把新的 VoiceEntry 向量化存进 Qdrant，并提供语义检索
type MemoryService struct {
	embedder embedding.Provider
	repo     repository.MemoryRepo
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewMemoryService(embedder embedding.Provider, repo repository.MemoryRepo) *MemoryService {
	return &MemoryService{embedder: embedder, repo: repo, timeout: 10 * time.Second}
}

func (s *MemoryService) enabled() bool {
	return s != nil && s.embedder != nil && s.repo != nil
}

// Index 作为总线订阅者使用，向量化放到后台，不阻塞发布方
func (s *MemoryService) Index(entry model.VoiceEntry) {
	if !s.enabled() {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.index(ctx, entry); err != nil {
			slog.Error("failed to save memory", "entry_id", entry.ID, "err", err)
		}
	}()
}

func (s *MemoryService) index(ctx context.Context, entry model.VoiceEntry) error {
	content := strings.TrimSpace(entry.Transcript)
	if content == "" {
		return nil
	}
	vector, err := s.embedder.GetVector(ctx, content)
	if err != nil {
		return err
	}
	category := ""
	if entry.Category != nil {
		category = *entry.Category
	}
	return s.repo.SaveMemory(ctx, entry.UserID, entry.ID, content, category, entry.CreatedAt, vector)
}

// Wait 等待后台写入完成 (退出和测试时用)
func (s *MemoryService) Wait() {
	if s != nil {
		s.wg.Wait()
	}
}

func (s *MemoryService) Search(ctx context.Context, userID, query string, limit int) ([]repository.MemoryResult, error) {
	if !s.enabled() {
		return nil, ErrMemoryDisabled
	}
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	vector, err := s.embedder.GetVector(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.repo.SearchSimilar(ctx, userID, limit, vector)
}
