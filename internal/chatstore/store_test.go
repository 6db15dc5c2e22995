package chatstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leon37/KindKeeper/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.ChatMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func TestList_SortedForAnyInsertOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	// 乱序写入
	offsets := []int{5, 1, 4, 2, 3, 0}
	for i, off := range offsets {
		msg := &model.ChatMessage{
			ID:        fmt.Sprintf("m-%d", i),
			UserID:    "u1",
			Type:      model.MessageUser,
			Content:   fmt.Sprintf("msg %d", off),
			Timestamp: base.Add(time.Duration(off) * time.Minute),
		}
		if err := s.Save(ctx, msg); err != nil {
			t.Fatalf("Save error = %v", err)
		}
	}
	_ = s.Save(ctx, &model.ChatMessage{ID: "other", UserID: "u2", Type: model.MessageUser, Timestamp: base})

	list, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(list) != len(offsets) {
		t.Fatalf("List len = %d, want %d", len(list), len(offsets))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Timestamp.Before(list[i-1].Timestamp) {
			t.Errorf("message %d (%v) before message %d (%v)", i, list[i].Timestamp, i-1, list[i-1].Timestamp)
		}
	}
}

func TestList_MixedOffsetsSortedByInstant(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ist := time.FixedZone("IST", 5*3600+1800)

	// 10:00 IST = 04:30Z，00:10 EST = 05:10Z；按本地文本比较顺序正好反过来
	_ = s.Save(ctx, &model.ChatMessage{ID: "a", UserID: "u1", Type: model.MessageUser, Content: "a",
		Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, ist)})
	_ = s.Save(ctx, &model.ChatMessage{ID: "b", UserID: "u1", Type: model.MessageAssistant, Content: "b",
		Timestamp: time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)})
	_ = s.Save(ctx, &model.ChatMessage{ID: "c", UserID: "u1", Type: model.MessageUser, Content: "c",
		Timestamp: time.Date(2024, 1, 1, 0, 10, 0, 0, time.FixedZone("EST", -5*3600))})

	list, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	var got []string
	for _, m := range list {
		got = append(got, m.Content)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("order = %v, want [a b c]", got)
	}
	for i := 1; i < len(list); i++ {
		if list[i].Timestamp.Before(list[i-1].Timestamp) {
			t.Errorf("%s (%v) listed after %s (%v)", list[i-1].Content, list[i-1].Timestamp, list[i].Content, list[i].Timestamp)
		}
	}
}

func TestList_SameTimestampKeepsIDOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	now := time.Now()
	_ = s.Save(ctx, &model.ChatMessage{ID: "b", UserID: "u1", Type: model.MessageAssistant, Content: "reply", Timestamp: now})
	_ = s.Save(ctx, &model.ChatMessage{ID: "a", UserID: "u1", Type: model.MessageUser, Content: "question", Timestamp: now})

	list, _ := s.List(ctx, "u1")
	if len(list) != 2 || list[0].ID != "a" {
		t.Errorf("List = %+v, want id order a,b", list)
	}
}

func TestSave_RejectsDuplicateAndIncomplete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	msg := &model.ChatMessage{ID: "x", UserID: "u1", Type: model.MessageUser, Timestamp: time.Now()}
	if err := s.Save(ctx, msg); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	if err := s.Save(ctx, msg); err == nil {
		t.Error("duplicate Save error = nil")
	}
	if err := s.Save(ctx, &model.ChatMessage{ID: "y"}); err == nil {
		t.Error("Save without user error = nil")
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_ = s.Save(ctx, &model.ChatMessage{ID: "1", UserID: "u1", Timestamp: time.Now()})
	_ = s.Save(ctx, &model.ChatMessage{ID: "2", UserID: "u2", Timestamp: time.Now()})

	if err := s.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear error = %v", err)
	}
	if list, _ := s.List(ctx, "u1"); len(list) != 0 {
		t.Errorf("u1 has %d messages after Clear", len(list))
	}
	if list, _ := s.List(ctx, "u2"); len(list) != 1 {
		t.Errorf("u2 has %d messages, want 1", len(list))
	}
}
