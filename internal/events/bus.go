package events

import (
	"log/slog"
	"sync"

	"github.com/leon37/KindKeeper/internal/model"
)

// EntryAdded 唯一的事件名：新的 VoiceEntry 已落库
const EntryAdded = "ENTRY_ADDED"

type Handler func(entry model.VoiceEntry)

// Bus 进程内发布/订阅，通过依赖注入传给需要的组件
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe 返回取消订阅函数，可重复调用
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish 同步分发；某个 handler panic 不影响其它订阅者
func (b *Bus) Publish(entry model.VoiceEntry) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		b.dispatch(h, entry)
	}
}

func (b *Bus) dispatch(h Handler, entry model.VoiceEntry) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panic", "event", EntryAdded, "entry_id", entry.ID, "panic", r)
		}
	}()
	h(entry)
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
