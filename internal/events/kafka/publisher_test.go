package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/leon37/KindKeeper/internal/model"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs   []kafka.Message
	done   chan struct{}
	delay  time.Duration
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.msgs = append(f.msgs, msgs...)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(w)

	if err := p.Publish(context.Background(), "ENTRY_ADDED", model.VoiceEntry{ID: "e1", UserID: "u1", Transcript: "paid 500"}); err != nil {
		t.Fatalf("Publish error = %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "u1" {
		t.Errorf("Key = %q, want u1", w.msgs[0].Key)
	}
	var ev EntryEvent
	if err := json.Unmarshal(w.msgs[0].Value, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Event != "ENTRY_ADDED" || ev.Entry.ID != "e1" {
		t.Errorf("event = %+v", ev)
	}
}

func TestPublisher_Forward(t *testing.T) {
	w := &fakeWriter{done: make(chan struct{}, 1)}
	p := NewPublisherWithWriter(w)

	p.Forward("ENTRY_ADDED")(model.VoiceEntry{ID: "e2", UserID: "u1"})

	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Forward did not write within 2s")
	}
}

func TestPublisher_ForwardKeepsOrderAndDrainsOnClose(t *testing.T) {
	// 写得慢，Close 时队列里还有事件
	w := &fakeWriter{delay: 20 * time.Millisecond}
	p := NewPublisherWithWriter(w)
	forward := p.Forward("ENTRY_ADDED")

	ids := []string{"e1", "e2", "e3", "e4"}
	for _, id := range ids {
		forward(model.VoiceEntry{ID: id, UserID: "u1"})
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		t.Error("writer not closed")
	}
	if len(w.msgs) != len(ids) {
		t.Fatalf("wrote %d messages, want %d", len(w.msgs), len(ids))
	}
	for i, m := range w.msgs {
		var ev EntryEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.Entry.ID != ids[i] {
			t.Errorf("message %d = %s, want %s", i, ev.Entry.ID, ids[i])
		}
	}
}

func TestPublisher_ForwardAfterClose(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(w)
	_ = p.Close()

	p.Forward("ENTRY_ADDED")(model.VoiceEntry{ID: "late", UserID: "u1"})
	if err := p.Close(); err != nil {
		t.Fatalf("second Close error = %v", err)
	}
	if len(w.msgs) != 0 {
		t.Errorf("wrote %d messages after Close", len(w.msgs))
	}
}
