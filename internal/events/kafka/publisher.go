package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/leon37/KindKeeper/internal/model"
	"github.com/segmentio/kafka-go"
)

// MessageWriter 抽出 kafka.Writer 的写接口，方便测试
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EntryEvent 发往 Kafka 的消息体
type EntryEvent struct {
	Event      string           `json:"event"`
	Entry      model.VoiceEntry `json:"entry"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Publisher 订阅 Bus，把新 VoiceEntry 转发到 Kafka
// Forward 的事件进入队列，由唯一的写协程按到达顺序写出；Close 会先写完队列
type Publisher struct {
	writer  MessageWriter
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan queued
	wg     sync.WaitGroup
}

type queued struct {
	event string
	entry model.VoiceEntry
}

const queueSize = 256

func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Async:    false,
	})
}

func NewPublisherWithWriter(w MessageWriter) *Publisher {
	p := &Publisher{writer: w, timeout: 5 * time.Second, queue: make(chan queued, queueSize)}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for q := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.Publish(ctx, q.event, q.entry); err != nil {
			slog.Error("kafka publish failed", "entry_id", q.entry.ID, "err", err)
		}
		cancel()
	}
}

func (p *Publisher) Publish(ctx context.Context, event string, entry model.VoiceEntry) error {
	data, err := json.Marshal(EntryEvent{Event: event, Entry: entry, OccurredAt: time.Now()})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		// 同一用户的事件落在同一分区
		Key:   []byte(entry.UserID),
		Value: data,
	})
}

// Forward 作为 Bus 的 handler 使用；只入队，队列满时阻塞发布方
func (p *Publisher) Forward(event string) func(model.VoiceEntry) {
	return func(entry model.VoiceEntry) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			slog.Warn("kafka publisher closed, entry not forwarded", "entry_id", entry.ID)
			return
		}
		p.queue <- queued{event: event, entry: entry}
	}
}

// Close 停止接收新事件，等待队列写完后关闭 writer；可重复调用
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.writer.Close()
}
