package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

type State int

const (
	Idle State = iota
	Recording
	Stopping
)

// ErrStopping 上一段录音还在收尾，此时不能开始新的录音
var ErrStopping = errors.New("recorder is still stopping")

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Stopping:
		return "stopping"
	}
	return "idle"
}

// Recorder Idle -> Recording -> Stopping -> Idle 状态机
// 录音中再次 Start 是空操作，收尾中 Start 返回 ErrStopping；Idle 或收尾中 Stop 返回空 Blob
type Recorder struct {
	source Source

	mu     sync.Mutex
	state  State
	stream io.ReadCloser
	buf    bytes.Buffer
	done   chan struct{}
	err    error
}

func NewRecorder(source Source) *Recorder {
	return &Recorder{source: source}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case Recording:
		return nil
	case Stopping:
		return ErrStopping
	}

	stream, err := r.source.Open(ctx)
	if err != nil {
		return err
	}

	r.state = Recording
	r.stream = stream
	r.buf.Reset()
	r.err = nil
	r.done = make(chan struct{})

	go r.drain(stream, r.done)
	return nil
}

func (r *Recorder) drain(stream io.Reader, done chan struct{}) {
	defer close(done)
	var local bytes.Buffer
	_, err := io.Copy(&local, stream)

	r.mu.Lock()
	r.buf.Write(local.Bytes())
	if err != nil && !errors.Is(err, io.ErrClosedPipe) {
		r.err = err
	}
	r.mu.Unlock()
}

// Stop 关闭输入流并等待缓冲完成，返回录到的全部数据
func (r *Recorder) Stop() (Blob, error) {
	r.mu.Lock()
	if r.state != Recording {
		r.mu.Unlock()
		return Blob{MimeType: r.source.MimeType()}, nil
	}
	r.state = Stopping
	stream, done := r.stream, r.done
	r.mu.Unlock()

	if err := stream.Close(); err != nil {
		slog.Warn("close audio stream", "err", err)
	}
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Idle
	r.stream = nil

	data := make([]byte, r.buf.Len())
	copy(data, r.buf.Bytes())
	r.buf.Reset()

	return Blob{Data: data, MimeType: r.source.MimeType()}, r.err
}
