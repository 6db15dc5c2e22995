package audio

import (
	"context"
	"errors"
	"io"
	"sync"
)

var ErrNotOpen = errors.New("chunk source not open")

// ChunkSource 把 HTTP 上传的音频分片接成一个流
type ChunkSource struct {
	mime string

	mu sync.Mutex
	pw *io.PipeWriter
}

func NewChunkSource(mimeType string) *ChunkSource {
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return &ChunkSource{mime: mimeType}
}

func (s *ChunkSource) MimeType() string { return s.mime }

func (s *ChunkSource) Open(ctx context.Context) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	s.mu.Lock()
	s.pw = pw
	s.mu.Unlock()

	return &chunkStream{PipeReader: pr, source: s, pw: pw}, nil
}

// Write 追加一个分片，阻塞直到 Recorder 读走
func (s *ChunkSource) Write(chunk []byte) (int, error) {
	s.mu.Lock()
	pw := s.pw
	s.mu.Unlock()
	if pw == nil {
		return 0, ErrNotOpen
	}
	return pw.Write(chunk)
}

type chunkStream struct {
	*io.PipeReader
	source *ChunkSource
	pw     *io.PipeWriter
}

// Close ends the stream from the writer side so buffered data is kept.
func (c *chunkStream) Close() error {
	c.source.mu.Lock()
	if c.source.pw == c.pw {
		c.source.pw = nil
	}
	c.source.mu.Unlock()
	return c.pw.Close()
}
