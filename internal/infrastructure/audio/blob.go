package audio

import (
	"context"
	"io"
	"strings"
)

// DefaultMimeType 浏览器 MediaRecorder 的默认输出
const DefaultMimeType = "audio/webm"

// Blob 一次录音的完整数据
type Blob struct {
	Data     []byte
	MimeType string
}

func (b Blob) Empty() bool { return len(b.Data) == 0 }

// Extension maps the mime type onto a file extension the transcription
// endpoint can sniff. Codec parameters ("audio/webm;codecs=opus") are ignored.
func (b Blob) Extension() string {
	mime, _, _ := strings.Cut(b.MimeType, ";")
	switch strings.TrimSpace(strings.ToLower(mime)) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/ogg":
		return ".ogg"
	}
	return ".webm"
}

// Source 录音数据来源 (麦克风、上传分片等)
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	MimeType() string
}
