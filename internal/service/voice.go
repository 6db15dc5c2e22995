package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/leon37/KindKeeper/internal/infrastructure/audio"
	"github.com/leon37/KindKeeper/internal/infrastructure/llm"
)

var ErrNotRecording = errors.New("no recording in progress")

type VoiceReply struct {
	Transcript string `json:"transcript"`
	*ChatReply
}

type voiceSession struct {
	source   *audio.ChunkSource
	recorder *audio.Recorder
}

// VoiceService 每个用户一个录音会话：start -> chunk... -> stop -> 转写 -> SendText
type VoiceService struct {
	transcriber llm.Transcriber
	chat        *ChatService

	mu       sync.Mutex
	sessions map[string]*voiceSession
}

func NewVoiceService(transcriber llm.Transcriber, chat *ChatService) *VoiceService {
	return &VoiceService{
		transcriber: transcriber,
		chat:        chat,
		sessions:    make(map[string]*voiceSession),
	}
}

// Start 已在录音时是空操作
func (s *VoiceService) Start(ctx context.Context, userID, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		src := audio.NewChunkSource(mimeType)
		sess = &voiceSession{source: src, recorder: audio.NewRecorder(src)}
	}
	// 录音跨越多个请求，不能跟随 start 请求的 ctx 结束
	if err := sess.recorder.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	s.sessions[userID] = sess
	return nil
}

func (s *VoiceService) Chunk(userID string, data []byte) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		return ErrNotRecording
	}
	_, err := sess.source.Write(data)
	if errors.Is(err, audio.ErrNotOpen) {
		return ErrNotRecording
	}
	return err
}

func (s *VoiceService) Recording(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return ok && sess.recorder.State() == audio.Recording
}

// Stop 未在录音时返回空结果；录音为空或转写为空也不会调用 Intent Service
func (s *VoiceService) Stop(ctx context.Context, userID string) (*VoiceReply, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()
	if !ok {
		return &VoiceReply{}, nil
	}

	blob, err := sess.recorder.Stop()
	if err != nil {
		slog.Warn("recording ended with error", "uid", userID, "err", err)
	}
	if blob.Empty() {
		return &VoiceReply{}, nil
	}

	transcript, err := s.transcriber.Transcribe(ctx, blob)
	if err != nil {
		slog.Error("transcription failed", "uid", userID, "size", len(blob.Data), "err", err)
		s.chat.saveFailure(ctx, userID, VoiceFailureMessage)
		return &VoiceReply{ChatReply: &ChatReply{Reply: VoiceFailureMessage, Failed: true}}, err
	}
	slog.Info("transcription", "uid", userID, "text", transcript)
	if transcript == "" {
		return &VoiceReply{}, nil
	}

	reply, err := s.chat.send(ctx, userID, transcript, nil, VoiceFailureMessage)
	return &VoiceReply{Transcript: transcript, ChatReply: reply}, err
}
