package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leon37/KindKeeper/internal/infrastructure/audio"
	"github.com/leon37/KindKeeper/internal/model"
)

type fakeOCR struct {
	text string
	err  error
}

func (f fakeOCR) Read(context.Context, []byte) (string, error) { return f.text, f.err }

func TestSendText_FailureSavesGenericMessageOnce(t *testing.T) {
	h := newHarness(nil, errors.New("timeout"))
	chat := NewChatService(h.svc, h.history, nil)

	reply, err := chat.SendText(context.Background(), "u1", "paid 500 for vegetables")
	if err == nil {
		t.Fatal("expected error")
	}
	if !reply.Failed || reply.Reply != FailureMessage {
		t.Errorf("reply = %+v", reply)
	}
	if h.intent.calls != 1 {
		t.Errorf("intent calls = %d, must not retry", h.intent.calls)
	}
	if len(h.history.msgs) != 1 || h.history.msgs[0].Content != FailureMessage || h.history.msgs[0].Type != model.MessageAssistant {
		t.Errorf("history = %+v", h.history.msgs)
	}
	if len(h.store.calls) != 0 {
		t.Errorf("store calls = %v", h.store.calls)
	}
}

func TestSendText_Success(t *testing.T) {
	h := newHarness(&model.Intent{Reply: "Done.", Operations: []model.RawOperation{}}, nil)
	chat := NewChatService(h.svc, h.history, nil)

	reply, err := chat.SendText(context.Background(), "u1", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if reply.Failed || reply.Reply != "Done." || reply.Processed == nil {
		t.Errorf("reply = %+v", reply)
	}
}

func TestSendImage_AttachesDataURLAndOCRText(t *testing.T) {
	h := newHarness(&model.Intent{Reply: "Recorded your electricity bill.", Operations: []model.RawOperation{
		op("expenses", `{"amount":1240,"category":"BILLS","description":"Electricity"}`),
	}}, nil)
	chat := NewChatService(h.svc, h.history, fakeOCR{text: "BSES Rajdhani\nAmount Due 1240.00"})

	reply, err := chat.SendImage(context.Background(), "u1", []byte{0xff, 0xd8, 0xff}, "image/jpeg")
	if err != nil {
		t.Fatal(err)
	}
	if reply.Reply != "Recorded your electricity bill." {
		t.Errorf("reply = %+v", reply)
	}

	sent := h.intent.texts[0]
	if !strings.HasPrefix(sent, BillImagePrompt) || !strings.Contains(sent, "Amount Due 1240.00") {
		t.Errorf("intent text = %q", sent)
	}
	user := h.history.msgs[0]
	if user.Attachment == nil || !strings.HasPrefix(*user.Attachment, "data:image/jpeg;base64,") {
		t.Errorf("attachment = %v", user.Attachment)
	}
}

func TestSendImage_OCRFailureFallsBackToPrompt(t *testing.T) {
	h := newHarness(&model.Intent{Reply: "ok", Operations: []model.RawOperation{}}, nil)
	chat := NewChatService(h.svc, h.history, fakeOCR{err: errors.New("tesseract missing")})

	if _, err := chat.SendImage(context.Background(), "u1", []byte{1}, ""); err != nil {
		t.Fatal(err)
	}
	if h.intent.texts[0] != BillImagePrompt {
		t.Errorf("intent text = %q", h.intent.texts[0])
	}
}

func TestGreet(t *testing.T) {
	h := newHarness(nil, nil)
	chat := NewChatService(h.svc, h.history, nil)
	ctx := context.Background()

	msg, created, err := chat.Greet(ctx, "u1")
	if err != nil || !created || msg.Content != GreetingMessage {
		t.Fatalf("Greet = %+v, %v, %v", msg, created, err)
	}
	if _, created, _ = chat.Greet(ctx, "u1"); created {
		t.Error("greeting written twice")
	}

	if err := chat.ClearHistory(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if list, _ := chat.History(ctx, "u1"); len(list) != 0 {
		t.Errorf("history after clear = %d", len(list))
	}
}

type fakeTranscriber struct {
	blobs []audio.Blob
	text  string
	err   error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, b audio.Blob) (string, error) {
	f.blobs = append(f.blobs, b)
	return f.text, f.err
}

func TestVoiceService_RoundTrip(t *testing.T) {
	h := newHarness(&model.Intent{Reply: "Noted.", Operations: []model.RawOperation{}}, nil)
	tr := &fakeTranscriber{text: "paid 200 for medicine"}
	voice := NewVoiceService(tr, NewChatService(h.svc, h.history, nil))
	ctx := context.Background()

	if err := voice.Start(ctx, "u1", "audio/webm"); err != nil {
		t.Fatal(err)
	}
	if err := voice.Chunk("u1", []byte("first")); err != nil {
		t.Fatal(err)
	}
	// 第二次 Start 是空操作，不会丢掉已录的数据
	if err := voice.Start(ctx, "u1", "audio/webm"); err != nil {
		t.Fatal(err)
	}
	if err := voice.Chunk("u1", []byte("second")); err != nil {
		t.Fatal(err)
	}
	if !voice.Recording("u1") {
		t.Error("expected recording")
	}

	reply, err := voice.Stop(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if string(tr.blobs[0].Data) != "firstsecond" {
		t.Errorf("blob = %q", tr.blobs[0].Data)
	}
	if reply.Transcript != "paid 200 for medicine" || reply.Reply != "Noted." {
		t.Errorf("reply = %+v", reply)
	}
	if voice.Recording("u1") {
		t.Error("still recording after stop")
	}
}

func TestVoiceService_StopWithoutStart(t *testing.T) {
	h := newHarness(nil, nil)
	tr := &fakeTranscriber{}
	voice := NewVoiceService(tr, NewChatService(h.svc, h.history, nil))

	reply, err := voice.Stop(context.Background(), "u1")
	if err != nil || reply.Transcript != "" || reply.ChatReply != nil {
		t.Errorf("Stop = %+v, %v", reply, err)
	}
	if len(tr.blobs) != 0 {
		t.Error("transcriber called without a recording")
	}
	if err := voice.Chunk("u1", []byte("x")); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Chunk err = %v", err)
	}
}

func TestVoiceService_TranscriptionFailure(t *testing.T) {
	h := newHarness(nil, nil)
	tr := &fakeTranscriber{err: errors.New("whisper 500")}
	voice := NewVoiceService(tr, NewChatService(h.svc, h.history, nil))
	ctx := context.Background()

	voice.Start(ctx, "u1", "")
	voice.Chunk("u1", []byte("audio"))
	reply, err := voice.Stop(ctx, "u1")
	if err == nil {
		t.Fatal("expected error")
	}
	if reply.Reply != VoiceFailureMessage || !reply.Failed {
		t.Errorf("reply = %+v", reply)
	}
	if h.intent.calls != 0 {
		t.Error("intent called after transcription failure")
	}
	if len(h.history.msgs) != 1 || h.history.msgs[0].Content != VoiceFailureMessage {
		t.Errorf("history = %+v", h.history.msgs)
	}
}
