package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/gin-gonic/gin"
	"github.com/leon37/KindKeeper/internal/api/controller"
	"github.com/leon37/KindKeeper/internal/api/response"
	"github.com/leon37/KindKeeper/internal/chatstore"
	"github.com/leon37/KindKeeper/internal/config"
	"github.com/leon37/KindKeeper/internal/events"
	"github.com/leon37/KindKeeper/internal/infrastructure/audio"
	"github.com/leon37/KindKeeper/internal/infrastructure/database"
	"github.com/leon37/KindKeeper/internal/infrastructure/speech"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/leon37/KindKeeper/internal/repository"
	"github.com/leon37/KindKeeper/internal/service"
)

const testSecret = "test-secret"

type scriptedIntent struct {
	reply string
	ops   []model.RawOperation
}

func (s *scriptedIntent) Interpret(_ context.Context, _ string) (*model.Intent, error) {
	return &model.Intent{Reply: s.reply, Operations: s.ops}, nil
}

type fixedTranscriber struct{ text string }

func (f fixedTranscriber) Transcribe(_ context.Context, blob audio.Blob) (string, error) {
	if blob.Empty() {
		return "", nil
	}
	return f.text, nil
}

type mp3Engine struct{}

func (mp3Engine) Synthesize(_ context.Context, text string, _ speech.Voice, _ float64) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("ID3" + text)), nil
}

type testApp struct {
	router *gin.Engine
	intent *scriptedIntent
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}
	chatDB, err := database.OpenChat(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatal(err)
	}

	intent := &scriptedIntent{
		reply: "Noted 1500 for groceries.",
		ops: []model.RawOperation{{
			Table:     model.TableExpenses,
			Operation: "insert",
			Data:      json.RawMessage(`{"amount":1500,"category":"GROCERIES","description":"vegetables"}`),
		}},
	}

	bus := events.NewBus()
	gateway := repository.NewGateway(db)
	history := chatstore.New(chatDB)
	messages := service.NewMessageService(intent, gateway, history, bus)
	chat := service.NewChatService(messages, history, nil)
	voice := service.NewVoiceService(fixedTranscriber{text: "I spent 1500 on groceries"}, chat)
	users := repository.NewUserRepository(db)
	ledger := service.NewLedgerService(gateway)

	r := gin.New()
	RegisterRoutes(r, testSecret, nil, Controllers{
		Auth:    controller.NewAuthController(service.NewAuthService(users, gateway.Profiles, config.JWTConfig{Secret: testSecret, ExpireHours: 1})),
		Chat:    controller.NewChatController(chat),
		Voice:   controller.NewVoiceController(voice, speech.NewRegistry(mp3Engine{}, speech.Settings{})),
		Entry:   controller.NewEntryController(bus, ledger, service.NewMemoryService(nil, nil)),
		Ledger:  controller.NewLedgerController(ledger, service.NewExportService(gateway)),
		Profile: controller.NewProfileController(service.NewProfileService(users, gateway.Profiles)),
	})
	return &testApp{router: r, intent: intent}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		rd = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var resp response.Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, resp
}

// login 注册并登录一个随机用户，返回 token
func (a *testApp) login(t *testing.T) string {
	t.Helper()
	email := faker.Email()
	password := faker.Password()

	w, _ := a.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": faker.Name(), "email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	w, resp := a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	data := resp.Data.(map[string]any)
	return data["token"].(string)
}

func TestHealthAndAuthGuard(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}

	w, resp := app.do(t, http.MethodGet, "/api/v1/expenses", "", nil)
	if w.Code != http.StatusUnauthorized || resp.Code != response.CodeAuth {
		t.Fatalf("no token: %d %+v", w.Code, resp)
	}
	w, _ = app.do(t, http.MethodGet, "/api/v1/expenses", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", w.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	body := gin.H{"name": "Kamala", "email": "kamala@example.com", "password": "secret123"}

	if w, _ := app.do(t, http.MethodPost, "/api/v1/auth/register", "", body); w.Code != http.StatusOK {
		t.Fatalf("first register: %d", w.Code)
	}
	w, resp := app.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
	if w.Code != http.StatusConflict || resp.Code != response.CodeConflict {
		t.Fatalf("duplicate register: %d %+v", w.Code, resp)
	}

	w, _ = app.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "kamala@example.com", "password": "wrong-pass"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", w.Code)
	}
}

func TestChatMessageWritesExpense(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	// 首次打开对话写入开场白
	w, resp := app.do(t, http.MethodGet, "/api/v1/chat/messages", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: %d", w.Code)
	}
	if list := resp.Data.([]any); len(list) != 1 {
		t.Fatalf("greeting missing: %v", list)
	}

	w, resp = app.do(t, http.MethodPost, "/api/v1/chat/messages", token, gin.H{"text": "I spent 1500 on groceries"})
	if w.Code != http.StatusOK {
		t.Fatalf("send: %d %s", w.Code, w.Body.String())
	}
	if reply := resp.Data.(map[string]any)["reply"]; reply != "Noted 1500 for groceries." {
		t.Fatalf("reply = %v", reply)
	}

	w, resp = app.do(t, http.MethodGet, "/api/v1/expenses?category=GROCERIES", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expenses: %d", w.Code)
	}
	if total := resp.Data.(map[string]any)["total"].(float64); total != 1 {
		t.Fatalf("total = %v", total)
	}

	w, resp = app.do(t, http.MethodGet, "/api/v1/voice-entries", token, nil)
	if w.Code != http.StatusOK || len(resp.Data.([]any)) != 1 {
		t.Fatalf("voice entries: %d %v", w.Code, resp.Data)
	}

	// 另一个用户看不到
	other := app.login(t)
	_, resp = app.do(t, http.MethodGet, "/api/v1/expenses", other, nil)
	if total := resp.Data.(map[string]any)["total"].(float64); total != 0 {
		t.Fatalf("other user total = %v", total)
	}

	w, _ = app.do(t, http.MethodDelete, "/api/v1/chat/messages", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear: %d", w.Code)
	}
}

func TestChatMessageValidation(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	w, resp := app.do(t, http.MethodPost, "/api/v1/chat/messages", token, gin.H{"text": ""})
	if w.Code != http.StatusBadRequest || resp.Code != response.CodeBadRequest {
		t.Fatalf("empty text: %d %+v", w.Code, resp)
	}
}

func TestManualLedgerEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	w, _ := app.do(t, http.MethodPost, "/api/v1/expenses", token, gin.H{"amount": "250.50", "category": "medical", "date": "2024-03-02"})
	if w.Code != http.StatusOK {
		t.Fatalf("create expense: %d %s", w.Code, w.Body.String())
	}
	w, _ = app.do(t, http.MethodPost, "/api/v1/expenses", token, gin.H{"amount": "-5", "category": "medical"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative amount: %d", w.Code)
	}
	w, _ = app.do(t, http.MethodPost, "/api/v1/expenses", token, gin.H{"amount": "5"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing category: %d", w.Code)
	}

	w, _ = app.do(t, http.MethodPost, "/api/v1/income", token, gin.H{"amount": "25000", "source": "pension", "date": "2024-03-01"})
	if w.Code != http.StatusOK {
		t.Fatalf("create income: %d %s", w.Code, w.Body.String())
	}

	w, resp := app.do(t, http.MethodPost, "/api/v1/reminders", token, gin.H{"title": "Electricity bill", "due_date": "2024-03-05"})
	if w.Code != http.StatusOK {
		t.Fatalf("create reminder: %d %s", w.Code, w.Body.String())
	}
	if status := resp.Data.(map[string]any)["status"]; status != string(model.ReminderPending) {
		t.Fatalf("status = %v", status)
	}
	w, resp = app.do(t, http.MethodGet, "/api/v1/reminders?status=PENDING", token, nil)
	if w.Code != http.StatusOK || len(resp.Data.([]any)) != 1 {
		t.Fatalf("reminders: %d %v", w.Code, resp.Data)
	}
	w, _ = app.do(t, http.MethodGet, "/api/v1/reminders?status=LATER", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter: %d", w.Code)
	}

	w, resp = app.do(t, http.MethodGet, "/api/v1/summary/monthly?month=2024-03", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: %d %s", w.Code, w.Body.String())
	}
	w, _ = app.do(t, http.MethodGet, "/api/v1/summary/monthly?month=March", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad month: %d", w.Code)
	}

	w, _ = app.do(t, http.MethodGet, "/api/v1/logbook/export?start_date=2024-03-01&end_date=2024-03-31", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatal("export is not a zip container")
	}
}

func TestProviderAttendance(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	w, resp := app.do(t, http.MethodPost, "/api/v1/providers", token, gin.H{"name": "Lakshmi", "salary": "6000"})
	if w.Code != http.StatusOK {
		t.Fatalf("create provider: %d %s", w.Code, w.Body.String())
	}
	id := resp.Data.(map[string]any)["id"].(string)

	w, _ = app.do(t, http.MethodPost, "/api/v1/providers/"+id+"/attendance", token, gin.H{"date": "2024-03-04", "present": true})
	if w.Code != http.StatusOK {
		t.Fatalf("mark attendance: %d %s", w.Code, w.Body.String())
	}
	w, resp = app.do(t, http.MethodGet, "/api/v1/providers/"+id+"/attendance", token, nil)
	if w.Code != http.StatusOK || len(resp.Data.([]any)) != 1 {
		t.Fatalf("attendance: %d %v", w.Code, resp.Data)
	}

	other := app.login(t)
	w, resp = app.do(t, http.MethodGet, "/api/v1/providers/"+id+"/attendance", other, nil)
	if w.Code != http.StatusNotFound || resp.Code != response.CodeNotFound {
		t.Fatalf("foreign provider: %d %+v", w.Code, resp)
	}
}

func TestProfileEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	w, _ := app.do(t, http.MethodPost, "/api/v1/profile/contacts", token, gin.H{"name": "Ravi", "relationship": "son", "phone": "+91 98450 00000"})
	if w.Code != http.StatusOK {
		t.Fatalf("contact: %d %s", w.Code, w.Body.String())
	}
	w, _ = app.do(t, http.MethodPost, "/api/v1/profile/banks", token, gin.H{"bank_name": "SBI"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bank without account: %d", w.Code)
	}
	w, _ = app.do(t, http.MethodPut, "/api/v1/profile/settings", token, gin.H{"language": "hi", "voice_enabled": false, "large_text": true, "currency": "INR"})
	if w.Code != http.StatusOK {
		t.Fatalf("settings: %d %s", w.Code, w.Body.String())
	}

	w, resp := app.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: %d", w.Code)
	}
	p := resp.Data.(map[string]any)
	if s := p["settings"].(map[string]any); s["language"] != "hi" || s["large_text"] != true {
		t.Fatalf("settings = %v", s)
	}
	if c := p["emergency_contacts"].([]any); len(c) != 1 {
		t.Fatalf("contacts = %v", c)
	}
}

func TestVoiceRoundTrip(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	if w, _ := app.do(t, http.MethodPost, "/api/v1/voice/chunk", token, []byte("early")); w.Code != http.StatusConflict {
		t.Fatalf("chunk before start: %d", w.Code)
	}
	if w, _ := app.do(t, http.MethodPost, "/api/v1/voice/start", token, nil); w.Code != http.StatusOK {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}
	if w, _ := app.do(t, http.MethodPost, "/api/v1/voice/chunk", token, []byte("webm-bytes")); w.Code != http.StatusOK {
		t.Fatalf("chunk: %d %s", w.Code, w.Body.String())
	}
	w, resp := app.do(t, http.MethodPost, "/api/v1/voice/stop", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stop: %d %s", w.Code, w.Body.String())
	}
	if tr := resp.Data.(map[string]any)["transcript"]; tr != "I spent 1500 on groceries" {
		t.Fatalf("transcript = %v", tr)
	}

	w, _ = app.do(t, http.MethodPost, "/api/v1/speech", token, gin.H{"text": "Noted"})
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "audio/mpeg" {
		t.Fatalf("speech: %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(w.Body.String(), "ID3") {
		t.Fatalf("speech body = %q", w.Body.String())
	}
}

func TestEntrySearchDisabled(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	w, resp := app.do(t, http.MethodGet, "/api/v1/entries/search?q=groceries", token, nil)
	if w.Code != http.StatusServiceUnavailable || resp.Code != response.CodeUpstream {
		t.Fatalf("search: %d %+v", w.Code, resp)
	}
	if w, _ := app.do(t, http.MethodGet, "/api/v1/entries/search", token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("search without q: %d", w.Code)
	}
}

func TestEntryStreamDeliversOwnEntries(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)
	other := app.login(t)

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/entries/stream?token="+token, nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream status = %d", resp.StatusCode)
	}

	lines := bufio.NewScanner(resp.Body)
	nextEvent := func() (string, string) {
		var event string
		for lines.Scan() {
			line := lines.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				return event, strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return "", ""
	}

	if ev, _ := nextEvent(); ev != "ready" {
		t.Fatalf("first event = %q", ev)
	}

	post := func(tok string) {
		body, _ := json.Marshal(gin.H{"text": "groceries 1500"})
		r, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/chat/messages", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Authorization", "Bearer "+tok)
		res, err := srv.Client().Do(r)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
	}
	post(other)
	post(token)

	ev, data := nextEvent()
	if ev != events.EntryAdded {
		t.Fatalf("event = %q", ev)
	}
	var entry model.VoiceEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Description != "groceries 1500" {
		t.Fatalf("entry = %+v", entry)
	}
}
