package gigachat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popov-vn/ai-agent/internal/config"
	errs "github.com/popov-vn/ai-agent/internal/errors"
)

type fakeGigaChat struct {
	t          *testing.T
	tokenCalls atomic.Int32
	expiresAt  time.Time
	mu         sync.Mutex
	lastChat   ChatRequest
	chatStatus int
}

func (f *fakeGigaChat) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /oauth", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		assert.Equal(f.t, "Basic dGVzdDpzZWNyZXQ=", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get("RqUID"))
		assert.NoError(f.t, err)
		assert.NoError(f.t, r.ParseForm())
		assert.Equal(f.t, "GIGACHAT_API_PERS", r.PostForm.Get("scope"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			"expires_at":   f.expiresAt.UnixMilli(),
		})
	})

	mux.HandleFunc("POST /api/v1/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NoError(f.t, r.ParseMultipartForm(1<<20))
		assert.Equal(f.t, "general", r.FormValue("purpose"))

		file, hdr, err := r.FormFile("file")
		if !assert.NoError(f.t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(f.t, "avatar.jpg", hdr.Filename)
		assert.Equal(f.t, "image/jpeg", hdr.Header.Get("Content-Type"))
		assert.Equal(f.t, []byte{0xff, 0xd8, 0xff}, data)

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "file-42", "object": "file"})
	})

	mux.HandleFunc("POST /api/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "Bearer tok-1", r.Header.Get("Authorization"))
		if f.chatStatus != 0 {
			http.Error(w, `{"message":"rate limited"}`, f.chatStatus)
			return
		}
		var chat ChatRequest
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&chat))
		f.mu.Lock()
		f.lastChat = chat
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": "- любит горы"}}},
		})
	})

	return mux
}

func (f *fakeGigaChat) chat() ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastChat
}

func newTestClient(t *testing.T, fake *fakeGigaChat) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	c, err := NewClient(config.GigaChatConfig{
		Credentials:   "dGVzdDpzZWNyZXQ=",
		AuthURL:       srv.URL + "/oauth",
		BaseURL:       srv.URL + "/api/v1/",
		RefreshLeeway: 30 * time.Second,
	}, srv.Client(), nil)
	require.NoError(t, err)
	return c, srv
}

func TestUploadAndChat(t *testing.T) {
	t.Parallel()

	fake := &fakeGigaChat{t: t, expiresAt: time.Now().Add(30 * time.Minute)}
	c, _ := newTestClient(t, fake)
	ctx := context.Background()

	id, err := c.Upload(ctx, "avatar.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	assert.Equal(t, "file-42", id)

	text, err := c.Chat(ctx, ChatRequest{
		Messages:    []Message{{Role: "user", Content: "опиши", Attachments: []string{id}}},
		Temperature: 0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, "- любит горы", text)

	sent := fake.chat()
	assert.Equal(t, config.DefaultGigaChatModel, sent.Model)
	assert.Equal(t, 0.1, sent.Temperature)
	require.Len(t, sent.Messages, 1)
	assert.Equal(t, []string{"file-42"}, sent.Messages[0].Attachments)

	assert.Equal(t, int32(1), fake.tokenCalls.Load(), "token is reused across calls")
}

func TestTokenRefreshWithinLeeway(t *testing.T) {
	t.Parallel()

	base := time.Now()
	fake := &fakeGigaChat{t: t, expiresAt: base.Add(time.Minute)}
	c, _ := newTestClient(t, fake)
	ctx := context.Background()

	c.now = func() time.Time { return base }
	_, err := c.Token(ctx)
	require.NoError(t, err)
	_, err = c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.tokenCalls.Load())

	c.now = func() time.Time { return base.Add(45 * time.Second) }
	_, err = c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fake.tokenCalls.Load())
}

func TestChatErrors(t *testing.T) {
	t.Parallel()

	fake := &fakeGigaChat{t: t, expiresAt: time.Now().Add(time.Hour), chatStatus: http.StatusTooManyRequests}
	c, _ := newTestClient(t, fake)

	_, err := c.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	require.Error(t, err)
	assert.True(t, errs.IsAPI(err))
	assert.Contains(t, err.Error(), "status 429")
}

func TestAuthFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(config.GigaChatConfig{Credentials: "x", AuthURL: srv.URL, BaseURL: srv.URL}, srv.Client(), nil)
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), "a.jpg", "image/jpeg", []byte{1})
	require.Error(t, err)
	assert.True(t, errs.IsAPI(err))
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewClient(config.GigaChatConfig{}, nil, nil)
	assert.True(t, errs.IsConfig(err))
}
