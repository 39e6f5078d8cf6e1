// Package gigachat is a small client for the GigaChat REST API: OAuth token
// exchange, file upload and chat completions with attachments.
package gigachat

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/popov-vn/ai-agent/internal/config"
	errs "github.com/popov-vn/ai-agent/internal/errors"
)

// Message is one chat message. Attachments hold ids returned by Upload.
type Message struct {
	Role        string   `json:"role"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`
}

// ChatRequest is the body of /chat/completions.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	// ExpiresAt is unix milliseconds.
	ExpiresAt int64 `json:"expires_at"`
}

type fileResponse struct {
	ID string `json:"id"`
}

// Client talks to GigaChat. It is safe for concurrent use.
type Client struct {
	cfg  config.GigaChatConfig
	http *http.Client
	log  *slog.Logger
	now  func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
	group   singleflight.Group
}

// NewClient creates a client. httpClient may be nil.
func NewClient(cfg config.GigaChatConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Credentials) == "" {
		return nil, errs.NewConfigError("gigachat credentials are empty", nil)
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = config.DefaultGigaChatAuth
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultGigaChatAPI
	}
	if cfg.Scope == "" {
		cfg.Scope = config.DefaultGigaChatScope
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultGigaChatModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.InsecureTLS {
			// Sber endpoints are signed by the Russian Trusted Root CA.
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
		httpClient = &http.Client{Transport: transport, Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		cfg:  cfg,
		http: httpClient,
		log:  logger.With("component", "gigachat"),
		now:  time.Now,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Token returns a cached access token, fetching a new one when the cached
// token expires within the refresh leeway.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Add(c.cfg.RefreshLeeway).Before(c.expires) {
		tok := c.token
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("token", func() (any, error) {
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{"scope": {c.cfg.Scope}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.cfg.Credentials)
	req.Header.Set("RqUID", uuid.NewString())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return "", errs.NewAPIError("gigachat authorization failed", err)
	}
	if tok.AccessToken == "" {
		return "", errs.NewAPIError("gigachat returned an empty access token", nil)
	}

	c.mu.Lock()
	c.token = tok.AccessToken
	c.expires = time.UnixMilli(tok.ExpiresAt)
	c.mu.Unlock()

	c.log.DebugContext(ctx, "Access token refreshed", "expires_at", c.expires)
	return tok.AccessToken, nil
}

// Upload stores a file for later use as a chat attachment and returns its id.
func (c *Client) Upload(ctx context.Context, filename, mime string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", mime)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write multipart file: %w", err)
	}
	if err := mw.WriteField("purpose", "general"); err != nil {
		return "", fmt.Errorf("write multipart purpose: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := c.authorized(ctx, http.MethodPost, "/files", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out fileResponse
	if err := c.do(req, &out); err != nil {
		return "", errs.NewAPIError("gigachat upload failed", err)
	}
	if out.ID == "" {
		return "", errs.NewAPIError("gigachat upload returned no file id", nil)
	}

	c.log.DebugContext(ctx, "File uploaded", "file_id", out.ID, "size", len(data))
	return out.ID, nil
}

// Chat sends a completion request and returns the first choice's content.
// An empty model uses the configured one.
func (c *Client) Chat(ctx context.Context, chat ChatRequest) (string, error) {
	if chat.Model == "" {
		chat.Model = c.cfg.Model
	}
	raw, err := json.Marshal(chat)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := c.authorized(ctx, http.MethodPost, "/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out chatResponse
	if err := c.do(req, &out); err != nil {
		return "", errs.NewAPIError("gigachat chat failed", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", errs.NewAPIError("gigachat returned no content", nil)
	}

	return out.Choices[0].Message.Content, nil
}

func (c *Client) authorized(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	tok, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
