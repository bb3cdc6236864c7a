package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/domain"
	"github.com/shopspring/decimal"
)

// Backend talks to the remote generation / chat / auth API. It holds no
// per-user state and is shared by every workspace.
type Backend struct {
	endpoints  config.Endpoints
	httpClient *http.Client
}

// NewBackend builds a client for the given endpoints. A zero timeout leaves
// requests bounded only by their context.
func NewBackend(endpoints config.Endpoints, timeout time.Duration) *Backend {
	return &Backend{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (b *Backend) Endpoints() config.Endpoints {
	return b.endpoints
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type authResponse struct {
	AccessToken *string `json:"access_token"`
	TokenType   string  `json:"token_type"`
	UserID      *int64  `json:"user_id"`
	Username    *string `json:"username"`
}

type chatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

// GenerateParams is the multipart body of /generate/run.
type GenerateParams struct {
	Sketch   []byte
	MIME     string
	Prompt   string
	Guidance decimal.Decimal
	Steps    int
}

// Authenticate posts credentials to an auth endpoint and returns the session
// it grants.
func (b *Backend) Authenticate(ctx context.Context, url string, payload any) (*domain.Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, respBody, err := b.do(req, "auth request")
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp.StatusCode) {
		return nil, authError(resp, respBody, "Authentication failed")
	}

	var ar authResponse
	if err := json.Unmarshal(respBody, &ar); err != nil {
		return nil, &domain.ResponseShapeError{Message: "Authentication failed: unreadable response"}
	}
	if ar.AccessToken == nil || ar.UserID == nil || ar.Username == nil {
		return nil, &domain.ResponseShapeError{Message: "Authentication failed: incomplete response"}
	}

	return &domain.Session{
		Token:    *ar.AccessToken,
		UserID:   *ar.UserID,
		Username: *ar.Username,
	}, nil
}

// Generate uploads a sketch with its prompt and returns the raw "data" object.
func (b *Backend) Generate(ctx context.Context, p GenerateParams) (*domain.GenerationData, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	mime := p.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="sketch"; filename=%q`, config.SketchFilename))
	h.Set("Content-Type", mime)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create sketch part: %w", err)
	}
	if _, err := part.Write(p.Sketch); err != nil {
		return nil, fmt.Errorf("write sketch part: %w", err)
	}
	fields := [][2]string{
		{"prompt", p.Prompt},
		{"guidance", p.Guidance.String()},
		{"steps", strconv.Itoa(p.Steps)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write %s field: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoints.Generate, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, body, err := b.do(req, "generate request")
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, httpError(resp, body)
	}

	raw, err := decodeEnvelope(body, "Failed to generate image")
	if err != nil {
		return nil, err
	}

	var data domain.GenerationData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &domain.ResponseShapeError{Message: "Failed to generate image"}
	}
	return &data, nil
}

// Chat sends one message to the assistant and returns its reply.
func (b *Backend) Chat(ctx context.Context, message, contextText string) (string, error) {
	payload, err := json.Marshal(chatRequest{Message: message, Context: contextText})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoints.Assistant, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, body, err := b.do(req, "chat request")
	if err != nil {
		return "", err
	}
	if !isSuccess(resp.StatusCode) {
		return "", httpError(resp, body)
	}

	const fallback = "Failed to get AI response"
	raw, err := decodeEnvelope(body, fallback)
	if err != nil {
		return "", err
	}

	var data struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &data); err != nil || data.Response == "" {
		return "", &domain.ResponseShapeError{Message: fallback}
	}
	return data.Response, nil
}

// Me fetches the profile of the token's owner.
func (b *Backend) Me(ctx context.Context, token string) (*domain.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoints.Me(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, body, err := b.do(req, "profile request")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, authError(resp, body, "Session expired")
	}
	if !isSuccess(resp.StatusCode) {
		return nil, httpError(resp, body)
	}

	raw, err := decodeEnvelope(body, "Failed to load profile")
	if err != nil {
		return nil, err
	}
	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &domain.ResponseShapeError{Message: "Failed to load profile"}
	}
	return &p, nil
}

// Health probes /health and returns the reported status.
func (b *Backend) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoints.Health, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, body, err := b.do(req, "health request")
	if err != nil {
		return "", err
	}
	if !isSuccess(resp.StatusCode) {
		return "", httpError(resp, body)
	}

	var h struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &h); err != nil || h.Status == "" {
		return "", &domain.ResponseShapeError{Message: "unexpected health response"}
	}
	return h.Status, nil
}

// UploadSketch stores a sketch on the backend and returns its server path.
func (b *Backend) UploadSketch(ctx context.Context, data []byte, filename string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoints.Upload, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, body, err := b.do(req, "upload request")
	if err != nil {
		return "", err
	}
	if !isSuccess(resp.StatusCode) {
		return "", httpError(resp, body)
	}

	raw, err := decodeEnvelope(body, "Upload failed")
	if err != nil {
		return "", err
	}
	var out struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.Path == "" {
		return "", &domain.ResponseShapeError{Message: "Upload failed"}
	}
	return out.Path, nil
}

// FetchImage downloads a generated image from the backend.
func (b *Backend) FetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, body, err := b.do(req, "image download")
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, httpError(resp, body)
	}
	return body, nil
}

// do sends req, tags it with a request ID and reads the whole body.
// Transport failures come back as *domain.NetworkError.
func (b *Backend) do(req *http.Request, op string) (*http.Response, []byte, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	start := time.Now()

	resp, err := b.httpClient.Do(req)
	if err != nil {
		slog.Warn("backend unreachable", "op", op, "request_id", requestID, "error", err)
		return nil, nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &domain.NetworkError{Op: "read response", Err: err}
	}

	slog.Debug("backend call",
		"op", op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, body, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func httpError(resp *http.Response, body []byte) error {
	return &domain.HTTPError{
		StatusCode: resp.StatusCode,
		Detail:     errorDetail(body, resp.Header.Get("Content-Type")),
	}
}

// decodeEnvelope requires {"status":"ok","data":{...}} and returns data.
func decodeEnvelope(body []byte, fallback string) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &domain.ResponseShapeError{Message: fallback}
	}
	if env.Status != "ok" || len(env.Data) == 0 || string(env.Data) == "null" {
		msg := env.Message
		if msg == "" {
			msg = fallback
		}
		return nil, &domain.ResponseShapeError{Message: msg}
	}
	return env.Data, nil
}

const maxDetailLen = 300

// errorDetail pulls a human message out of an error body: FastAPI's
// "detail" (string or validation list), a "message" field, or the text of
// an HTML error page. Empty when nothing usable is found.
func errorDetail(body []byte, contentType string) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := detailText(payload.Detail); msg != "" {
			return msg
		}
		return payload.Message
	}

	if strings.Contains(contentType, "html") || bytes.Contains(bytes.ToLower(body), []byte("<html")) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return ""
		}
		text := strings.TrimSpace(doc.Find("title").First().Text())
		if text == "" {
			text = strings.Join(strings.Fields(doc.Find("body").Text()), " ")
		}
		return truncate(text, maxDetailLen)
	}
	return ""
}

// authError builds the rejection for an auth call. Only FastAPI's "detail"
// reaches the message; other body text is kept in Detail for logs.
func authError(resp *http.Response, body []byte, fallback string) *domain.AuthenticationError {
	msg := fallback
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if d := detailText(payload.Detail); d != "" {
			msg = d
		}
	}
	return &domain.AuthenticationError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Detail:     errorDetail(body, resp.Header.Get("Content-Type")),
	}
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
