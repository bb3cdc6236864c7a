package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type harness struct {
	t      *testing.T
	api    string
	db     string
	stdin  string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T, h http.HandlerFunc) *harness {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Setenv("API_BASE_URL", "")
	t.Setenv("APP_ORIGIN", "")
	return &harness{t: t, api: srv.URL, db: filepath.Join(t.TempDir(), "state.db")}
}

func (h *harness) run(args ...string) error {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()

	cmd := NewRootCmd("test")
	cmd.SetOut(&h.stdout)
	cmd.SetErr(&h.stderr)
	cmd.SetIn(strings.NewReader(h.stdin))
	cmd.SetArgs(append([]string{"--api", h.api, "--db", h.db}, args...))
	return cmd.ExecuteContext(context.Background())
}

func backendMux(t *testing.T) http.HandlerFunc {
	img := base64.StdEncoding.EncodeToString([]byte("rendered"))
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/signin":
			w.Write([]byte(`{"access_token":"tok","token_type":"bearer","user_id":9,"username":"ada"}`))
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"status":"ok","data":{"id":9,"email":"ada@example.com","username":"ada"}}`))
		case "/generate/run":
			w.Write([]byte(`{"status":"ok","data":{"image_base64":"` + img + `"}}`))
		case "/ai-assistant/chat":
			w.Write([]byte(`{"status":"ok","data":{"response":"Add more whitespace."}}`))
		case "/health":
			w.Write([]byte(`{"status":"healthy"}`))
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestSignInThenWhoAmI(t *testing.T) {
	h := newHarness(t, backendMux(t))

	if err := h.run("signin", "--email", "ada@example.com", "--password", "pw"); err != nil {
		t.Fatalf("signin error = %v (stderr %q)", err, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "Signed in as ada (id 9)") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
	if !strings.Contains(h.stderr.String(), "✓ Signed in successfully!") {
		t.Errorf("stderr = %q", h.stderr.String())
	}

	if err := h.run("whoami"); err != nil {
		t.Fatalf("whoami error = %v", err)
	}
	for _, want := range []string{"ada (id 9)", "ada@example.com"} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("whoami output missing %q: %q", want, h.stdout.String())
		}
	}

	if err := h.run("logout"); err != nil {
		t.Fatalf("logout error = %v", err)
	}
	if err := h.run("whoami"); err != nil {
		t.Fatalf("whoami error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "Not signed in.") {
		t.Errorf("stdout after logout = %q", h.stdout.String())
	}
}

func TestProfilesAreSeparate(t *testing.T) {
	h := newHarness(t, backendMux(t))

	if err := h.run("--profile", "work", "signin", "--email", "a@b.c", "--password", "pw"); err != nil {
		t.Fatalf("signin error = %v", err)
	}
	if err := h.run("--profile", "home", "whoami"); err != nil {
		t.Fatalf("whoami error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "Not signed in.") {
		t.Errorf("other profile sees session: %q", h.stdout.String())
	}
}

func TestSignInRejected(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	})
	h.stdin = "pw-from-stdin\n"

	err := h.run("signin", "--email", "a@b.c")

	var r reportedError
	if !errors.As(err, &r) {
		t.Fatalf("error = %v, want reportedError", err)
	}
	if !strings.Contains(h.stderr.String(), "✗ Incorrect email or password") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestGenerateWritesImageAndHistory(t *testing.T) {
	h := newHarness(t, backendMux(t))
	dir := t.TempDir()
	sketch := filepath.Join(dir, "sketch.png")
	if err := os.WriteFile(sketch, []byte("\x89PNG\r\n\x1a\nfake"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "design.png")

	if err := h.run("generate", "--sketch", sketch, "--mode", "3d", "--out", out, "a", "wooden", "chair"); err != nil {
		t.Fatalf("generate error = %v (stderr %q)", err, h.stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "rendered" {
		t.Fatalf("output file = %q, %v", data, err)
	}

	if err := h.run("history", "--format", "json"); err != nil {
		t.Fatalf("history error = %v", err)
	}
	for _, want := range []string{`"type":"generation"`, `"title":"Generated 3D Design"`, `"description":"a wooden chair"`} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("json history missing %s: %s", want, h.stdout.String())
		}
	}

	if err := h.run("history", "--format", "yaml"); err != nil {
		t.Fatalf("history yaml error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "type: generation") {
		t.Errorf("yaml history = %s", h.stdout.String())
	}
}

func TestGenerateRejectsUnknownMode(t *testing.T) {
	h := newHarness(t, backendMux(t))
	sketch := filepath.Join(t.TempDir(), "s.png")
	os.WriteFile(sketch, []byte("x"), 0o644)

	if err := h.run("generate", "--sketch", sketch, "--mode", "vr", "x"); err == nil {
		t.Fatal("generate with unknown mode succeeded")
	}
}

func TestChatOneShotRecordsHistory(t *testing.T) {
	h := newHarness(t, backendMux(t))

	if err := h.run("chat", "how", "is", "my", "layout?"); err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "assistant> Add more whitespace.") {
		t.Errorf("stdout = %q", h.stdout.String())
	}

	if err := h.run("history"); err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "how is my layout? → Add more whitespace.") {
		t.Errorf("history = %q", h.stdout.String())
	}
}

func TestChatInteractive(t *testing.T) {
	h := newHarness(t, backendMux(t))
	h.stdin = "first question\nsecond question\n/exit\n"

	if err := h.run("chat"); err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if got := strings.Count(h.stdout.String(), "assistant> Add more whitespace."); got != 2 {
		t.Errorf("replies = %d, want 2:\n%s", got, h.stdout.String())
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t, backendMux(t))
	if err := h.run("health"); err != nil {
		t.Fatalf("health error = %v", err)
	}
	if want := h.api + ": healthy"; !strings.Contains(h.stdout.String(), want) {
		t.Errorf("stdout = %q, want %q", h.stdout.String(), want)
	}
}

func TestReadPasswordFromPipe(t *testing.T) {
	pw, err := readPassword(strings.NewReader("s3cret\r\nignored"), &bytes.Buffer{})
	if err != nil || pw != "s3cret" {
		t.Errorf("readPassword() = %q, %v", pw, err)
	}
	if _, err := readPassword(strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("readPassword(empty) error = nil")
	}
}

func TestWriteHistoryUnknownFormat(t *testing.T) {
	if err := writeHistory(&bytes.Buffer{}, "xml", nil, 1, 1); err == nil {
		t.Error("writeHistory(xml) error = nil")
	}
}
