package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/set-night/sketchbot/internal/domain"
)

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        string
	}{
		{"detail string", `{"detail":"Email already registered"}`, "application/json", "Email already registered"},
		{"detail list", `{"detail":[{"msg":"field required"},{"msg":"too short"}]}`, "application/json", "field required; too short"},
		{"message", `{"message":"quota exceeded"}`, "application/json", "quota exceeded"},
		{"html title", `<html><head><title>502 Bad Gateway</title></head><body>nginx</body></html>`, "text/html", "502 Bad Gateway"},
		{"html body", `<html><body><h1>Service   Unavailable</h1>
<p>try later</p></body></html>`, "text/html; charset=utf-8", "Service Unavailable try later"},
		{"plain text", `upstream reset`, "text/plain", ""},
		{"empty", ``, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorDetail([]byte(tt.body), tt.contentType); got != tt.want {
				t.Errorf("errorDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorDetailTruncates(t *testing.T) {
	body := "<html><body>" + strings.Repeat("x", 500) + "</body></html>"
	got := errorDetail([]byte(body), "text/html")
	if n := len([]rune(got)); n != maxDetailLen || !strings.HasSuffix(got, "...") {
		t.Errorf("len = %d, suffix ok = %v", n, strings.HasSuffix(got, "..."))
	}
}

func TestBackendSetsRequestID(t *testing.T) {
	ids := make(chan string, 2)
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"status":"healthy"}`))
	})
	b := fb.backend()

	for range 2 {
		status, err := b.Health(context.Background())
		if err != nil || status != "healthy" {
			t.Fatalf("Health() = %q, %v", status, err)
		}
	}
	first, second := <-ids, <-ids
	if first == "" || first == second {
		t.Errorf("request ids = %q, %q; want distinct non-empty", first, second)
	}
}

func TestBackendHTTPErrorKeepsStatusInMessage(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"slow down"}`))
	})

	_, err := fb.backend().Chat(context.Background(), "hi", "ctx")

	var httpErr *domain.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Chat() error = %v, want HTTPError", err)
	}
	if httpErr.Detail != "slow down" || err.Error() != "HTTP error! status: 429" {
		t.Errorf("error = %q, detail = %q", err.Error(), httpErr.Detail)
	}
}

func TestMeUsesBearerToken(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		w.Write([]byte(`{"status":"ok","data":{"id":3,"email":"a@b.c","username":"ada"}}`))
	})
	b := fb.backend()

	p, err := b.Me(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if p.ID != 3 || p.Username != "ada" || p.Email != "a@b.c" {
		t.Errorf("profile = %+v", p)
	}

	_, err = b.Me(context.Background(), "stale")
	var authErr *domain.AuthenticationError
	if !errors.As(err, &authErr) || authErr.Message != "Could not validate credentials" {
		t.Errorf("Me(stale) error = %v", err)
	}
}

func TestUploadSketch(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.Close()
		w.Write([]byte(`{"status":"ok","data":{"path":"uploads/` + hdr.Filename + `"}}`))
	})

	path, err := fb.backend().UploadSketch(context.Background(), pngHeader, "doodle.png")
	if err != nil || path != "uploads/doodle.png" {
		t.Errorf("UploadSketch() = %q, %v", path, err)
	}
}
