package domain

import (
	"errors"
	"testing"
	"time"
)

func TestResolveLatestPath(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	data := GenerationData{LatestPath: `./out\img.png`}

	src, err := data.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if src.Kind != ImageRemote {
		t.Fatalf("Kind = %v, want ImageRemote", src.Kind)
	}

	want := "https://api.x.com/out/img.png?t=1700000000123"
	if got := src.DisplayURL("https://api.x.com", now); got != want {
		t.Errorf("DisplayURL() = %q, want %q", got, want)
	}
	if got := src.URL("https://api.x.com"); got != "https://api.x.com/out/img.png" {
		t.Errorf("URL() = %q", got)
	}
}

func TestResolveBase64(t *testing.T) {
	src, err := GenerationData{ImageBase64: "Zm9v", LatestPath: "ignored.png"}.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := "data:image/png;base64,Zm9v"
	if got := src.DisplayURL("https://api.x.com", time.Now()); got != want {
		t.Errorf("DisplayURL() = %q, want %q", got, want)
	}
}

func TestResolveImagePathFallback(t *testing.T) {
	src, err := GenerationData{ImagePath: "static/a.png"}.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := src.URL("http://h"); got != "http://h/static/a.png" {
		t.Errorf("URL() = %q", got)
	}
}

func TestResolveMissingImage(t *testing.T) {
	_, err := GenerationData{}.Resolve()

	var shapeErr *ResponseShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("Resolve() error = %v, want ResponseShapeError", err)
	}
	if shapeErr.Message != "Backend response missing image data" {
		t.Errorf("message = %q", shapeErr.Message)
	}
}

func TestImageURLComposition(t *testing.T) {
	now := time.UnixMilli(42)
	tests := []struct {
		path string
		want string
	}{
		{"/static/latest.png", "http://b/static/latest.png?t=42"},
		{"https://cdn.example.com/x.png", "https://cdn.example.com/x.png?t=42"},
		{"https://cdn.example.com/x.png?v=2", "https://cdn.example.com/x.png?v=2&t=42"},
		{"outputs/x.png", "http://b/outputs/x.png?t=42"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			src := ImageSource{Kind: ImageRemote, Path: NormalizeImagePath(tt.path)}
			if got := src.DisplayURL("http://b", now); got != tt.want {
				t.Errorf("DisplayURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if m, ok := ParseMode(" 3D "); !ok || m != Mode3D {
		t.Errorf("ParseMode(3D) = %q, %v", m, ok)
	}
	if _, ok := ParseMode("video"); ok {
		t.Error("ParseMode(video) ok = true, want false")
	}
	if ModeUI.Title() != "Generated UI Design" || Mode3D.Title() != "Generated 3D Design" {
		t.Error("unexpected mode titles")
	}
}
