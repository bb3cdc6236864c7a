package domain

import (
	"strconv"
	"strings"
	"time"
)

type GenerationMode string

const (
	ModeUI GenerationMode = "ui"
	Mode3D GenerationMode = "3d"
)

func ParseMode(s string) (GenerationMode, bool) {
	switch GenerationMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeUI:
		return ModeUI, true
	case Mode3D:
		return Mode3D, true
	}
	return "", false
}

// Title is the history title for a design generated in this mode.
func (m GenerationMode) Title() string {
	if m == Mode3D {
		return "Generated 3D Design"
	}
	return "Generated UI Design"
}

func (m GenerationMode) Label() string {
	if m == Mode3D {
		return "Sketch → 3D Product"
	}
	return "Sketch → UI"
}

// GenerationData is the "data" object of a successful /generate/run answer.
type GenerationData struct {
	ImageBase64 string `json:"image_base64"`
	LatestPath  string `json:"latest_path"`
	ImagePath   string `json:"image_path"`
}

type ImageSourceKind int

const (
	ImageInline ImageSourceKind = iota + 1
	ImageRemote
)

// ImageSource is the resolved form of a generation answer: either inline
// base64 PNG data or a path on the backend.
type ImageSource struct {
	Kind   ImageSourceKind
	Base64 string
	Path   string
}

// Resolve picks the first accepted shape: image_base64, then latest_path,
// then image_path.
func (d GenerationData) Resolve() (ImageSource, error) {
	switch {
	case d.ImageBase64 != "":
		return ImageSource{Kind: ImageInline, Base64: d.ImageBase64}, nil
	case d.LatestPath != "":
		return ImageSource{Kind: ImageRemote, Path: NormalizeImagePath(d.LatestPath)}, nil
	case d.ImagePath != "":
		return ImageSource{Kind: ImageRemote, Path: NormalizeImagePath(d.ImagePath)}, nil
	}
	return ImageSource{}, &ResponseShapeError{Message: "Backend response missing image data"}
}

// NormalizeImagePath converts backslashes to slashes and drops a leading "./".
func NormalizeImagePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.TrimPrefix(p, "./")
}

func isAbsoluteImagePath(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "/")
}

// URL is the stable reference to the image, without a cache-buster.
func (s ImageSource) URL(apiBase string) string {
	if s.Kind == ImageInline {
		return "data:image/png;base64," + s.Base64
	}
	switch {
	case strings.HasPrefix(s.Path, "/"):
		return apiBase + s.Path
	case isAbsoluteImagePath(s.Path):
		return s.Path
	default:
		return apiBase + "/" + s.Path
	}
}

// DisplayURL is URL with a timestamp query parameter for remote images, so a
// mutable "latest" file is never served stale.
func (s ImageSource) DisplayURL(apiBase string, now time.Time) string {
	u := s.URL(apiBase)
	if s.Kind == ImageInline {
		return u
	}
	return CacheBust(u, now)
}

func CacheBust(u string, now time.Time) string {
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "t=" + strconv.FormatInt(now.UnixMilli(), 10)
}
