package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/domain"
	"github.com/shopspring/decimal"
)

// GenerationResult is what a successful Generate produced.
type GenerationResult struct {
	// ImageURL is what the user sees: a data URL or a cache-busted link.
	ImageURL string
	Source   domain.ImageSource
	Record   domain.GenerationRecord
}

// GenerationService holds the uploaded sketch and turns it into a design.
type GenerationService struct {
	backend  *Backend
	sessions *SessionStore
	notifier Notifier
	guidance decimal.Decimal
	steps    int
	now      func() time.Time

	flight Flight

	mu     sync.Mutex
	sketch *domain.Sketch
	mode   domain.GenerationMode
	result string
}

func NewGenerationService(backend *Backend, sessions *SessionStore, notifier Notifier) *GenerationService {
	return &GenerationService{
		backend:  backend,
		sessions: sessions,
		notifier: notifier,
		guidance: decimal.RequireFromString(config.DefaultGuidanceScale),
		steps:    config.InferenceSteps,
		now:      time.Now,
		mode:     domain.ModeUI,
	}
}

// Upload reads r into memory and replaces the current sketch. No network
// call is made and no size or type limit is applied.
func (s *GenerationService) Upload(ctx context.Context, r io.Reader, filename string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		s.notifier.Error(ctx, "Failed to read sketch")
		return fmt.Errorf("read sketch: %w", err)
	}

	sketch := domain.NewSketch(data, filename)
	s.mu.Lock()
	s.sketch = &sketch
	s.mu.Unlock()

	s.notifier.Success(ctx, "Sketch uploaded successfully!")
	return nil
}

// SetGuidance replaces the guidance scale sent with later generations.
func (s *GenerationService) SetGuidance(d decimal.Decimal) error {
	if err := config.CheckGuidance(d); err != nil {
		return err
	}
	s.mu.Lock()
	s.guidance = d
	s.mu.Unlock()
	return nil
}

func (s *GenerationService) Sketch() *domain.Sketch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sketch
}

func (s *GenerationService) SetMode(mode domain.GenerationMode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
}

func (s *GenerationService) Mode() domain.GenerationMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Result is the image currently on display, empty before the first success.
func (s *GenerationService) Result() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Generating reports whether any Generate call is still waiting.
func (s *GenerationService) Generating() bool {
	return s.flight.Busy()
}

// Generate sends the held sketch and description to the backend.
//
// Overlapping calls are not rejected or cancelled; whichever answer lands
// last becomes the displayed result.
func (s *GenerationService) Generate(ctx context.Context, description string) (*GenerationResult, error) {
	s.mu.Lock()
	sketch := s.sketch
	mode := s.mode
	guidance := s.guidance
	s.mu.Unlock()

	if sketch == nil || strings.TrimSpace(description) == "" {
		s.notifier.Error(ctx, "Please upload an image and provide a description")
		cause := domain.ErrMissingDescription
		if sketch == nil {
			cause = domain.ErrMissingSketch
		}
		return nil, &domain.ValidationError{
			Message: "Please upload an image and provide a description",
			Err:     cause,
		}
	}

	release := s.flight.Acquire()
	defer release()

	s.notifier.Success(ctx, "AI is generating your design...")

	res, err := s.run(ctx, *sketch, description, mode, guidance)
	if err != nil {
		slog.Error("generate design", "mode", mode, "error", err)
		s.notifier.Error(ctx, "Failed to generate image: "+ExplainGenerationError(err))
		return nil, err
	}

	s.notifier.Success(ctx, "Design generated successfully!")
	return res, nil
}

func (s *GenerationService) run(ctx context.Context, sketch domain.Sketch, description string, mode domain.GenerationMode, guidance decimal.Decimal) (*GenerationResult, error) {
	data, mime, err := sketch.Bytes()
	if err != nil {
		return nil, fmt.Errorf("decode sketch: %w", err)
	}

	out, err := s.backend.Generate(ctx, GenerateParams{
		Sketch:   data,
		MIME:     mime,
		Prompt:   description,
		Guidance: guidance,
		Steps:    s.steps,
	})
	if err != nil {
		return nil, err
	}

	src, err := out.Resolve()
	if err != nil {
		return nil, err
	}

	now := s.now()
	apiBase := s.backend.Endpoints().APIBase()
	res := &GenerationResult{
		ImageURL: src.DisplayURL(apiBase, now),
		Source:   src,
		Record:   domain.NewGenerationRecord(now, mode, description, src.URL(apiBase)),
	}

	s.mu.Lock()
	s.result = res.ImageURL
	s.mu.Unlock()

	if err := s.sessions.AppendHistory(ctx, res.Record); err != nil {
		slog.Warn("record generation history", "error", err)
	}
	return res, nil
}

// FetchResult returns the bytes of the displayed image, decoding inline data
// locally and downloading remote images.
func (s *GenerationService) FetchResult(ctx context.Context) ([]byte, error) {
	u := s.Result()
	if u == "" {
		return nil, domain.ErrNoResult
	}
	if strings.HasPrefix(u, "data:") {
		data, _, err := domain.DecodeDataURL(u)
		return data, err
	}
	return s.backend.FetchImage(ctx, u)
}

// UnreachableText replaces transport errors in user-facing text; those
// carry the request URL and dial address.
const UnreachableText = "Could not reach the server. Please check your connection and try again."

// ExplainGenerationError maps an error to the text shown after
// "Failed to generate image: ".
func ExplainGenerationError(err error) string {
	var httpErr *domain.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case 500:
			return "Server error. Please check if the AI model is loaded correctly."
		case 413:
			return "Image file is too large. Please try with a smaller image."
		case 400:
			return "Invalid request. Please check your image and description."
		}
		return httpErr.Error()
	}

	var netErr *domain.NetworkError
	if errors.As(err, &netErr) {
		return UnreachableText
	}
	return err.Error()
}
