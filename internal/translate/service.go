// Package translate sequences image normalization, payload construction and
// the inference call for one screenshot.
package translate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/chew-z/screenshot-translator/internal/api"
	"github.com/chew-z/screenshot-translator/internal/config"
	"github.com/chew-z/screenshot-translator/internal/imaging"
	"github.com/chew-z/screenshot-translator/internal/llama"
	"github.com/chew-z/screenshot-translator/internal/metrics"
	"github.com/google/uuid"
)

// Completer performs one chat completion.
type Completer interface {
	Complete(ctx context.Context, payload llama.ChatPayload) (string, error)
}

// Request is one translation job.
type Request struct {
	Image  []byte
	Prompt string
	// Ctx overrides the configured context size when positive.
	Ctx int
}

// Result is a finished translation.
type Result struct {
	Markdown    string
	ContextUsed int
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	completer  Completer
	model      string
	defaultCtx int
}

// NewService creates a translation service from the loaded configuration.
func NewService(cfg *config.Config, completer Completer) *Service {
	return &Service{
		completer:  completer,
		model:      cfg.ModelName,
		defaultCtx: cfg.CtxSize,
	}
}

// Translate runs one job. Errors are *api.StatusError: 400 for undecodable
// images, 500 for any upstream failure.
func (s *Service) Translate(ctx context.Context, req Request) (*Result, error) {
	id := uuid.NewString()
	ctxSize := s.defaultCtx
	if req.Ctx > 0 {
		ctxSize = req.Ctx
	}

	png, err := imaging.Normalize(req.Image)
	if err != nil {
		slog.Warn("rejecting upload", "request_id", id, "bytes", len(req.Image), "error", err)
		metrics.TranslationDone(metrics.OutcomeBadImage)
		return nil, api.WrapError(err, http.StatusBadRequest, "Failed to read image")
	}

	payload := llama.BuildPayload(llama.Request{
		Model:        s.model,
		SystemPrompt: config.SystemPrompt,
		ImagePNG:     png,
		Prompt:       req.Prompt,
		CtxSize:      ctxSize,
	})

	slog.Info("translating screenshot", "request_id", id, "png_bytes", len(png), "ctx", ctxSize, "custom_prompt", req.Prompt != "")
	start := time.Now()
	markdown, err := s.completer.Complete(ctx, payload)
	metrics.UpstreamDuration(time.Since(start))
	if err != nil {
		slog.Error("translation failed", "request_id", id, "elapsed", time.Since(start), "error", err)
		metrics.TranslationDone(metrics.OutcomeUpstreamErr)
		return nil, api.ErrInternalServer(err.Error())
	}

	slog.Info("translation finished", "request_id", id, "elapsed", time.Since(start), "markdown_len", len(markdown))
	metrics.TranslationDone(metrics.OutcomeOK)
	return &Result{Markdown: markdown, ContextUsed: ctxSize}, nil
}
