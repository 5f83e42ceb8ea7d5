// Package openai provides the speech-to-text provider backed by an
// OpenAI-compatible transcription API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/temu-lab/temudoc/internal/domain"
)

// Transcriber converts audio uploads to text via the Whisper endpoint.
// The API accepts m4a/wav/webm uploads directly, so no local transcoding
// step is needed.
type Transcriber struct {
	client   *openai.Client
	model    string
	language string
	logger   *zap.Logger
}

// Config holds the speech provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string // default whisper-1
	Language string // ISO-639-1, default "id"
	Logger   *zap.Logger
}

// NewTranscriber creates a speech-to-text provider.
func NewTranscriber(cfg *Config) *Transcriber {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	language := cfg.Language
	if language == "" {
		language = "id"
	}

	return &Transcriber{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		language: language,
		logger:   cfg.Logger,
	}
}

// Transcribe implements voice.Transcriber. filename carries the upload's
// extension, which the API uses to detect the container format.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	start := time.Now()

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: filename,
		Reader:   audio,
		Language: t.language,
	})
	if err != nil {
		t.logger.Warn("transcription request failed", zap.Error(err))
		return "", parseAPIError(err)
	}

	t.logger.Debug("transcription completed",
		zap.Duration("latency", time.Since(start)),
		zap.Int("chars", len(resp.Text)),
	)
	return resp.Text, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (t *Transcriber) HealthCheck(ctx context.Context) error {
	if _, err := t.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrTranscriptionFailed for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrTranscriptionFailed

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("speech API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("speech API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("speech request failed: %w", wrap)
}
