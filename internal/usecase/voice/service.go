// Package voice orchestrates voice-to-text search input.
package voice

import (
	"context"
	"fmt"
	"io"

	"github.com/temu-lab/temudoc/internal/domain"
)

// Service turns uploaded audio into query text. transcriber may be nil when
// no speech provider is configured.
type Service struct {
	transcriber Transcriber
}

// New creates a voice service.
func New(transcriber Transcriber) *Service {
	return &Service{transcriber: transcriber}
}

// Transcribe sends the audio stream to the speech provider.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if s.transcriber == nil {
		return "", fmt.Errorf("%w: speech provider not configured", domain.ErrTranscriptionFailed)
	}
	if audio == nil {
		return "", domain.ErrEmptyAudio
	}
	transcript, err := s.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return transcript, nil
}
