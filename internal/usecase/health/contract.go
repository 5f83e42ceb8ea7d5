package health

import "context"

// CorpusCounter checks corpus availability.
type CorpusCounter interface {
	Count(ctx context.Context) (int, error)
}

// SpeechChecker checks speech provider availability.
type SpeechChecker interface {
	HealthCheck(ctx context.Context) error
}
