package search

import (
	"context"

	"github.com/temu-lab/temudoc/internal/domain"
)

// CorpusReader lists the documents every strategy scores against.
type CorpusReader interface {
	List(ctx context.Context) ([]domain.Document, error)
}
