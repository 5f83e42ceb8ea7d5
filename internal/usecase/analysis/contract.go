package analysis

import (
	"context"

	"github.com/temu-lab/temudoc/internal/domain"
)

// CorpusReader resolves the target document and lists the corpus.
type CorpusReader interface {
	Get(ctx context.Context, id int) (domain.Document, error)
}

// Clusterer runs the clustering strategy, used to explain cluster labels.
type Clusterer interface {
	Cluster(ctx context.Context) ([]domain.Result, error)
}
