// Package document handles corpus insertion: single documents and
// best-effort bulk batches.
package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/temu-lab/temudoc/internal/domain"
)

// Repository is the corpus insertion contract.
type Repository interface {
	Insert(ctx context.Context, text, category string) (domain.Document, error)
	Count(ctx context.Context) (int, error)
}

// BulkItem is one entry of a bulk insertion request.
type BulkItem struct {
	Text     string
	Category string
}

// Service validates and inserts documents.
type Service struct {
	repo Repository
}

// New creates a document service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add inserts one document. Text is required; an empty category defaults to
// domain.DefaultCategory in the repository.
func (s *Service) Add(ctx context.Context, text, category string) (domain.Document, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Document{}, domain.ErrEmptyText
	}
	doc, err := s.repo.Insert(ctx, text, category)
	if err != nil {
		return domain.Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

// AddBulk inserts items best-effort: entries without text are skipped, the
// rest are added. Returns the number added and the new corpus total.
// All-or-nothing semantics are deliberately not provided.
func (s *Service) AddBulk(ctx context.Context, items []BulkItem) (added, total int, err error) {
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		if _, err := s.repo.Insert(ctx, item.Text, item.Category); err != nil {
			return added, 0, fmt.Errorf("insert bulk document: %w", err)
		}
		added++
	}
	total, err = s.repo.Count(ctx)
	if err != nil {
		return added, 0, fmt.Errorf("count corpus: %w", err)
	}
	return added, total, nil
}
