// Package corpus provides the in-memory document repository. The corpus is
// owned by this repository, constructed once at process start, and mutated
// only through Insert. There is no deletion and no durability.
package corpus

import (
	"context"
	"sync"

	"github.com/temu-lab/temudoc/internal/domain"
)

// Repository holds the document corpus. Reads return copies; the canonical
// stored documents are never handed out by reference.
type Repository struct {
	mu   sync.RWMutex
	docs []domain.Document
}

// New creates an empty repository.
func New() *Repository {
	return &Repository{}
}

// List returns a snapshot of the corpus in insertion (id) order.
func (r *Repository) List(ctx context.Context) ([]domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Document, len(r.docs))
	copy(out, r.docs)
	return out, nil
}

// Get returns the document with the given id.
func (r *Repository) Get(ctx context.Context, id int) (domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return domain.Document{}, domain.ErrDocumentNotFound
}

// Insert appends a document, assigning the next sequential id (count+1).
// An empty category defaults to domain.DefaultCategory.
func (r *Repository) Insert(ctx context.Context, text, category string) (domain.Document, error) {
	if category == "" {
		category = domain.DefaultCategory
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := domain.Document{
		ID:       len(r.docs) + 1,
		Text:     text,
		Category: category,
	}
	r.docs = append(r.docs, doc)
	return doc, nil
}

// Count returns the number of documents in the corpus.
func (r *Repository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs), nil
}
