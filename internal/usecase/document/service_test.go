package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temu-lab/temudoc/internal/domain"
	"github.com/temu-lab/temudoc/internal/repository/corpus"
)

func TestAdd_RejectsEmptyText(t *testing.T) {
	svc := New(corpus.New())

	for _, txt := range []string{"", "   ", "\t\n"} {
		_, err := svc.Add(context.Background(), txt, "Kuliner")
		assert.ErrorIs(t, err, domain.ErrEmptyText, "text %q", txt)
	}
}

func TestAdd_DefaultsCategory(t *testing.T) {
	svc := New(corpus.New())

	doc, err := svc.Add(context.Background(), "nasi goreng", "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategory, doc.Category)
	assert.Equal(t, 1, doc.ID)
}

func TestAddBulk_SkipsEntriesWithoutText(t *testing.T) {
	repo := corpus.New()
	svc := New(repo)

	added, total, err := svc.AddBulk(context.Background(), []BulkItem{
		{Text: "a"},
		{Category: "x"},
		{Text: "b", Category: "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, total)

	doc, err := repo.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "b", doc.Text)
	assert.Equal(t, "y", doc.Category)
}

func TestAddBulk_TotalIncludesExistingDocuments(t *testing.T) {
	repo := corpus.New()
	_, err := repo.Insert(context.Background(), "sudah ada", "")
	require.NoError(t, err)
	svc := New(repo)

	added, total, err := svc.AddBulk(context.Background(), []BulkItem{{Text: "baru"}})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 2, total)
}

func TestAddBulk_EmptyBatch(t *testing.T) {
	svc := New(corpus.New())

	added, total, err := svc.AddBulk(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Zero(t, total)
}
