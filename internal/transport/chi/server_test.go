package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temu-lab/temudoc/internal/repository/corpus"
	"github.com/temu-lab/temudoc/internal/text"
	analysisuc "github.com/temu-lab/temudoc/internal/usecase/analysis"
	documentuc "github.com/temu-lab/temudoc/internal/usecase/document"
	healthuc "github.com/temu-lab/temudoc/internal/usecase/health"
	searchuc "github.com/temu-lab/temudoc/internal/usecase/search"
	statsuc "github.com/temu-lab/temudoc/internal/usecase/stats"
	voiceuc "github.com/temu-lab/temudoc/internal/usecase/voice"
)

func newTestRouter(t *testing.T, texts ...string) chi.Router {
	t.Helper()

	repo := corpus.New()
	for _, txt := range texts {
		_, err := repo.Insert(context.Background(), txt, "")
		require.NoError(t, err)
	}

	pre := text.NewPreprocessor(text.LanguageIndonesian)
	corrector := text.NewCorrector(text.DefaultCutoff)
	searchSvc := searchuc.New(repo, pre, corrector, searchuc.Config{})
	srv := NewServer(
		searchSvc,
		analysisuc.New(repo, searchSvc),
		documentuc.New(repo),
		statsuc.New(repo, pre),
		voiceuc.New(nil),
		healthuc.New(repo, nil),
		zap.NewNop(),
	)

	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSearchRegex(t *testing.T) {
	r := newTestRouter(t, "Nasi goreng enak", "Gunung Bromo indah")

	rec := doJSON(t, r, http.MethodPost, "/search/regex", map[string]any{"query": "nasi"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[searchResponse](t, rec)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1, resp.Results[0].ID)
	assert.Nil(t, resp.Suggestion)
}

func TestSearchRegex_InvalidPattern(t *testing.T) {
	r := newTestRouter(t, "nasi goreng")

	rec := doJSON(t, r, http.MethodPost, "/search/regex", map[string]any{"query": "(["})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_pattern", decodeBody[errorResponse](t, rec).Code)
}

func TestSearchRegex_MalformedBody(t *testing.T) {
	r := newTestRouter(t, "nasi goreng")

	req := httptest.NewRequest(http.MethodPost, "/search/regex", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeBody[errorResponse](t, rec).Code)
}

func TestSearchBoolean_EmptyResultsIsArrayNotNull(t *testing.T) {
	r := newTestRouter(t, "nasi goreng")

	rec := doJSON(t, r, http.MethodPost, "/search/boolean", map[string]any{"query": "zzzzzz"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
	assert.Contains(t, rec.Body.String(), `"suggestion":null`)
}

func TestSearchVSM_ReturnsScoresAndProcessedText(t *testing.T) {
	r := newTestRouter(t, "Makanan yang enak", "Gunung Bromo indah")

	rec := doJSON(t, r, http.MethodPost, "/search/vsm", map[string]any{
		"query":        "makanan enak",
		"use_stemming": true,
		"use_stopword": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[searchResponse](t, rec)
	require.Len(t, resp.Results, 1)
	require.NotNil(t, resp.Results[0].Score)
	assert.InDelta(t, 1.0, *resp.Results[0].Score, 1e-9)
	assert.Equal(t, "makan enak", resp.Results[0].ProcessedText)
}

func TestSearchVSM_Suggestion(t *testing.T) {
	r := newTestRouter(t, "nasi goreng enak")

	rec := doJSON(t, r, http.MethodPost, "/search/vsm", map[string]any{"query": "goreeng"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[searchResponse](t, rec)
	require.NotNil(t, resp.Suggestion)
	assert.Equal(t, "goreng", *resp.Suggestion)
}

func TestSearchBIM(t *testing.T) {
	r := newTestRouter(t, "apel pisang apel", "apel jeruk")

	rec := doJSON(t, r, http.MethodPost, "/search/bim", map[string]any{"query": "apel jeruk"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[searchResponse](t, rec)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 2, resp.Results[0].ID)
	require.NotNil(t, resp.Results[0].Score)
	assert.Equal(t, 2.0, *resp.Results[0].Score)
}

func TestClustering_BareArray(t *testing.T) {
	r := newTestRouter(t,
		"kucing hewan lucu",
		"kucing hewan peliharaan",
		"mobil mesin kencang",
		"mobil mesin cepat",
	)

	req := httptest.NewRequest(http.MethodGet, "/clustering", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[[]documentResponse](t, rec)
	require.Len(t, resp, 4)
	for _, d := range resp {
		assert.NotNil(t, d.Cluster)
	}
}

func TestClustering_SingleDocumentHasNoLabel(t *testing.T) {
	r := newTestRouter(t, "nasi goreng")

	req := httptest.NewRequest(http.MethodGet, "/clustering", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[[]documentResponse](t, rec)
	require.Len(t, resp, 1)
	assert.Nil(t, resp[0].Cluster)
	assert.NotContains(t, rec.Body.String(), `"cluster"`)
}

func TestAnalyze(t *testing.T) {
	r := newTestRouter(t, "apple apple orange")

	rec := doJSON(t, r, http.MethodPost, "/analyze", map[string]any{
		"method": "vsm",
		"query":  "apple banana",
		"doc_id": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[analyzeResponse](t, rec)
	assert.Equal(t, "apple apple orange", resp.DocText)
	assert.NotEmpty(t, resp.Steps)
	assert.Equal(t, map[string]int{"apple": 2}, resp.ChartData)
}

func TestAnalyze_UnknownDocument(t *testing.T) {
	r := newTestRouter(t, "nasi goreng")

	rec := doJSON(t, r, http.MethodPost, "/analyze", map[string]any{
		"method": "vsm",
		"query":  "nasi",
		"doc_id": 42,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "document_not_found", decodeBody[errorResponse](t, rec).Code)
}

func TestAnalyze_UnknownMethod(t *testing.T) {
	r := newTestRouter(t, "nasi goreng")

	rec := doJSON(t, r, http.MethodPost, "/analyze", map[string]any{
		"method": "quantum",
		"query":  "nasi",
		"doc_id": 1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_method", decodeBody[errorResponse](t, rec).Code)
}

func TestAddDocument(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/documents", map[string]any{"text": "sate ayam"})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeBody[addDocumentResponse](t, rec)
	assert.Equal(t, "OK", resp.Message)
	assert.Equal(t, 1, resp.Doc.ID)
	assert.Equal(t, "Umum", resp.Doc.Category)
}

func TestAddDocument_EmptyText(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/documents", map[string]any{"text": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeBody[errorResponse](t, rec).Code)
}

func TestAddDocumentsBulk(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/documents/bulk", []map[string]any{
		{"text": "a"},
		{"category": "x"},
		{"text": "b", "category": "y"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[bulkAddResponse](t, rec)
	assert.Equal(t, 2, resp.Added)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "Added 2", resp.Message)
}

func TestAddDocumentsBulk_RejectsNonArray(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/documents/bulk", map[string]any{"text": "a"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorpusStats(t *testing.T) {
	r := newTestRouter(t, "apel dan jeruk", "apel manis")

	req := httptest.NewRequest(http.MethodGet, "/corpus/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[[]termCountResponse](t, rec)
	require.NotEmpty(t, resp)
	assert.Equal(t, "apel", resp[0].Text)
	assert.Equal(t, 2, resp[0].Value)
}

func TestCorpusCategories(t *testing.T) {
	r := newTestRouter(t, "nasi goreng")

	req := httptest.NewRequest(http.MethodGet, "/corpus/categories", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int{"Umum": 1}, decodeBody[map[string]int](t, rec))
}

func TestVoiceSearch_NoProviderConfigured(t *testing.T) {
	r := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "query.m4a")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 2*minAudioSize))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/voice-search", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "transcription_failed", decodeBody[errorResponse](t, rec).Code)
}

func TestVoiceSearch_TinyUploadRejected(t *testing.T) {
	r := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "query.m4a")
	require.NoError(t, err)
	_, err = part.Write([]byte("tiny"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/voice-search", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_audio", decodeBody[errorResponse](t, rec).Code)
}

func TestVoiceSearch_MissingFile(t *testing.T) {
	r := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no audio here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/voice-search", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_audio", decodeBody[errorResponse](t, rec).Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, "nasi goreng")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[healthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Documents)
	assert.Equal(t, "ok", resp.Checks["corpus"])
}
