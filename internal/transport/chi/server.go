// Package chi implements the HTTP surface: request decoding, DTO
// conversion, and the mapping from domain sentinel errors to status codes.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/temu-lab/temudoc/internal/domain"
	"github.com/temu-lab/temudoc/internal/text"
	analysisuc "github.com/temu-lab/temudoc/internal/usecase/analysis"
	documentuc "github.com/temu-lab/temudoc/internal/usecase/document"
	healthuc "github.com/temu-lab/temudoc/internal/usecase/health"
	searchuc "github.com/temu-lab/temudoc/internal/usecase/search"
	statsuc "github.com/temu-lab/temudoc/internal/usecase/stats"
	voiceuc "github.com/temu-lab/temudoc/internal/usecase/voice"
)

// maxAudioSize caps multipart voice uploads.
const maxAudioSize = 10 << 20 // 10MB

// minAudioSize rejects empty recordings before hitting the speech API.
const minAudioSize = 100

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the usecase services to HTTP handlers.
type Server struct {
	search        *searchuc.Service
	analysis      *analysisuc.Service
	documents     *documentuc.Service
	stats         *statsuc.Service
	voice         *voiceuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	analysis *analysisuc.Service,
	documents *documentuc.Service,
	stats *statsuc.Service,
	voice *voiceuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		analysis:  analysis,
		documents: documents,
		stats:     stats,
		voice:     voice,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, "document_not_found"),
		sentinelHandler(domain.ErrInvalidPattern, http.StatusBadRequest, "invalid_pattern"),
		sentinelHandler(domain.ErrEmptyText, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrUnknownMethod, http.StatusBadRequest, "unknown_method"),
		sentinelHandler(domain.ErrEmptyAudio, http.StatusBadRequest, "empty_audio"),
		sentinelHandler(domain.ErrTranscriptionFailed, http.StatusBadGateway, "transcription_failed"),
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/search/regex", s.searchRegex)
	r.Post("/search/boolean", s.searchBoolean)
	r.Post("/search/vsm", s.searchVSM)
	r.Post("/search/feedback", s.searchFeedback)
	r.Post("/search/bim", s.searchBIM)
	r.Get("/clustering", s.clustering)
	r.Post("/analyze", s.analyze)
	r.Post("/documents", s.addDocument)
	r.Post("/documents/bulk", s.addDocumentsBulk)
	r.Get("/corpus/stats", s.corpusStats)
	r.Get("/corpus/categories", s.corpusCategories)
	r.Post("/voice-search", s.voiceSearch)
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", s.metrics)
}

// --- Request/response DTOs ---

// searchRequest is the body of every query-based strategy. The flags only
// affect VSM and its feedback alias.
type searchRequest struct {
	Query       string `json:"query"`
	UseStemming bool   `json:"use_stemming"`
	UseStopword bool   `json:"use_stopword"`
}

type documentResponse struct {
	ID            int      `json:"id"`
	Text          string   `json:"text"`
	Category      string   `json:"category"`
	Score         *float64 `json:"score,omitempty"`
	Cluster       *int     `json:"cluster,omitempty"`
	ProcessedText string   `json:"processed_text,omitempty"`
}

type searchResponse struct {
	Results    []documentResponse `json:"results"`
	Suggestion *string            `json:"suggestion"`
}

type analyzeRequest struct {
	Method string `json:"method"`
	Query  string `json:"query"`
	DocID  int    `json:"doc_id"`
}

type analyzeResponse struct {
	DocText   string         `json:"doc_text"`
	Method    string         `json:"method"`
	Steps     []string       `json:"steps"`
	ChartData map[string]int `json:"chart_data"`
}

type addDocumentRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type addDocumentResponse struct {
	Message string           `json:"message"`
	Doc     documentResponse `json:"doc"`
}

type bulkAddResponse struct {
	Message string `json:"message"`
	Added   int    `json:"added"`
	Total   int    `json:"total"`
}

type termCountResponse struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type transcriptResponse struct {
	Text string `json:"text"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Documents int               `json:"documents"`
	Checks    map[string]string `json:"checks"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Search handlers ---

func (s *Server) searchRegex(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	results, err := s.search.Regex(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: resultsToDTO(results), Suggestion: nil})
}

func (s *Server) searchBoolean(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	results, suggestion, err := s.search.Boolean(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: resultsToDTO(results), Suggestion: suggestion})
}

func (s *Server) searchVSM(w http.ResponseWriter, r *http.Request) {
	s.serveVSM(w, r, s.search.VSM)
}

func (s *Server) searchFeedback(w http.ResponseWriter, r *http.Request) {
	s.serveVSM(w, r, s.search.Feedback)
}

func (s *Server) serveVSM(
	w http.ResponseWriter,
	r *http.Request,
	strategy func(ctx context.Context, query string, opts text.Options) ([]domain.Result, *string, error),
) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	results, suggestion, err := strategy(r.Context(), req.Query, text.Options{
		Stem:            req.UseStemming,
		RemoveStopwords: req.UseStopword,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: resultsToDTO(results), Suggestion: suggestion})
}

func (s *Server) searchBIM(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	results, suggestion, err := s.search.BIM(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: resultsToDTO(results), Suggestion: suggestion})
}

func (s *Server) clustering(w http.ResponseWriter, r *http.Request) {
	results, err := s.search.Cluster(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// A bare array, not the search envelope: there is no query and no suggestion.
	writeJSON(w, http.StatusOK, resultsToDTO(results))
}

// --- Analysis handler ---

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	a, err := s.analysis.Explain(r.Context(), req.Method, req.Query, req.DocID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	steps := a.Steps
	if steps == nil {
		steps = []string{}
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		DocText:   a.DocText,
		Method:    a.Method,
		Steps:     steps,
		ChartData: a.ChartData,
	})
}

// --- Document handlers ---

func (s *Server) addDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.documents.Add(r.Context(), req.Text, req.Category)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, addDocumentResponse{
		Message: "OK",
		Doc:     documentToDTO(domain.NewResult(doc)),
	})
}

func (s *Server) addDocumentsBulk(w http.ResponseWriter, r *http.Request) {
	var req []addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Request body must be a JSON array")
		return
	}

	items := make([]documentuc.BulkItem, len(req))
	for i, item := range req {
		items[i] = documentuc.BulkItem{Text: item.Text, Category: item.Category}
	}

	added, total, err := s.documents.AddBulk(r.Context(), items)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bulkAddResponse{
		Message: fmt.Sprintf("Added %d", added),
		Added:   added,
		Total:   total,
	})
}

// --- Stats handlers ---

func (s *Server) corpusStats(w http.ResponseWriter, r *http.Request) {
	terms, err := s.stats.TopTerms(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]termCountResponse, len(terms))
	for i, t := range terms {
		items[i] = termCountResponse{Text: t.Text, Value: t.Value}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) corpusCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.stats.Categories(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// --- Voice handler ---

func (s *Server) voiceSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioSize); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "empty_audio", "Missing audio file")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size < minAudioSize {
		s.handleDomainError(w, domain.ErrEmptyAudio)
		return
	}

	transcript, err := s.voice.Transcribe(r.Context(), file, header.Filename)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transcriptResponse{Text: transcript})
}

// --- Health and metrics ---

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status:    string(report.Status),
		Documents: report.Documents,
		Checks:    checks,
	})
}

// metrics handles GET /metrics.
func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (searchRequest, bool) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return searchRequest{}, false
	}
	return req, true
}

func documentToDTO(r domain.Result) documentResponse {
	return documentResponse{
		ID:            r.ID,
		Text:          r.Text,
		Category:      r.Category,
		Score:         r.Score,
		Cluster:       r.Cluster,
		ProcessedText: r.ProcessedText,
	}
}

// resultsToDTO always returns a non-nil slice so the JSON is [] and never null.
func resultsToDTO(results []domain.Result) []documentResponse {
	items := make([]documentResponse, len(results))
	for i, r := range results {
		items[i] = documentToDTO(r)
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrInvalidPattern,
		domain.ErrEmptyText,
		domain.ErrUnknownMethod,
		domain.ErrEmptyAudio,
		domain.ErrTranscriptionFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
