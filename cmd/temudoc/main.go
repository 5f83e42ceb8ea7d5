package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/temu-lab/temudoc/internal/config"
	logpkg "github.com/temu-lab/temudoc/internal/logger"
	"github.com/temu-lab/temudoc/internal/metrics"
	"github.com/temu-lab/temudoc/internal/repository/corpus"
	"github.com/temu-lab/temudoc/internal/text"
	chiTransport "github.com/temu-lab/temudoc/internal/transport/chi"
	speechTransport "github.com/temu-lab/temudoc/internal/transport/openai"
	analysisuc "github.com/temu-lab/temudoc/internal/usecase/analysis"
	documentuc "github.com/temu-lab/temudoc/internal/usecase/document"
	healthuc "github.com/temu-lab/temudoc/internal/usecase/health"
	searchuc "github.com/temu-lab/temudoc/internal/usecase/search"
	statsuc "github.com/temu-lab/temudoc/internal/usecase/stats"
	voiceuc "github.com/temu-lab/temudoc/internal/usecase/voice"
	"github.com/temu-lab/temudoc/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting temudoc API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("language", cfg.Preprocess.Language),
	)

	// The corpus repository is the only stateful component: constructed once
	// here, mutated only through document insertion.
	repo := corpus.New()
	if cfg.Corpus.SeedPath != "" {
		seeded, err := corpus.LoadSeed(cfg.Corpus.SeedPath, repo)
		if err != nil {
			logger.Fatal("Failed to seed corpus", zap.Error(err))
		}
		logger.Info("Corpus seeded", zap.Int("documents", seeded))
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	preprocessor := text.NewPreprocessor(text.Language(cfg.Preprocess.Language))
	corrector := text.NewCorrector(cfg.Search.CorrectionCutoff)

	// Speech provider is optional; without an API key voice search answers 502.
	var transcriber *speechTransport.Transcriber
	if cfg.Speech.APIKey != "" {
		transcriber = speechTransport.NewTranscriber(&speechTransport.Config{
			APIKey:   cfg.Speech.APIKey,
			BaseURL:  cfg.Speech.BaseURL,
			Model:    cfg.Speech.Model,
			Language: cfg.Speech.Language,
			Logger:   logger,
		})
		logger.Info("Speech provider configured",
			zap.String("model", cfg.Speech.Model),
			zap.String("language", cfg.Speech.Language),
		)
	}

	// Create use case services
	searchSvc := searchuc.New(repo, preprocessor, corrector, searchuc.Config{
		Clusters:   cfg.Search.Clusters,
		KMeansRuns: cfg.Search.KMeansRuns,
		KMeansSeed: cfg.Search.KMeansSeed,
	})
	analysisSvc := analysisuc.New(repo, searchSvc)
	documentSvc := documentuc.New(repo)
	statsSvc := statsuc.New(repo, preprocessor)

	// Pass nil interface (not typed nil pointer!) if speech is not configured.
	var speechChecker healthuc.SpeechChecker
	var voiceTranscriber voiceuc.Transcriber
	if transcriber != nil {
		speechChecker = transcriber
		voiceTranscriber = transcriber
	}
	voiceSvc := voiceuc.New(voiceTranscriber)
	healthSvc := healthuc.New(repo, speechChecker)

	// Create chi server
	server := chiTransport.NewServer(
		searchSvc, analysisSvc, documentSvc, statsSvc, voiceSvc, healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
