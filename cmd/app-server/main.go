package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/lakehouse-portfolio/workspace-tools/internal/auth"
	"github.com/lakehouse-portfolio/workspace-tools/internal/workspace"
)

type serverConfig struct {
	ListenAddr string
	Auth       auth.Config
}

func loadConfig() serverConfig {
	return serverConfig{
		ListenAddr: envOrDefault("APP_SERVER_LISTEN_ADDR", ":8080"),
		Auth:       auth.LoadConfig(),
	}
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := loadConfig()

	logger.Info("starting app server",
		"listen", cfg.ListenAddr,
		"mode", cfg.Auth.Mode,
		"explicit_m2m", cfg.Auth.HasClientCredentials(),
	)

	var client workspace.Client
	sdk, err := workspace.NewSDK(workspace.Options{
		Host:         cfg.Auth.Host,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
	})
	if err != nil {
		// Identity still resolves from the forwarded header; only the
		// development fallback and token minting are degraded.
		logger.Warn("workspace client unavailable", "error", err)
	} else {
		client = sdk
	}

	resolver := auth.NewResolver(cfg.Auth, client, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /v1/me", meHandler(resolver))
	mux.HandleFunc("GET /v1/workspace", workspaceHandler(resolver))
	mux.HandleFunc("GET /v1/credentials/serving", servingCredentialHandler(resolver))

	handler := requestLogger(logger)(recoveryHandler(mux))

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func meHandler(resolver *auth.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := resolver.ResolveIdentity(r.Context(), r)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, auth.ErrUnresolvedIdentity) {
				status = http.StatusUnauthorized
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	}
}

func workspaceHandler(resolver *auth.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		// Empty string means unknown; surface that as-is so the frontend
		// can degrade.
		writeJSON(w, http.StatusOK, map[string]any{"url": resolver.WorkspaceURL()})
	}
}

func servingCredentialHandler(resolver *auth.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := resolver.DelegatedServingCredential(r.Context())
		// The token itself never leaves the process boundary here; this
		// endpoint only reports whether serving calls will authenticate.
		writeJSON(w, http.StatusOK, map[string]any{
			"available": token != "",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rr, r)

			logger.Info("request complete",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rr.status,
				"bytes", rr.size,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"request_id", id,
			)
		})
	}
}

func recoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeError(w, http.StatusInternalServerError, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if rr.status == 0 {
		rr.status = http.StatusOK
	}
	n, err := rr.ResponseWriter.Write(b)
	rr.size += n
	return n, err
}
