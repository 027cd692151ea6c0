package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/exploria-travel/auth-service/internal/database"
	"github.com/exploria-travel/auth-service/internal/handlers"
	"github.com/exploria-travel/auth-service/internal/routes"
	"github.com/exploria-travel/auth-service/internal/services"
	pkghttp "github.com/exploria-travel/auth-service/pkg/http"
	pkglogger "github.com/exploria-travel/auth-service/pkg/logger"
)

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	logger *slog.Logger
}

// NewTestServer initializes a complete HTTP server against a real database.
// No ID-token verifier is wired; the tests exercise the trust-the-uid mode.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	accountRepo, authEventRepo := InitializeRepositories(db)

	auditLogger := pkglogger.NewAuditLogger(logger)
	journalService := services.NewJournalService(authEventRepo, logger, auditLogger)
	accountService := services.NewAccountService(accountRepo, journalService, nil, logger, auditLogger)
	portalService := services.NewPortalService(accountRepo, journalService, nil, logger)

	ipConfig := &pkghttp.IPConfig{}
	authHandler := handlers.NewAuthHandler(accountService, ipConfig)
	portalHandler := handlers.NewPortalHandler(portalService, ipConfig)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(30 * time.Second))
	routes.RegisterRoutes(router, authHandler, portalHandler)

	return &TestServer{
		Server: httptest.NewServer(router),
		DB:     db,
		logger: logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// PostJSON sends a JSON POST and decodes the response envelope
func (ts *TestServer) PostJSON(path string, body interface{}) (int, pkghttp.Envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, pkghttp.Envelope{}, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	resp, err := http.Post(ts.Server.URL+path, "application/json", &buf)
	if err != nil {
		return 0, pkghttp.Envelope{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}

// GetJSON sends a GET and decodes the response envelope
func (ts *TestServer) GetJSON(path string) (int, pkghttp.Envelope, error) {
	resp, err := http.Get(ts.Server.URL + path)
	if err != nil {
		return 0, pkghttp.Envelope{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}

func decodeEnvelope(resp *http.Response) (int, pkghttp.Envelope, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, pkghttp.Envelope{}, fmt.Errorf("failed to read response: %w", err)
	}

	var env pkghttp.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return resp.StatusCode, pkghttp.Envelope{}, fmt.Errorf("failed to decode envelope %q: %w", raw, err)
	}

	return resp.StatusCode, env, nil
}

// DataField digs a string field out of an envelope's data payload
func DataField(env pkghttp.Envelope, field string) (string, bool) {
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		return "", false
	}
	val, ok := data[field].(string)
	return val, ok
}
