// Package http serves the engine's JSON API: dashboard reads, record
// mutations, session lifecycle and the assistant endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/assistant"
	"fintrack/internal/finance"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/session"
)

type Server struct {
	http.Server
	store        *finance.Store
	sessions     *session.Manager
	chat         *assistant.Client
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// sessions and chat may be nil; their endpoints then answer 503.
func NewServer(addr string, store *finance.Store, sessions *session.Manager, chat *assistant.Client, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		store:    store,
		sessions: sessions,
		chat:     chat,
		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/breakdown", s.handleBreakdown)
	mux.HandleFunc("GET /api/series", s.handleSeries)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleRemoveExpense)

	mux.HandleFunc("GET /api/income", s.handleListIncome)
	mux.HandleFunc("POST /api/income", s.handleAddIncome)
	mux.HandleFunc("DELETE /api/income/{id}", s.handleRemoveIncome)

	mux.HandleFunc("GET /api/subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("POST /api/subscriptions", s.handleAddSubscription)
	mux.HandleFunc("DELETE /api/subscriptions/{id}", s.handleRemoveSubscription)

	mux.HandleFunc("GET /api/goal", s.handleGetGoal)
	mux.HandleFunc("PUT /api/goal", s.handleSetGoal)
	mux.HandleFunc("GET /api/currency", s.handleGetCurrency)
	mux.HandleFunc("PUT /api/currency", s.handleSetCurrency)

	mux.HandleFunc("GET /api/categories", handleCategories)
	mux.HandleFunc("GET /api/currencies", handleCurrencies)

	mux.HandleFunc("POST /api/session/login", s.handleLogin)
	mux.HandleFunc("POST /api/session/logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.handleSessionStatus)
	mux.HandleFunc("POST /api/session/migration/retry", s.handleRetryMigration)
	mux.HandleFunc("PUT /api/profile", s.handleUpdateProfile)

	mux.HandleFunc("GET /api/assistant/context", s.handleAssistantContext)
	mux.HandleFunc("POST /api/assistant/chat", s.handleAssistantChat)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(clientIP, rateLimited)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = requestLogging(handler)
	if logger != nil {
		handler = applog.RequestIDMiddleware(requestID)(handler)
		handler = applog.Middleware(logger)(handler)
	}

	s.Server.Handler = handler
	return s
}

// Shutdown stops the server and its rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
}
