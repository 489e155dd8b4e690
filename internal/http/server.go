// Package http exposes the JSON API: auth, transaction and planning
// CRUD, the insights endpoints and the websocket upgrade path.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"savvy/internal/auth"
	"savvy/internal/cache"
	"savvy/internal/log"
	"savvy/internal/middleware/ratelimit"
	"savvy/internal/middleware/security"
	"savvy/internal/middleware/trace"
	"savvy/internal/realtime"
	"savvy/internal/services"
)

// Config carries the listener address and per-client rate limit.
type Config struct {
	Addr              string
	RequestsPerMinute int
	DefaultCurrency   string
}

type Server struct {
	http.Server

	users        *services.UserService
	transactions *services.TransactionService
	planning     *services.PlanningService
	hub          *realtime.Hub
	logger       *log.Logger

	defaultCurrency string

	// Insight payloads are cached per user, keyed "<user>:<view>:<window>".
	// Mutations drop every entry under the user's prefix.
	overviewCache *cache.LRUCache[overviewResponse]
	chartsCache   *cache.LRUCache[chartsResponse]
	cacheManager  *cache.Manager

	limiter   *ratelimit.Limiter
	extractor *security.Extractor

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a server ready for
// ListenAndServe.
func NewServer(
	cfg Config,
	users *services.UserService,
	transactions *services.TransactionService,
	planning *services.PlanningService,
	tokens *auth.TokenManager,
	hub *realtime.Hub,
	logger *log.Logger,
) *Server {
	limitCfg := ratelimit.DefaultConfig()
	if cfg.RequestsPerMinute > 0 {
		limitCfg.RequestsPerMinute = cfg.RequestsPerMinute
	}

	s := &Server{
		users:           users,
		transactions:    transactions,
		planning:        planning,
		hub:             hub,
		logger:          logger.WithComponent(log.ComponentHTTP),
		defaultCurrency: cfg.DefaultCurrency,
		overviewCache:   cache.NewLRUCache[overviewResponse](200, 5*time.Minute),
		chartsCache:     cache.NewLRUCache[chartsResponse](200, 5*time.Minute),
		cacheManager:    cache.NewManager(),
		limiter:         ratelimit.NewLimiter(limitCfg),
		extractor:       security.NewExtractor(),
	}
	s.cacheManager.Register(s.overviewCache)
	s.cacheManager.Register(s.chartsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	authed := auth.Middleware(tokens)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }

	mux.Handle("POST /api/transactions", protect(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions", protect(s.handleListTransactions))
	mux.Handle("GET /api/transactions/{id}", protect(s.handleGetTransaction))
	mux.Handle("PUT /api/transactions/{id}", protect(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", protect(s.handleDeleteTransaction))

	mux.Handle("POST /api/budgets", protect(s.handleCreateBudget))
	mux.Handle("GET /api/budgets", protect(s.handleListBudgets))
	mux.Handle("PUT /api/budgets/{id}", protect(s.handleUpdateBudget))
	mux.Handle("DELETE /api/budgets/{id}", protect(s.handleDeleteBudget))

	mux.Handle("POST /api/goals", protect(s.handleCreateGoal))
	mux.Handle("GET /api/goals", protect(s.handleListGoals))
	mux.Handle("PUT /api/goals/{id}", protect(s.handleUpdateGoal))
	mux.Handle("DELETE /api/goals/{id}", protect(s.handleDeleteGoal))

	mux.Handle("GET /api/insights/overview", protect(s.handleInsightsOverview))
	mux.Handle("GET /api/insights/charts", protect(s.handleInsightsCharts))
	mux.Handle("GET /api/insights/health", protect(s.handleInsightsHealth))
	mux.Handle("GET /api/insights/recommendations", protect(s.handleInsightsRecommendations))
	mux.Handle("GET /api/insights/milestones", protect(s.handleInsightsMilestones))
	mux.Handle("GET /api/insights/forecast", protect(s.handleInsightsForecast))
	mux.Handle("GET /api/budgets/status", protect(s.handleBudgetStatus))
	mux.Handle("GET /api/charts/{series}", protect(s.handleChartSeries))

	mux.Handle("GET /api/ws", protect(hub.ServeWS))

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.chain(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// chain applies the outer middleware: request tracing, security
// headers, then rate limiting. Auth wraps individual routes instead so
// health checks and login stay reachable.
func (s *Server) chain(h http.Handler) http.Handler {
	tracer := trace.NewMiddleware(s.extractor.ClientIP, s.logger)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	h = log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) })(h)
	h = log.Middleware(s.logger)(h)
	h = s.limiter.Middleware(s.extractor.ClientIP)(h)
	h = headers.Middleware(h)
	h = tracer.Middleware(h)
	return h
}

// invalidateInsights drops the user's cached insight payloads after any
// write to their data.
func (s *Server) invalidateInsights(userID string) {
	s.overviewCache.DeletePrefix(userID + ":")
	s.chartsCache.DeletePrefix(userID + ":")
}

// Shutdown stops the HTTP listener, the cache janitor and the rate
// limiter. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
