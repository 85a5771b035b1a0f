package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osse101/SpinVault_Go/internal/database"
	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/handler"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/metrics"
	"github.com/osse101/SpinVault_Go/internal/spin"
)

// Config holds the HTTP surface settings
type Config struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	ServiceName    string
	Environment    string
}

// Deps are the services behind the routes. DBPool is nil for the memory
// store; Vault and Node are nil when vault operations are disabled.
type Deps struct {
	DBPool   database.Pool
	Node     handler.NodeChecker
	Claims   handler.ClaimService
	Balances handler.BalanceService
	Spins    spin.Service
	Vault    handler.VaultExecutor
	Accounts handler.AccountDeriver
	Detector *SuspiciousActivityDetector
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(cfg Config, deps Deps) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewRouter(cfg, deps),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// NewRouter builds the route tree
func NewRouter(cfg Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	detector := deps.Detector
	if detector == nil {
		detector = NewSuspiciousActivityDetector()
	}

	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(SecurityHeadersMiddleware())
	r.Use(loggingMiddleware)
	r.Use(AuthMiddleware(cfg.APIKey, cfg.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(cfg.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(deps.DBPool, deps.Node))
	r.Get("/version", handler.HandleVersion(cfg.ServiceName, cfg.Environment))
	r.Handle("/metrics", promhttp.Handler())

	claims := handler.NewClaimHandler(deps.Claims)
	balances := handler.NewBalanceHandler(deps.Balances)
	spins := handler.NewSpinHandler(deps.Spins)
	adminMetrics := handler.NewAdminMetricsHandler(nil)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/claims", claims.HandleClaim)
		r.Post("/claims/onchain", claims.HandleRecordOnChainClaim)
		r.Get("/claimable", claims.HandleListClaimable)

		r.Post("/spins", spins.HandleSpin)

		r.Get("/balance", balances.HandleGetBalance)
		r.Post("/accounts", balances.HandleOpenAccount)

		if deps.Vault != nil {
			vault := handler.NewVaultHandler(deps.Vault, deps.Accounts)
			r.Route("/vault", func(r chi.Router) {
				r.Post("/deposit", vault.HandleOperation(domain.OperationDeposit))
				r.Post("/withdraw", vault.HandleOperation(domain.OperationWithdraw))
				r.Post("/claim", vault.HandleOperation(domain.OperationClaim))
				r.Get("/addresses", vault.HandleAddresses)
			})
		} else {
			logger.Info(LogMsgVaultDisabled)
		}

		r.Route("/admin", func(r chi.Router) {
			r.Get("/metrics", adminMetrics.HandleGetMetrics)
		})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Probes and scrapes are not logged
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		// Keep a caller-supplied request id so logs join up across services
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = logger.GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	logger.Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	logger.Info(LogMsgServerStopping)
	return s.httpServer.Shutdown(ctx)
}
