package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/feeledger/internal/auth"
	"github.com/mmynk/feeledger/internal/billing"
	"github.com/mmynk/feeledger/internal/calculator"
	"github.com/mmynk/feeledger/internal/calendar"
	"github.com/mmynk/feeledger/internal/config"
	"github.com/mmynk/feeledger/internal/metrics"
	"github.com/mmynk/feeledger/internal/middleware"
	"github.com/mmynk/feeledger/internal/service"
	"github.com/mmynk/feeledger/internal/storage/sqlite"
	"github.com/mmynk/feeledger/pkg/api"
	"github.com/mmynk/feeledger/pkg/logging"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	tolerances, err := cfg.Tolerances()
	if err != nil {
		slog.Error("Invalid tolerances", "error", err)
		os.Exit(1)
	}
	mode, err := calculator.ParseDistributionMode(cfg.DistributionMode)
	if err != nil {
		slog.Error("Invalid distribution mode", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	m := metrics.New()
	cal := calendar.New(cfg.SchoolYear)
	engine := billing.New(store, cal,
		billing.WithTolerances(tolerances),
		billing.WithDistributionMode(mode),
		billing.WithMetrics(m),
	)
	slog.Info("Billing engine ready",
		"school_year", cal.Year(),
		"first_month", cal.FirstRegular(),
		"deposit_month", cal.DepositMonth(),
		"distribution_mode", mode,
	)

	// Auth runs first so logs and metrics see the operator.
	var interceptors []connect.Interceptor
	if cfg.AuthEnabled() {
		interceptors = append(interceptors, middleware.RequireAuth(auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)))
	} else {
		slog.Warn("JWT_SECRET not set, RPCs are not authenticated")
	}
	interceptors = append(interceptors, middleware.LoggingInterceptor(), middleware.MetricsInterceptor(m))
	opts := connect.WithInterceptors(interceptors...)

	mux := http.NewServeMux()

	// Register Connect services
	billingPath, billingHandler := api.NewBillingServiceHandler(service.NewBillingService(engine), opts)
	mux.Handle(billingPath, billingHandler)

	studentPath, studentHandler := api.NewStudentServiceHandler(service.NewStudentService(store), opts)
	mux.Handle(studentPath, studentHandler)

	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(corsMiddleware(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", srv.Addr, "url", "http://localhost"+srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped gracefully")
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
