package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"sitepay-be/internal/config"
	"sitepay-be/internal/db"
	"sitepay-be/internal/exchange"
	"sitepay-be/internal/logger"
	"sitepay-be/internal/metrics"
	"sitepay-be/internal/middleware"
	"sitepay-be/internal/order"
	"sitepay-be/internal/payment"
	"sitepay-be/internal/payment/webhook"
	"sitepay-be/internal/utils"

	"go.uber.org/zap"
)

// notifyDedupTTL bounds how long a sent order notification is remembered.
const notifyDedupTTL = 24 * time.Hour

var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := initDBFunc(cfg)
	defer database.Close()

	handler, rates := newServer(cfg, database)

	scheduler := exchange.NewScheduler(rates, log)
	if err := scheduler.Start(cfg.RatesRefresh); err != nil {
		return fmt.Errorf("schedule exchange rate refresh: %w", err)
	}
	defer scheduler.Stop()

	addr := ":" + cfg.AppPort
	log.Info("payment server running", zap.String("addr", addr))
	return startServerFunc(addr, handler)
}

// newServer wires repositories, gateways and services into the HTTP handler.
func newServer(cfg *config.Config, database *sql.DB) (http.Handler, *exchange.RateTable) {
	log := logger.L()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("unknown timezone, using local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.Local
	}

	dedup, err := payment.NewDeduper(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, notifyDedupTTL)
	if err != nil {
		log.Warn("redis unavailable, deduplicating notifications in memory", zap.Error(err))
	}

	rates := exchange.NewRateTable(exchange.NewRepository(database))

	gateways := payment.NewRegistry(cfg.Gateways, payment.Options{
		PublicBaseURL: cfg.PublicBaseURL,
		Location:      loc,
		Rates:         rates,
	})

	orderSvc := order.NewService(order.NewRepository(database))
	paymentSvc := payment.NewService(gateways, payment.NewRepository(database), orderSvc, dedup, cfg.Languages)

	return setupRouter(webhook.NewWebhookHandler(paymentSvc), []byte(cfg.SecretKey)), rates
}

func setupRouter(h *webhook.Handler, secret []byte) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, metrics.Callbacks.Snapshot())
	})

	// gateways notify with either method
	mux.HandleFunc("POST /payment/{gateway}/callback", h.CallbackHandler)
	mux.HandleFunc("GET /payment/{gateway}/callback", h.CallbackHandler)

	mux.Handle("GET /payment/{gateway}/checkout/{orderID}",
		middleware.AuthMiddleware(secret)(http.HandlerFunc(h.CheckoutHandler)))

	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CustomerContextMiddleware(secret)(handler)
	handler = logger.RequestIDMiddleware(handler)
	return handler
}
