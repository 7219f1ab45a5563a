package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/codes"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/config"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/handler"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/ledger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/logger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/metrics"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/remote"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/service"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/store"
)

func main() {
	log := logger.NewLogger("offline-ledger")
	log.Info("Starting offline ledger service...")

	cfg := config.Load()

	database, err := sql.Open("sqlite3", cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("Failed to open local database")
	}
	defer database.Close()

	if err := database.Ping(); err != nil {
		log.WithError(err).Fatal("Failed to ping local database")
	}

	slots := store.NewEncodedStore(database)
	if err := slots.Init(context.Background()); err != nil {
		log.WithError(err).Fatal("Failed to initialize slot store")
	}
	log.Info("Local store ready")

	// Repositories
	gen := codes.NewGenerator()
	transactionRepo := ledger.NewTransactionRepository(slots, gen)
	loanRepo := ledger.NewLoanRepository(slots, gen)

	// Remote system of record
	systemOfRecord := remote.NewClient(cfg.RemoteBaseURL, cfg.RemoteAPIKey, cfg.RecordTimeout)

	// Services
	serviceMetrics := metrics.NewMetrics("ledger")
	walletService := service.NewWalletService(transactionRepo)
	loanService := service.NewLoanService(loanRepo)
	scoreService := service.NewCreditScoreService(transactionRepo)
	syncService := service.NewSyncService(transactionRepo, loanRepo, systemOfRecord, cfg.RecordTimeout, log, serviceMetrics)

	// HTTP surface
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware(log), metrics.Middleware(serviceMetrics))

	api := router.Group("/api")
	handler.NewWalletHandler(walletService, scoreService, syncService).Register(api)
	handler.NewLoanHandler(loanService, syncService).Register(api)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Background reconciliation loop, standing in for the connectivity-change
	// trigger: every interval, retry whatever is still pending.
	syncCtx, stopSync := context.WithCancel(context.Background())
	if cfg.SyncInterval > 0 {
		go runBackgroundSync(syncCtx, syncService, cfg.SyncInterval, log)
	}

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down...")
	stopSync()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("Stopped")
}

func runBackgroundSync(ctx context.Context, syncService service.SyncService, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := syncService.SyncTransactions(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("Background wallet sync failed")
			}
			if _, err := syncService.SyncLoans(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("Background loan sync failed")
			}
		}
	}
}
