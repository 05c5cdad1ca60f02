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

	"revenue-service/internal/config"
	"revenue-service/internal/handlers"
	"revenue-service/internal/kinesis"
	"revenue-service/internal/metrics"
	"revenue-service/internal/reporting"
	"revenue-service/internal/roster"
	"revenue-service/internal/service"
	"revenue-service/internal/storage"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	kinesisService "github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	recorder := metrics.NewRecorder()

	// Initialize storage based on configuration
	var snapshots storage.SnapshotReader
	var memStorage *storage.MemoryStorage
	switch cfg.Storage.Type {
	case config.StorageDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.AWSRegion))
		if err != nil {
			slog.Error("Failed to load AWS config", "error", err)
			os.Exit(1)
		}

		tables := storage.DynamoDBTables{
			Rides:   cfg.Storage.RidesTable,
			Drivers: cfg.Storage.DriversTable,
			Ratings: cfg.Storage.RatingsTable,
		}
		snapshots = storage.NewDynamoDBStorage(dynamodb.NewFromConfig(awsCfg), tables)
		slog.Info("Using DynamoDB storage", "rides_table", tables.Rides, "drivers_table", tables.Drivers)
	case config.StoragePostgres:
		pool, err := storage.ConnectPostgres(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to Postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		snapshots = storage.NewPostgresStorage(pool)
		slog.Info("Using Postgres storage")
	default:
		memStorage = storage.NewMemoryStorage()
		snapshots = memStorage
		slog.Info("Using in-memory storage")
	}

	// Initialize report service
	reports := service.NewReportService(snapshots, service.Settings{
		Pricing:        &cfg.Pricing,
		Location:       cfg.Reports.Location,
		WeekStart:      cfg.Reports.WeekStart,
		TopRoutesLimit: cfg.Reports.TopRoutesLimit,
	})
	reports.SetMetrics(recorder)

	if cfg.Roster.URL != "" {
		reports.SetRosterDirectory(roster.NewClient(cfg.Roster.URL))
		slog.Info("Driver roster directory enabled", "url", cfg.Roster.URL)
	}

	// Initialize ledger publisher if stream name is provided
	if cfg.Ledger.StreamName != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.AWSRegion))
		if err != nil {
			slog.Warn("Failed to load AWS config for Kinesis", "error", err)
		} else {
			streamer := kinesis.NewStreamer(kinesisService.NewFromConfig(awsCfg), cfg.Ledger.StreamName)
			publisher := service.NewLedgerPublisher(reports, streamer, cfg.Ledger.PublishInterval)
			publisher.SetMetrics(recorder)
			publisher.Start()
			defer publisher.Stop()
			slog.Info("Kinesis ledger publishing enabled", "stream", cfg.Ledger.StreamName)
		}
	}

	// Initialize demo ride generator
	var demoGenerator *service.DemoRideGenerator
	var demoHandler *handlers.DemoHandler

	if cfg.Demo.Enabled {
		if memStorage == nil {
			slog.Warn("Demo mode requires in-memory storage, ignoring", "storage_type", cfg.Storage.Type)
		} else {
			demoGenerator = service.NewDemoRideGenerator(memStorage, reporting.NewFareCalculator(&cfg.Pricing), cfg.Demo.Interval, 0)
			if err := demoGenerator.SeedDrivers(ctx, cfg.Demo.SeedDriver); err != nil {
				slog.Error("Failed to seed demo drivers", "error", err)
				os.Exit(1)
			}
			if err := demoGenerator.SeedRides(ctx, cfg.Demo.SeedRides); err != nil {
				slog.Error("Failed to seed demo rides", "error", err)
				os.Exit(1)
			}
			demoHandler = handlers.NewDemoHandler(demoGenerator)
			demoGenerator.Start() // Auto-start in demo mode
			slog.Info("Demo mode enabled", "ride_generation_interval", cfg.Demo.Interval)
		}
	}

	// Initialize HTTP handlers
	httpHandler := handlers.NewHTTPHandler(reports, cfg.Currency)

	// Setup routes
	router := mux.NewRouter()

	// Use path prefix if running behind load balancer
	apiRouter := router
	if cfg.PathPrefix != "" {
		apiRouter = router.PathPrefix(cfg.PathPrefix).Subrouter()
	}
	httpHandler.RegisterRoutes(apiRouter)
	if demoHandler != nil {
		demoHandler.RegisterRoutes(apiRouter)
	}
	router.Handle("/metrics", recorder.Handler()).Methods("GET")

	// Add CORS middleware for frontend
	router.Use(corsMiddleware)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("Revenue Service starting", "port", cfg.Port, "storage_type", cfg.Storage.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Revenue Service failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-c
	slog.Info("Revenue Service shutting down")
	if demoGenerator != nil {
		demoGenerator.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// corsMiddleware adds CORS headers for frontend access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
