package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fuel-station/internal/handlers"
	"fuel-station/internal/kinesis"
	"fuel-station/internal/service"
	"fuel-station/internal/storage"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	kinesisService "github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/gorilla/mux"
)

func main() {
	// Setup structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Get configuration from environment
	port := getEnv("PORT", "8082")
	demoMode := getEnv("DEMO_MODE", "false") == "true"
	demoInterval := getEnvDuration("DEMO_INTERVAL", "10s")
	storageType := getEnv("STORAGE_TYPE", "memory")
	fuelPrice := getEnvFloat("FUEL_PRICE", service.DefaultPricingConfig().FuelPricePerLiter)
	region := getEnv("AWS_REGION", "us-west-2")

	pricing, err := service.NewPricingConfig(fuelPrice)
	if err != nil {
		slog.Error("Invalid fuel price", "fuel_price", fuelPrice, "error", err)
		os.Exit(1)
	}

	// Initialize storage based on configuration
	var customerStorage storage.CustomerStorage
	switch storageType {
	case "dynamodb":
		tableName := getEnv("DYNAMODB_CUSTOMERS_TABLE", "station-customers")

		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
		if err != nil {
			slog.Error("Failed to load AWS config", "error", err)
			os.Exit(1)
		}

		dynamoClient := dynamodb.NewFromConfig(cfg)
		customerStorage = storage.NewDynamoDBCustomerStorage(dynamoClient, tableName)
		slog.Info("Using DynamoDB storage", "table_name", tableName)
	default:
		customerStorage = storage.NewMemoryCustomerStorage()
		slog.Info("Using in-memory storage")
	}

	station := service.NewStationService(customerStorage, pricing)

	// Initialize Kinesis streamer if stream name is provided
	if streamName := getEnv("KINESIS_STATION_EVENTS_STREAM", ""); streamName != "" {
		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
		if err != nil {
			slog.Warn("Failed to load AWS config for Kinesis", "error", err)
		} else {
			kinesisClient := kinesisService.NewFromConfig(cfg)
			station.SetKinesisStreamer(kinesis.NewStreamer(kinesisClient, streamName))
			slog.Info("Kinesis station event streaming enabled", "stream", streamName)
		}
	}

	httpHandler := handlers.NewHTTPHandler(station)

	// Setup routes
	router := mux.NewRouter()
	apiRouter := router

	// Use path prefix if running behind load balancer
	if pathPrefix := os.Getenv("PATH_PREFIX"); pathPrefix != "" {
		apiRouter = router.PathPrefix(pathPrefix).Subrouter()
	}
	httpHandler.RegisterRoutes(apiRouter)

	// Demo traffic generator is available in demo mode
	var demoGenerator *service.DemoTrafficGenerator
	if demoMode {
		demoGenerator = service.NewDemoTrafficGenerator(station, demoInterval)
		handlers.NewDemoHandler(demoGenerator).RegisterRoutes(apiRouter)
		demoGenerator.Start() // Auto-start in demo mode
		slog.Info("Demo mode enabled", "visit_interval", demoInterval)
	}

	// Add CORS middleware for frontend
	router.Use(corsMiddleware)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Setup graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("Fuel Station starting", "port", port, "fuel_price", pricing.FuelPricePerLiter, "storage", storageType)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Fuel Station failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-c
	slog.Info("Fuel Station shutting down")
	if demoGenerator != nil {
		demoGenerator.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration gets duration from environment variable
func getEnvDuration(key, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration, using default", "provided", value, "default", defaultValue, "error", err)
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

// getEnvFloat gets a float from environment variable
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("Invalid number, using default", "key", key, "provided", value, "default", defaultValue, "error", err)
		return defaultValue
	}
	return f
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
