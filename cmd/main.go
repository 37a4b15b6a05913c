package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/mstgnz/tokengate/gateway"
	"github.com/mstgnz/tokengate/handler"
	"github.com/mstgnz/tokengate/infra/config"
	"github.com/mstgnz/tokengate/infra/logger"
	"github.com/mstgnz/tokengate/infra/middle"
	"github.com/mstgnz/tokengate/infra/opensearch"
	"github.com/mstgnz/tokengate/infra/response"
	"github.com/mstgnz/tokengate/infra/store"
	"github.com/mstgnz/tokengate/router"
)

var (
	PORT             string
	openSearchClient *opensearch.Client
	openSearchLogger *opensearch.Logger
)

func init() {
	// Load Env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Load Env: %v", err)
	}
	// init conf
	_ = config.App()

	PORT = config.GetEnv("APP_PORT", "9999")

	// Initialize OpenSearch client and logger
	cfg := config.GetAppConfig()
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			openSearchClient = osClient
			openSearchLogger = opensearch.NewLogger(osClient)
			log.Println("OpenSearch logging initialized successfully")
		}
	} else {
		log.Println("OpenSearch logging is disabled")
	}

	logger.InitGlobalLogger(openSearchLogger)
}

func main() {
	cfg := config.GetAppConfig()

	// Gateway client
	gw, err := gateway.New(gateway.Config{
		PublicMerchantID: cfg.PublicMerchantID,
		Currency:         cfg.Currency,
		Environment:      gateway.Environment(cfg.Environment),
		SingleIP:         cfg.SingleIP,
	})
	if err != nil {
		log.Fatalf("Failed to create gateway client: %v", err)
	}
	log.Printf("Gateway client ready: environment=%s currency=%s", gw.Environment(), gw.Currency())

	// Attempt store
	attemptStore, err := store.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		log.Printf("Failed to open attempt store: %v", err)
		log.Println("Continuing without attempt persistence...")
		attemptStore = nil
	}
	if attemptStore != nil {
		defer attemptStore.Close()
		go retentionLoop(attemptStore, cfg.LogRetentionDays)
	}

	// Handlers
	deps := router.Deps{
		Tokens: handler.NewTokenHandler(gw, config.App().Validator, attemptStoreOrNil(attemptStore)),
		Logs:   handler.NewLogsHandler(loggerOrNil(openSearchLogger), attemptReaderOrNil(attemptStore)),
		Health: handler.NewHealthHandler(attemptStore, openSearchClient, gw),
	}

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middleware.Timeout(60 * time.Second))

	// Security Middleware
	rateLimiter := middle.NewRateLimiter()
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.IPWhitelistMiddleware())
	r.Use(middle.RateLimitMiddleware(rateLimiter))
	r.Use(middle.RequestValidationMiddleware())

	// OpenSearch Logging Middleware
	if openSearchLogger != nil {
		r.Use(middle.TokenLoggingMiddleware(openSearchLogger))
		r.Use(middle.LoggingStatsMiddleware(openSearchLogger))
		log.Println("Token logging middleware enabled")
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Origin", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "Content-Length", "Access-Control-Allow-Origin"},
		AllowCredentials: true,
		MaxAge:           300, // Preflight cache time (second)
	}))

	router.Routes(r, deps)

	// Not Found
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusNotFound, response.Response{Success: false, Message: "Not Found"})
	})

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run your HTTP server in a goroutine
	go func() {
		server := &http.Server{
			Addr:              fmt.Sprintf(":%s", PORT),
			Handler:           r,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 60 * time.Second,
		}
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err.Error())
		}
	}()

	log.Println("API is running on", PORT)

	// Block until a signal is received
	<-ctx.Done()

	log.Println("API is shutting on", PORT)
	log.Println("Shutting down gracefully...")
}

// retentionLoop prunes old attempt rows once a day.
func retentionLoop(s *store.SQLiteStore, retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed, err := s.DeleteOlderThan(time.Duration(retentionDays) * 24 * time.Hour)
		if err != nil {
			log.Printf("Attempt retention cleanup failed: %v", err)
			continue
		}
		if removed > 0 {
			log.Printf("Attempt retention cleanup removed %d rows", removed)
		}
	}
}

// A nil *SQLiteStore inside a non-nil interface would dodge the
// handlers' nil checks, so map nil pointers to nil interfaces.

func attemptStoreOrNil(s *store.SQLiteStore) handler.AttemptStore {
	if s == nil {
		return nil
	}
	return s
}

func attemptReaderOrNil(s *store.SQLiteStore) handler.AttemptReader {
	if s == nil {
		return nil
	}
	return s
}

func loggerOrNil(l *opensearch.Logger) handler.LoggerInterface {
	if l == nil {
		return nil
	}
	return l
}
