package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/ChasingCode34/trip-sync/internal/app"
	"github.com/ChasingCode34/trip-sync/internal/config"
	"github.com/ChasingCode34/trip-sync/internal/extractor"
	"github.com/ChasingCode34/trip-sync/internal/handler"
	"github.com/ChasingCode34/trip-sync/internal/mailer"
	"github.com/ChasingCode34/trip-sync/internal/notifier"
	internalRedis "github.com/ChasingCode34/trip-sync/internal/redis"
	"github.com/ChasingCode34/trip-sync/internal/repository/postgres"
	"github.com/ChasingCode34/trip-sync/internal/service"
)

func main() {
	// Load variables from a .env file into the environment, if present.
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	server := wireServer(ctx, db, redisClient, nrApp, cfg)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(ctx context.Context, db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	loc, err := time.LoadLocation(cfg.Matching.Timezone)
	if err != nil {
		log.Printf("unknown timezone %q, using local: %v", cfg.Matching.Timezone, err)
		loc = time.Local
	}

	// Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	rideRepo := postgres.NewRideRepository(db)

	// External collaborators: configured vs degraded, decided once here.
	var m mailer.Mailer
	if cfg.SMTP.User != "" && cfg.SMTP.Pass != "" {
		m = mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.User, cfg.SMTP.Pass)
	} else {
		log.Println("SMTP not configured; verification codes will be logged")
		m = mailer.NewDevMailer()
	}

	var n notifier.Notifier
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" && cfg.Twilio.FromNumber != "" {
		n = notifier.NewTwilioNotifier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
	} else {
		log.Println("Twilio not configured; outbound SMS will be logged")
		n = notifier.NewLogNotifier()
	}

	var ext extractor.Extractor
	switch cfg.Extractor.Mode {
	case "genai":
		genaiExt, err := extractor.NewGenAI(ctx, cfg.Extractor.GenAIKey, cfg.Extractor.GenAIModel, loc)
		if err != nil {
			log.Printf("GenAI extractor unavailable, ride requests will be rejected: %v", err)
			ext = extractor.Disabled{}
		} else {
			ext = genaiExt
		}
	case "off":
		ext = extractor.Disabled{}
	default:
		ext = extractor.NewRules(loc)
	}

	// Services.
	matchingService := service.NewMatchingService(rideRepo, userRepo, lockStore, n, cfg.Matching.Window)
	rideService := service.NewRideService(rideRepo, userRepo, matchingService, ext, n)
	onboardingService := service.NewOnboardingService(userRepo, m, cfg.Verification.AllowedEmailDomains)
	conversationService := service.NewConversationService(userRepo, onboardingService, rideService, cacheStore)

	// Handlers.
	smsHandler := handler.NewSMSHandler(conversationService)
	userHandler := handler.NewUserHandler(userRepo)
	rideHandler := handler.NewRideHandler(rideRepo)

	router := app.NewRouter(app.RouterDeps{
		SMSHandler:  smsHandler,
		UserHandler: userHandler,
		RideHandler: rideHandler,
		RedisClient: redisClient,
		NewRelicApp: nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
