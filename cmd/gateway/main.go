package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"textloop-gateway/internal/application"
	"textloop-gateway/internal/infrastructure/api"
	"textloop-gateway/internal/infrastructure/cache"
	gatewaymiddleware "textloop-gateway/internal/infrastructure/middleware"
	"textloop-gateway/internal/infrastructure/platform"
	"textloop-gateway/internal/infrastructure/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Get configuration from environment
	platformURL := os.Getenv("PLATFORM_API_URL")
	if platformURL == "" {
		platformURL = "http://localhost:3000/api"
	}

	dashboardURL := os.Getenv("DASHBOARD_URL")
	if dashboardURL == "" {
		dashboardURL = "http://localhost:5173"
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	sessionTTL := 24 * time.Hour
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			sessionTTL = time.Duration(hours) * time.Hour
		}
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(os.Getenv("MONGODB_DATABASE"))

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	// Initialize infrastructure (implementations)
	sessionStore := repository.NewSessionRepository(db, sessionTTL)
	queryCache := cache.NewRedisQueryCache(rdb, logger)
	platformClient := platform.NewClient(platformURL, sessionStore, logger)

	// Initialize application services
	campaignService := application.NewCampaignService(platformClient, queryCache, logger)
	contactService := application.NewContactService(platformClient, queryCache, logger)
	automationService := application.NewAutomationService(platformClient, queryCache, logger)
	templateService := application.NewTemplateService(platformClient, queryCache, logger)
	accountService := application.NewAccountService(platformClient, queryCache, logger)
	handshakeService := application.NewHandshakeService(platformClient, sessionStore, logger)

	// Initialize handlers
	authHandler := api.NewAuthHandler(handshakeService, sessionStore, dashboardURL, logger)
	campaignsHandler := api.NewCampaignsHandler(campaignService, logger)
	contactsHandler := api.NewContactsHandler(contactService, logger)
	automationsHandler := api.NewAutomationsHandler(automationService, logger)
	accountHandler := api.NewAccountHandler(accountService, templateService, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(gatewaymiddleware.SecurityHeadersMiddleware())
	r.Use(gatewaymiddleware.MetricsMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{dashboardURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	r.Use(gatewaymiddleware.SessionMiddleware(sessionStore, logger))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.RenderData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// OAuth callback and session routes
	r.Route("/auth", func(r chi.Router) {
		r.Get("/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// Dashboard API
	r.Route("/api/dashboard", func(r chi.Router) {
		r.Route("/campaigns", campaignsHandler.Routes)
		r.Route("/contacts", contactsHandler.Routes)
		r.Route("/automations", automationsHandler.Routes)
		r.Get("/audiences", contactsHandler.Audiences)
		accountHandler.Routes(r)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Str("platformURL", platformURL).Msg("Starting dashboard gateway")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
