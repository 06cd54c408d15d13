package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/swiftremit/backend/docs"
	"github.com/swiftremit/backend/internal/apiclient"
	"github.com/swiftremit/backend/internal/currency"
	"github.com/swiftremit/backend/internal/database"
	mW "github.com/swiftremit/backend/internal/middleware"
	"github.com/swiftremit/backend/internal/services"
	"github.com/swiftremit/backend/internal/wizard"
)

// @title SwiftRemit Backend API
// @version 1.0
// @description API for peer-to-peer international money transfers
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env
	viper.ReadInConfig()        // read .env file

	// Set environment variable prefix
	viper.SetEnvPrefix("")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.BindEnv("fees.percentage", "FEES_PERCENTAGE")
	viper.BindEnv("rates.api_url", "RATES_API_URL")
	viper.BindEnv("app.pay_base_url", "PAY_BASE_URL")
	viper.BindEnv("flow.session_ttl", "FLOW_SESSION_TTL")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "SwiftRemit Backend API"
	docs.SwaggerInfo.Description = "API for peer-to-peer international money transfers"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize services
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	validationHelper := services.NewValidationHelper()
	ratesClient := apiclient.New()
	converter := currency.NewConverter(ratesClient, redisClient)
	feeSchedule := currency.NewFeeSchedule()

	transactionService := services.NewTransactionService(db)
	settlementService := services.NewSettlementService(validationHelper)
	requestService := services.NewRequestService(db, validationHelper)
	authService := services.NewAuthService(db, redisClient, validationHelper)

	sendFlow := services.NewSendFlow(validationHelper, converter, feeSchedule, transactionService, settlementService)
	receiveFlow := services.NewReceiveFlow(validationHelper, requestService)
	kycFlow := services.NewKYCFlow(validationHelper, db)
	signupFlow := services.NewSignupFlow(validationHelper, db)

	sessionStore := wizard.NewStore(redisClient, viper.GetDuration("flow.session_ttl"))
	flowService := services.NewFlowService(sessionStore, sendFlow, receiveFlow, kycFlow, signupFlow)

	// Initialize auth middleware with Redis
	mW.InitAuthMiddleware(redisClient)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Static file server for flag icons
	r.Handle("/static/flags/*", http.StripPrefix("/static/flags/",
		mW.StaticFileServer("./static/flags")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)

		// Payment-link surface, reachable by payers without an account
		r.Get("/requests/{requestID}", requestService.GetRequest)
		r.Get("/requests/{requestID}/qr", requestService.GenerateQR)
		r.Post("/requests/{requestID}/payments", requestService.RecordPayment)

		// Wizard flows. Signup is public; everything else needs a session.
		r.Route("/flows/{flow}", func(r chi.Router) {
			r.Use(flowAuth)

			r.Post("/", flowService.StartFlow)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", flowService.GetFlow)
				r.Delete("/", flowService.Cancel)
				r.Put("/step", flowService.SetStepData)
				r.Post("/advance", flowService.Advance)
				r.Post("/back", flowService.Back)
				r.Post("/submit", flowService.Submit)
			})
		})

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/auth/account", authService.GetUserAccount)

			r.Get("/transactions", transactionService.ListTransactions)
			r.Get("/transactions/{txID}", transactionService.GetTransaction)

			r.Get("/rates/convert", sendFlow.QuoteHandler)

			r.Post("/settlement/convert", settlementService.ConvertTransaction)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}

// flowAuth requires a session for every flow except signup, which has to
// work for users who do not have an account yet.
func flowAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "flow") == "signup" {
			next.ServeHTTP(w, r)
			return
		}
		mW.AuthMiddleware(next).ServeHTTP(w, r)
	})
}
