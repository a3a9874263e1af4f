package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/RbroH99/les-sha-accesories/internal/config"
	"github.com/RbroH99/les-sha-accesories/internal/database"
	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/internal/outbox"
	"github.com/RbroH99/les-sha-accesories/internal/repository"
	"github.com/RbroH99/les-sha-accesories/internal/service"
	"github.com/RbroH99/les-sha-accesories/internal/telegram"
	"github.com/RbroH99/les-sha-accesories/pkg/kafka"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
	"github.com/RbroH99/les-sha-accesories/pkg/middleware"
)

// Server wires the store together: database, repositories, the order
// service, the outbox processor and the HTTP API.
type Server struct {
	config     *config.Config
	logger     logger.Logger
	router     *mux.Router
	httpServer *http.Server

	db           *database.Database
	productRepo  *repository.ProductRepository
	categoryRepo *repository.CategoryRepository
	tagRepo      *repository.TagRepository
	discountRepo *repository.DiscountRepository
	orderRepo    *repository.OrderRepository
	outboxRepo   *repository.OutboxRepository

	orderService *service.OrderService

	outboxProcessor *outbox.Processor
	kafkaProducer   *kafka.Producer
	webhookHandler  *telegram.WebhookHandler
	rateLimiter     *middleware.RateLimiterMiddleware
}

// NewServer builds a fully wired server. Telegram and Kafka are
// optional; each is attached only when its configuration is present.
func NewServer(cfg *config.Config, logger logger.Logger) (*Server, error) {
	db, err := database.New(cfg, logger)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	productRepo := repository.NewProductRepository(db, logger)
	categoryRepo := repository.NewCategoryRepository(db, logger)
	tagRepo := repository.NewTagRepository(db, logger)
	discountRepo := repository.NewDiscountRepository(db, logger)
	orderRepo := repository.NewOrderRepository(db, logger)
	outboxRepo := repository.NewOutboxRepository(db, logger)

	orderService := service.NewOrderService(orderRepo, productRepo, discountRepo, logger)

	outboxProcessor := outbox.NewProcessor(outboxRepo, outbox.ProcessorConfig{
		PollingInterval: 5 * time.Second,
		BatchSize:       10,
		MaxRetries:      3,
	}, logger)

	s := &Server{
		config:          cfg,
		logger:          logger,
		router:          mux.NewRouter(),
		db:              db,
		productRepo:     productRepo,
		categoryRepo:    categoryRepo,
		tagRepo:         tagRepo,
		discountRepo:    discountRepo,
		orderRepo:       orderRepo,
		outboxRepo:      outboxRepo,
		orderService:    orderService,
		outboxProcessor: outboxProcessor,
		rateLimiter: middleware.NewRateLimiterMiddleware(&middleware.RateLimiterConfig{
			IPMaxTokens:       cfg.RateLimit.IPMaxTokens,
			IPRefillRate:      cfg.RateLimit.IPRefillRate,
			TrustForwardedFor: cfg.RateLimit.TrustForwardedFor,
		}, logger),
	}

	if cfg.Telegram.Enabled() {
		client, err := telegram.NewClient(cfg.Telegram.BotToken, logger)

		if err != nil {
			return nil, fmt.Errorf("failed to set up telegram: %w", err)
		}

		s.webhookHandler = telegram.NewWebhookHandler(orderService, client, logger)

		telegramHandler := outbox.NewTelegramHandler(client, cfg.Telegram.ChatID, cfg.Telegram.CountryCode, logger)
		outboxProcessor.RegisterHandler(models.EventOrderCreated, telegramHandler)
	} else {
		logger.Warn("Telegram notifications disabled, no bot token configured")
	}

	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, logger)

		if err != nil {
			return nil, fmt.Errorf("failed to set up kafka producer: %w", err)
		}

		s.kafkaProducer = producer

		kafkaHandler := outbox.NewKafkaHandler(producer, cfg.Kafka.OrdersTopic, logger)
		outboxProcessor.RegisterHandler(models.EventOrderCreated, kafkaHandler)
		outboxProcessor.RegisterHandler(models.EventOrderStatusChanged, kafkaHandler)
	} else {
		logger.Warn("Kafka publishing disabled, no brokers configured")
	}

	s.setupRoutes()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	outboxProcessor.Start()

	return s, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Server listening", "port", s.config.Port, "env", s.config.Env)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its workers
func (s *Server) Shutdown(ctx context.Context) error {
	s.outboxProcessor.Stop()
	s.rateLimiter.Stop()

	if s.kafkaProducer != nil {
		if err := s.kafkaProducer.Close(); err != nil {
			s.logger.Error("Error closing Kafka producer", "error", err)
		}
	}

	if err := s.db.Close(); err != nil {
		s.logger.Error("Error closing database connection", "error", err)
	}

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.rateLimiter.Middleware)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.healthCheckHandler).Methods(http.MethodGet)

	api.HandleFunc("/orders", s.createOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders", s.getOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/stats", s.getOrderStatsHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", s.getOrderByIDHandler).Methods(http.MethodGet)
	// PUT replaces only the status; snapshot fields are immutable
	api.HandleFunc("/orders/{id}", s.updateOrderStatusHandler).Methods(http.MethodPut)
	api.HandleFunc("/orders/{id}", s.deleteOrderHandler).Methods(http.MethodDelete)
	api.HandleFunc("/orders/{id}/status", s.updateOrderStatusHandler).Methods(http.MethodPatch)

	api.HandleFunc("/products", s.createProductHandler).Methods(http.MethodPost)
	api.HandleFunc("/products", s.getProductsHandler).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.getProductByIDHandler).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.updateProductHandler).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", s.deleteProductHandler).Methods(http.MethodDelete)

	api.HandleFunc("/categories", s.createCategoryHandler).Methods(http.MethodPost)
	api.HandleFunc("/categories", s.getCategoriesHandler).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", s.getCategoryByIDHandler).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}", s.updateCategoryHandler).Methods(http.MethodPut)
	api.HandleFunc("/categories/{id}", s.deleteCategoryHandler).Methods(http.MethodDelete)

	api.HandleFunc("/tags", s.createTagHandler).Methods(http.MethodPost)
	api.HandleFunc("/tags", s.getTagsHandler).Methods(http.MethodGet)
	api.HandleFunc("/tags/{id}", s.getTagByIDHandler).Methods(http.MethodGet)
	api.HandleFunc("/tags/{id}", s.updateTagHandler).Methods(http.MethodPut)
	api.HandleFunc("/tags/{id}", s.deleteTagHandler).Methods(http.MethodDelete)

	api.HandleFunc("/discounts", s.createDiscountHandler).Methods(http.MethodPost)
	api.HandleFunc("/discounts", s.getDiscountsHandler).Methods(http.MethodGet)
	api.HandleFunc("/discounts/{id}", s.getDiscountByIDHandler).Methods(http.MethodGet)
	api.HandleFunc("/discounts/{id}", s.updateDiscountHandler).Methods(http.MethodPut)
	api.HandleFunc("/discounts/{id}", s.deleteDiscountHandler).Methods(http.MethodDelete)

	api.HandleFunc("/telegram/webhook", s.telegramWebhookHandler).Methods(http.MethodPost)

	admin := s.router.PathPrefix("/api/admin").Subrouter()
	admin.HandleFunc("/notifications/failed", s.getFailedNotificationsHandler).Methods(http.MethodGet)
	admin.HandleFunc("/notifications/{id}/retry", s.retryNotificationHandler).Methods(http.MethodPost)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Info("Request processed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"remoteAddr", r.RemoteAddr,
		)
	})
}
