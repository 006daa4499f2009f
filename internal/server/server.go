package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cafe-orders/internal/config"
	"cafe-orders/internal/database"
	custommiddleware "cafe-orders/internal/middleware"
	"cafe-orders/internal/repository"
	"cafe-orders/internal/service"
	"cafe-orders/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	dbService   *database.Service
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, dbService *database.Service) *Server {
	db := dbService.DB()

	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(dbService.Health(r.Context()))
	})

	// Redis backs the order placement rate limit
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	txManager := repository.NewTxManager(db)

	// Services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)
	productService := service.NewProductService(productRepo)
	inventoryService := service.NewInventoryService(productRepo, txManager)
	orderService := service.NewOrderService(orderRepo, userRepo, inventoryService, txManager)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo)
	shipmentService := service.NewShipmentService(shipmentRepo, orderRepo)
	reportService := service.NewReportService(orderRepo, userRepo, productRepo, paymentRepo, shipmentRepo)

	// Handlers
	userHandler := transport.NewUserHandler(userService, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	inventoryHandler := transport.NewInventoryHandler(inventoryService, logger)
	paymentHandler := transport.NewPaymentHandler(paymentService, logger)
	shipmentHandler := transport.NewShipmentHandler(shipmentService, logger)
	reportHandler := transport.NewReportHandler(reportService, logger)

	// Route middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)
	orderRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.OrdersPerMinute,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:orders",
	}, logger)

	userHandler.RegisterRoutes(router, authMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware, orderRateLimit)
	inventoryHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	paymentHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	shipmentHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	reportHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		dbService:   dbService,
		redisClient: redisClient,
	}

	return server
}

// DB exposes the pool, used by the migration runner at startup.
func (s *Server) DB() *sql.DB {
	return s.dbService.DB()
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.dbService != nil {
		if err := s.dbService.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
