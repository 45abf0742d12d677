package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tillpoint/internal/config"
	custommiddleware "tillpoint/internal/middleware"
	"tillpoint/internal/repository"
	"tillpoint/internal/service"
	"tillpoint/internal/store"
	"tillpoint/internal/transport"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	kvstore store.Store

	// SessionSvc is exposed so main can resume the terminal session from the
	// persisted token pair before serving requests.
	SessionSvc service.SessionService
	UserSvc    service.UserService
}

// NewServer wires repositories, services and handlers on top of the injected
// key-value store. rateLimitClient may be nil when the store driver is not
// Redis; login rate limiting is skipped in that case.
func NewServer(cfg *config.Config, logger *zap.Logger, kvstore store.Store, rateLimitClient *redis.Client) *Server {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Repositories
	catalogRepo := repository.NewCatalogRepository(kvstore)
	holdRepo := repository.NewHoldSaleRepository(kvstore)
	invoiceRepo := repository.NewInvoiceRepository(kvstore)
	userRepo := repository.NewUserRepository(kvstore)
	sessionRepo := repository.NewSessionRepository(kvstore)

	// Services
	cartSvc := service.NewCartService(cfg.Sales.TaxRateBps)
	saleSvc := service.NewSaleService(invoiceRepo, cartSvc, logger)
	holdSvc := service.NewHoldSaleService(holdRepo, catalogRepo, cartSvc, saleSvc, logger)
	userSvc := service.NewUserService(userRepo, logger)
	verifier := service.NewBcryptVerifier(userRepo)
	sessionSvc := service.NewSessionService(verifier, userRepo, sessionRepo, cfg.JWT.Secret, logger)

	// Middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	loginRateLimit := func(next http.Handler) http.Handler { return next }
	if rateLimitClient != nil {
		loginRateLimit = custommiddleware.RateLimitMiddleware(rateLimitClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 10,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit:login",
		}, logger)
	}

	// Handlers
	transport.NewAuthHandler(sessionSvc, userSvc, logger).RegisterRoutes(router, authMiddleware, loginRateLimit)
	transport.NewProductHandler(catalogRepo, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCartHandler(cartSvc, catalogRepo, logger).RegisterRoutes(router, authMiddleware)
	transport.NewHoldSaleHandler(holdSvc, cartSvc, sessionSvc, logger).RegisterRoutes(router, authMiddleware)
	transport.NewSaleHandler(saleSvc, sessionSvc, logger).RegisterRoutes(router, authMiddleware)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:     cfg,
		logger:     logger,
		kvstore:    kvstore,
		SessionSvc: sessionSvc,
		UserSvc:    userSvc,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.kvstore != nil {
		if err := s.kvstore.Close(); err != nil {
			s.logger.Error("Failed to close store", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
