// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"dird-service/internal/backend"
	"dird-service/internal/bus"
	authClient "dird-service/internal/clients/auth"
	confdClient "dird-service/internal/clients/confd"
	"dird-service/internal/config"
	"dird-service/internal/db"
	directoriesHandler "dird-service/internal/handlers/directories"
	personalHandler "dird-service/internal/handlers/personal"
	statusHandler "dird-service/internal/handlers/status"
	"dird-service/internal/middleware"
	"dird-service/internal/repository/postgres"
	directorysvc "dird-service/internal/service/directory"
	favoritessvc "dird-service/internal/service/favorites"
	personalsvc "dird-service/internal/service/personal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	cancelBus context.CancelFunc
}

func NewServer() (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, engine: gin.New()}, nil
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.Connect(ctx, s.cfg.DB.URI, s.cfg.DB.PoolSize)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	dbWrapper := postgres.NewDB(pool)

	// ----- Redis bus -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Address:  s.cfg.Bus.Address,
		Password: s.cfg.Bus.Password,
		DB:       s.cfg.Bus.DB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to bus", zap.String("address", s.cfg.Bus.Address))

	// ----- Platform clients -----
	authAPI := authClient.NewClient(s.cfg.Auth.URL, s.cfg.Auth.Timeout, logger)
	confdAPI := confdClient.NewClient(s.cfg.Confd.URL, s.cfg.Confd.Timeout, logger)

	// ----- Repositories -----
	tenantRepo := postgres.NewTenantRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	sourceRepo := postgres.NewSourceRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	displayRepo := postgres.NewDisplayRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)
	favoriteRepo := postgres.NewFavoriteRepository(pool)

	// ----- Source drivers -----
	registry := backend.NewRegistry(sourceRepo, backend.Deps{
		Logger:   logger,
		Auth:     authAPI,
		Confd:    confdAPI,
		Contacts: contactRepo,
		Timeout:  s.cfg.SourceTimeout,
	}, s.cfg.EnabledBackends)

	// ----- Services -----
	lookupService := directorysvc.NewLookupService(registry, logger, s.cfg.LookupTimeout)
	reverseService := directorysvc.NewReverseService(registry, logger, s.cfg.LookupTimeout)
	favoritesService := favoritessvc.NewService(favoriteRepo, sourceRepo, registry, logger)
	personalService := personalsvc.NewService(contactRepo, tenantRepo, logger)

	// ----- Bus consumer -----
	busCtx, cancelBus := context.WithCancel(ctx)
	s.cancelBus = cancelBus
	consumer := bus.NewConsumer(redisClient, tenantRepo, userRepo, displayRepo, contactRepo, favoriteRepo, registry, logger)
	go func() {
		if err := consumer.Run(busCtx); err != nil && busCtx.Err() == nil {
			logger.Error("bus consumer stopped", zap.Error(err))
		}
	}()

	// ----- Handlers -----
	directoriesHandlerInst := directoriesHandler.NewDirectoriesHandler(
		profileRepo,
		userRepo,
		lookupService,
		reverseService,
		favoritesService,
		personalService,
		logger,
	)
	personalHandlerInst := personalHandler.NewPersonalHandler(personalService, logger)
	statusHandlerInst := statusHandler.NewStatusHandler(dbWrapper, redisClient)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authAPI, userRepo, logger)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)
	if s.cfg.CORS.Enabled {
		s.engine.Use(middleware.CORSMiddleware(s.cfg.CORS.AllowedOrigins))
	}

	// ----- Router -----
	handlers := &Handlers{
		DirectoriesHandler: directoriesHandlerInst,
		PersonalHandler:    personalHandlerInst,
		StatusHandler:      statusHandlerInst,
		AuthMiddleware:     authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	logger.Info("server listening", zap.String("address", s.cfg.ListenAddress))
	return s.engine.Run(s.cfg.ListenAddress)
}

// Stop tears down background workers. The HTTP listener stops with the
// process.
func (s *Server) Stop() {
	if s.cancelBus != nil {
		s.cancelBus()
	}
}
