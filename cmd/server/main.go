package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"carbon-forest-backend/internal/common/cache"
	"carbon-forest-backend/internal/common/config"
	"carbon-forest-backend/internal/common/logger"
	"carbon-forest-backend/internal/common/middleware"
	carbonRepo "carbon-forest-backend/internal/features/carbon/repository"
	carbonService "carbon-forest-backend/internal/features/carbon/service"
	carrierRepo "carbon-forest-backend/internal/features/carrier/repository"
	carrierService "carbon-forest-backend/internal/features/carrier/service"
	energyRepo "carbon-forest-backend/internal/features/energy/repository"
	energyService "carbon-forest-backend/internal/features/energy/service"
	socialRepo "carbon-forest-backend/internal/features/social/repository"
	socialService "carbon-forest-backend/internal/features/social/service"
	taskRepo "carbon-forest-backend/internal/features/task/repository"
	taskService "carbon-forest-backend/internal/features/task/service"
	userRepo "carbon-forest-backend/internal/features/user/repository"
	userService "carbon-forest-backend/internal/features/user/service"
	"carbon-forest-backend/internal/platform/db"
	"carbon-forest-backend/internal/platform/redis"
	"carbon-forest-backend/internal/utils/random"

	carbonHTTP "carbon-forest-backend/internal/features/carbon/delivery/http"
	carrierHTTP "carbon-forest-backend/internal/features/carrier/delivery/http"
	energyHTTP "carbon-forest-backend/internal/features/energy/delivery/http"
	socialHTTP "carbon-forest-backend/internal/features/social/delivery/http"
	taskHTTP "carbon-forest-backend/internal/features/task/delivery/http"
	userHTTP "carbon-forest-backend/internal/features/user/delivery/http"
)

// @title           Carbon Forest API
// @version         1.0
// @description     Gamified carbon footprint tracker: activities earn energy, energy grows a carrier.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg := config.MustLoad()

	logger.Init("carbon-forest-backend", cfg.Debug)
	logger.Info().Bool("debug", cfg.Debug).Msg("Starting Carbon Forest Backend")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Close()

	if err := db.Migrate(context.Background(), store); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply schema")
	}
	logger.Info().Str("driver", store.Driver()).Msg("Database ready")

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.Open(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer redisClient.Close()
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connected")
	} else {
		logger.Warn().Msg("Redis disabled, leaderboard cache off")
	}
	cacheService := cache.New(redisClient)

	energyRepository := energyRepo.New(store)
	carrierRepository := carrierRepo.New(store)
	carbonRepository := carbonRepo.New(store)
	userRepository := userRepo.New(store)
	socialRepository := socialRepo.New(store)
	taskRepository := taskRepo.New(store)

	ledger := energyService.NewLedger(store, energyRepository)
	carriers := carrierService.New(store, carrierRepository, ledger)
	balls := energyService.NewBallService(store, energyRepository, ledger, carriers, random.New())
	social := socialService.New(socialRepository, cacheService)
	overflow := energyService.NewOverflowService(store, energyRepository, ledger, social)
	carbon := carbonService.New(store, carbonRepository, ledger, balls, carriers)
	users := userService.New(store, userRepository, ledger, balls, carriers, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	tasks := taskService.New(store, taskRepository, ledger, carriers)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	userHandler := userHTTP.NewUserHandler(users)

	v1 := router.Group("/api/v1")
	userHandler.RegisterPublicRoutes(v1)

	authed := v1.Group("")
	authed.Use(middleware.Auth(cfg.Auth.JWTSecret))
	userHandler.RegisterRoutes(authed)
	carbonHTTP.NewCarbonHandler(carbon).RegisterRoutes(authed)
	energyHTTP.NewEnergyHandler(ledger, balls, overflow).RegisterRoutes(authed)
	carrierHTTP.NewCarrierHandler(carriers).RegisterRoutes(authed)
	socialHTTP.NewSocialHandler(social).RegisterRoutes(authed)
	taskHTTP.NewTaskHandler(tasks).RegisterRoutes(authed)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "carbon-forest-backend",
		})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server exited")
}
