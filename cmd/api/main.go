package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wazmoi/backend/internal/auth"
	jwtpkg "wazmoi/backend/internal/auth/jwt"
	"wazmoi/backend/internal/config"
	"wazmoi/backend/internal/health"
	"wazmoi/backend/internal/logger"
	"wazmoi/backend/internal/monitoring"
	"wazmoi/backend/internal/service"
	"wazmoi/backend/internal/storage"
	"wazmoi/backend/internal/storage/memory"
	redisstore "wazmoi/backend/internal/storage/redis"
	sqlstore "wazmoi/backend/internal/storage/sql"
	httptransport "wazmoi/backend/internal/transport/http"
)

const version = "1.0.0"

// main 是匿名留言服务的 HTTP 入口。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()
	log.Info("starting wazmoi API server",
		zap.String("version", version),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层：配置了数据库就用 SQL，否则退回内存存储
	var store storage.Store
	if cfg.Database.Type != "" {
		sqlStore, err := sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			log.Fatal("failed to initialize database storage", zap.Error(err))
		}
		store = sqlStore
		log.Info("using SQL storage", zap.String("driver", cfg.Database.Type))
	} else {
		store = memory.NewStore()
		log.Info("using memory storage")
	}
	defer store.Close()

	// 初始化 Redis 缓存（可选）
	var redisClient *redisstore.Client
	var cache *redisstore.Cache
	if cfg.Redis.Enabled {
		redisClient, err = redisstore.New(&cfg.Redis, log)
		if err != nil {
			log.Warn("failed to connect to Redis, continuing without cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = redisstore.NewCache(redisClient, cfg.Redis.CacheTTL)
		}
	}

	// 初始化监控指标
	metrics := monitoring.NewMetrics()

	// 初始化服务层
	deliveryService := service.NewDeliveryService(store, store, cfg.Delivery, log)
	inboxService := service.NewInboxService(store, store, log)
	privateLinkService := service.NewPrivateLinkService(store, cfg.Delivery.BaseURL, log)
	profileService := service.NewProfileService(store, store)
	adminService := service.NewAdminService(store)
	deliveryService.SetMetrics(metrics)
	inboxService.SetMetrics(metrics)
	if cache != nil {
		deliveryService.SetCache(cache)
		inboxService.SetCache(cache)
		profileService.SetCache(cache)
	}

	// 初始化认证服务
	authService := auth.NewService(store)
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	log.Info("JWT configuration",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("access_expiry", cfg.JWT.AccessExpiry),
		zap.Duration("refresh_expiry", cfg.JWT.RefreshExpiry),
	)

	// 创建 HTTP 路由
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:       cfg,
		AuthService:  authService,
		Delivery:     deliveryService,
		Inbox:        inboxService,
		PrivateLinks: privateLinkService,
		Profiles:     profileService,
		Admin:        adminService,
		JWTManager:   jwtManager,
		Metrics:      metrics,
		Logger:       log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 健康检查与指标走独立端口，不经过业务中间件
	checker := health.NewChecker(store, redisClient, log)
	healthMux := http.NewServeMux()
	healthMux.Handle("/", checker.Handler())
	healthMux.Handle("/metrics", metrics.HTTPHandler())

	healthAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HealthPort)
	healthServer := &http.Server{
		Addr:              healthAddr,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("API server listening", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("health server listening", zap.String("address", healthAddr))
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("api server shutdown error", zap.Error(err))
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			log.Error("health server shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("server stopped cleanly")
}
