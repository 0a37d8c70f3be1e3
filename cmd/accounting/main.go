package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/accountingengine/internal/accounting/application"
	"github.com/wyfcoding/accountingengine/internal/accounting/infrastructure/persistence"
	"github.com/wyfcoding/accountingengine/internal/accounting/infrastructure/persistence/mysql"
	"github.com/wyfcoding/accountingengine/internal/accounting/infrastructure/persistence/redis"
	"github.com/wyfcoding/accountingengine/internal/accounting/interfaces/consumer"
	httpserver "github.com/wyfcoding/accountingengine/internal/accounting/interfaces/http"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/accounting/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 初始化配置
	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 初始化日志
	logCfg := &logging.Config{
		Service:    cfg.Server.Name,
		Module:     "accounting",
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}
	logger := logging.NewFromConfig(logCfg)
	slog.SetDefault(logger.Logger)

	// 3. 初始化指标
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)
	if cfg.Metrics.Enabled {
		go metricsImpl.ExposeHTTP(cfg.Metrics.Port)
	}

	// 4. 初始化基础设施
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	// Auto Migrate (仅用于开发方便)
	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(&mysql.AccountStatePO{}, &mysql.AccountSnapshotPO{}); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to init redis", "error", err)
	}

	// 5. 初始化仓储
	mysqlRepo := mysql.NewAccountRepository(db.RawDB())
	redisRepo := redis.NewAccountRedisRepository(redisCache.GetClient())
	accountRepo := persistence.NewCompositeAccountRepository(mysqlRepo, redisRepo)
	stateStore := mysql.NewStateStore(db.RawDB())

	// 6. 初始化应用服务
	appService := application.NewAccountingService(accountRepo, stateStore)

	// 7. 初始化接口层
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	httpHandler := httpserver.NewAccountingHandler(appService)
	httpHandler.RegisterRoutes(r)

	stateHandler := consumer.NewAccountStateHandler(appService, slog.Default())
	stateRunner := consumer.NewRunner(
		cfg.MessageQueue.Kafka.Brokers,
		"accounting-group",
		stateHandler,
		slog.Default(),
	)

	// 8. 启动服务
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(rootCtx)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTP.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("account state consumer starting", "topic", consumer.AccountStateTopic)
		return stateRunner.Run(ctx)
	})

	// 9. 优雅关闭
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
