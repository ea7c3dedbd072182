package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sudooom.boba/internal/api"
	"sudooom.boba/internal/config"
	"sudooom.boba/internal/handler"
	"sudooom.boba/internal/health"
	bobaNats "sudooom.boba/internal/nats"
	"sudooom.boba/internal/repository"
	"sudooom.boba/internal/router"
	"sudooom.boba/internal/service"
	"sudooom.boba/internal/session"
	"sudooom.boba/internal/snowflake"
	"sudooom.boba/internal/store"
	"sudooom.boba/internal/task"
	"sudooom.boba/internal/token"
)

func main() {
	// 加载配置
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if cfg.JWT.Secret == "" {
		logger.Error("jwt.secret is required (BOBA_JWT_SECRET)")
		os.Exit(1)
	}

	distribution, err := config.LoadDistribution(cfg.Game.DistributionFile)
	if err != nil {
		logger.Error("Failed to load card distribution", "file", cfg.Game.DistributionFile, "error", err)
		os.Exit(1)
	}

	sfNode, err := snowflake.NewNode(cfg.App.NodeID)
	if err != nil {
		logger.Error("Invalid node id", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接 NATS
	natsClient, err := bobaNats.NewClient(cfg.NATS)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()

	// 连接 Redis
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()
	logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)

	// 连接数据库
	db, err := connectDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host)

	resultRepo := repository.NewGameResultRepository(db)
	if err := resultRepo.Migrate(ctx); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	// 回合超时调度器
	scheduler := task.NewScheduler(cfg.Scheduler.WorkerCount, cfg.Scheduler.Tick)
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// 会话管理
	subjects := bobaNats.NewSubjects(cfg.NATS.SubjectPrefix)
	publisher := bobaNats.NewPublisher(natsClient.Conn(), subjects)
	statusStore := store.NewStatusStore(redisClient, cfg.Redis.StatusTTL)
	manager := session.NewManager(sfNode, session.Options{
		Notifier:    publisher,
		Store:       statusStore,
		Recorder:    resultRepo,
		Scheduler:   scheduler,
		TurnTimeout: cfg.Game.TurnTimeout,
	}, session.ManagerConfig{
		MaxSessions:   cfg.Game.MaxSessions,
		EvictTimeout:  cfg.Game.EvictTimeout,
		EvictInterval: cfg.Game.EvictInterval,
	})

	// 玩家请求
	tokens := token.NewService(cfg.JWT.Secret, cfg.JWT.SeatExpire)
	gameHandler := handler.NewGameHandler(manager, tokens)
	subscriber := bobaNats.NewRequestSubscriber(natsClient.Conn(), subjects, gameHandler, bobaNats.SubscriberConfig{
		WorkerCount: cfg.NATS.WorkerCount,
		BufferSize:  cfg.NATS.BufferSize,
	})
	if err := subscriber.Start(ctx); err != nil {
		logger.Error("Failed to start subscriber", "error", err)
		os.Exit(1)
	}

	// HTTP
	lobbyService := service.NewLobbyService(
		store.NewLobbyStore(redisClient, cfg.Redis.LobbyTTL),
		manager,
		tokens,
		sfNode,
		service.GameDefaults{RoundCount: cfg.Game.RoundCount, Distribution: distribution},
	)
	gameService := service.NewGameService(manager, statusStore, resultRepo)
	healthChecker := health.NewChecker(natsClient.Conn(), redisClient, db, manager)

	engine := router.SetupRouter(
		cfg.HTTP,
		tokens,
		healthChecker,
		api.NewLobbyHandler(lobbyService),
		api.NewGameHandler(gameService, gameHandler),
		api.NewResultHandler(gameService),
	)
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	logger.Info("Boba host started", "name", cfg.App.Name, "nodeId", cfg.App.NodeID)

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	subscriber.Stop()
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Session manager shutdown failed", "error", err)
	}
	scheduler.Stop()
	cancel()
	logger.Info("Boba host stopped")
}

// connectRedis 连接 Redis
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// connectDatabase 连接 PostgreSQL
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	return pgxpool.NewWithConfig(ctx, poolConfig)
}
