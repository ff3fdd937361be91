package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/fcv-judge.net/internal/adapter/crypto"
	"gitlab.com/fcv-judge.net/internal/adapter/postgres/judgementrepository"
	"gitlab.com/fcv-judge.net/internal/adapter/redis/nodeport"
	"gitlab.com/fcv-judge.net/internal/adapter/staging"
	"gitlab.com/fcv-judge.net/internal/adapter/toolchain"
	"gitlab.com/fcv-judge.net/internal/config"
	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/ports/secondary"
	"gitlab.com/fcv-judge.net/internal/core/services/execution"
	"gitlab.com/fcv-judge.net/internal/core/services/node"
	"gitlab.com/fcv-judge.net/internal/core/services/worker"
	logger2 "gitlab.com/fcv-judge.net/internal/global/logger"
	"gitlab.com/fcv-judge.net/internal/handlers"
	"gitlab.com/fcv-judge.net/internal/handlers/exec"
	http2 "gitlab.com/fcv-judge.net/internal/http"
	"gitlab.com/fcv-judge.net/internal/schedulerengine"
	"gitlab.com/fcv-judge.net/internal/tcp"
)

const shutdownTimeout = 30 * time.Second

func main() {
	args := InitReader()

	sysCfg := config.NewSystemConfig()
	logger2.SetDebug(sysCfg.DebugMode)
	logger := logger2.Logger
	defer logger.Sync()

	if len(args) > 0 && args[0] == "token" {
		if err := mintToken(sysCfg.JwtConfig, args[1:]); err != nil {
			log.Fatalf("token: %v", err)
		}
		return
	}

	logger.Info("Starting judge engine", "version", sysCfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// SECONDARY PORTS
	var judgements secondary.JudgementRepository
	if sysCfg.PostgresConfig.Url != "" {
		db, err := setupDatabase(ctx, sysCfg.PostgresConfig)
		if err != nil {
			logger.Error("Failed to set up database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		repo := judgementrepository.NewJudgementRepository(db, sysCfg.PostgresConfig.Schema, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("Failed to prepare judgement table", "error", err)
			os.Exit(1)
		}
		judgements = repo
	}

	var nodeService node.INodeRegistrationService
	if sysCfg.RedisConfig.Url != "" {
		redisClient, err := setupRedis(ctx, sysCfg.RedisConfig)
		if err != nil {
			logger.Error("Failed to set up redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		nodeService = node.NewNodeRegistrationService(nodeport.NewNodeRepository(redisClient, logger), logger)
	}

	materializer, err := staging.NewMaterializer(sysCfg.ExecutorCfg, logger)
	if err != nil {
		logger.Error("Failed to prepare staging directories", "error", err)
		os.Exit(1)
	}
	adapters := toolchain.NewDefaultSet(sysCfg.ExecutorCfg, logger)
	pool := worker.NewPool(sysCfg.PoolCfg, logger)

	// services
	executionService := execution.NewExecutionService(adapters, materializer, pool, judgements, logger)

	// primary ports
	var tokens primary.TokenService
	if sysCfg.JwtConfig.Secret != "" {
		tokens = crypto.NewJWTService(sysCfg.JwtConfig)
	} else {
		logger.Warn("JWT_SECRET is not set, execution routes are unauthenticated")
	}
	middleware := handlers.New(tokens, sysCfg.JwtConfig.Method, logger)

	var rateLimiter *handlers.RateLimiter
	if sysCfg.ServerCfg.RateLimitRPS > 0 {
		rateLimiter = handlers.NewRateLimiter(sysCfg.ServerCfg.RateLimitRPS, sysCfg.ServerCfg.RateLimitBurst)
		go rateLimiter.Run(ctx)
	}

	// servers
	serviceProvider := http2.NewServiceProvider(executionService, nodeService)
	httpServer := http2.NewServer(
		sysCfg.ServerCfg.HTTPPort,
		sysCfg.ServerCfg.ServiceName,
		sysCfg.ServerCfg.WriteTimeout,
		*serviceProvider,
		middleware,
		rateLimiter,
		logger,
	)
	if err := httpServer.Init(); err != nil {
		logger.Error("Failed to initialise http server", "error", err)
		os.Exit(1)
	}
	httpErrs := httpServer.Start(ctx)

	var tcpServer *tcp.TCPServer
	if sysCfg.ServerCfg.TCPAddress != "" {
		boundary := exec.NewBoundary(executionService, logger)
		tcpServer = tcp.NewTCPServer(boundary, logger, tcp.WithAddress(sysCfg.ServerCfg.TCPAddress))
		if err := tcpServer.Start(); err != nil {
			logger.Error("Failed to start tcp server", "error", err)
			os.Exit(1)
		}
	}

	background := schedulerengine.NewBackgroundEngine(
		sysCfg.BackgroundCfg,
		schedulerengine.NodeIdentity{
			ID:        uuid.NewString(),
			Languages: adapters.Languages(),
			Address:   schedulerengine.OutboundIP(),
			Version:   sysCfg.Version,
		},
		nodeService,
		pool,
		materializer,
		logger,
	)
	background.Start(ctx)

	select {
	case <-ctx.Done():
	case err := <-httpErrs:
		if err != nil {
			logger.Error("HTTP server stopped unexpectedly", "error", err)
		}
		stop()
	}
	logger.Info("Shutting down server...")

	if tcpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := tcpServer.Stop(shutdownCtx); err != nil {
			logger.Error("TCP server did not stop cleanly", "error", err)
		}
		cancel()
	}
	httpServer.Stop()
	background.Wait()

	logger.Info("successfully shutdown server")
}

// InitReader loads <env>.env, naming the environment by the first argument or by
// APP_ENV (default "local"), and returns the remaining arguments. A missing file
// leaves the process environment as the only source.
func InitReader() []string {
	args := os.Args[1:]
	environment := getEnv("APP_ENV", "local")
	if len(args) > 0 && args[0] != "token" {
		environment = args[0]
		args = args[1:]
	}

	if err := godotenv.Load(environment + ".env"); err != nil {
		log.Printf("Could not load %s.env, using process environment: %v", environment, err)
	}
	return args
}

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// mintToken prints a signed service token for the given subject.
func mintToken(cfg *config.JwtConfig, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: token <subject>")
	}
	if cfg.Secret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	token, err := crypto.NewJWTService(cfg).GenerateTokenHMAC(context.Background(), cfg.Method, map[string]interface{}{
		"sub": args[0],
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(ctx context.Context, cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// setupRedis sets up the Redis connection
func setupRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
