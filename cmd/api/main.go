package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"innledger/internal/config"
	"innledger/internal/handler"
	"innledger/internal/infra/db"
	"innledger/internal/infra/event"
	"innledger/internal/infra/lock"
	"innledger/internal/infra/memory"
	"innledger/internal/infra/observability"
	infraRepo "innledger/internal/infra/repository"
	repo "innledger/internal/repository"
	"innledger/internal/server"
	"innledger/internal/usecase"
	"innledger/internal/validator"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

type publisher interface {
	usecase.EventPublisher
	Close() error
}

func main() {
	//.envは任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.IsProd())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OtelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	//ストア
	txm, err := newTransactionManager(cfg, logger)
	if err != nil {
		return err
	}

	//品物ロック
	locker, closeLocker := newLocker(cfg, logger)
	defer closeLocker()

	//イベント
	events := newPublisher(cfg, logger)
	defer func() {
		if err := events.Close(); err != nil {
			logger.Warn("event publisher close failed", zap.Error(err))
		}
	}()

	//Usecase生成
	idGen := &uuidGenerator{}
	clock := &realClock{}
	v := validator.NewInputValidator()

	ledger := usecase.NewTransactionUsecase(txm, locker, events, clock, idGen, logger)
	goods := usecase.NewGoodUsecase(txm, locker, v, logger)
	parties := usecase.NewPartyUsecase(txm, v)

	//Handler生成
	e := server.New(cfg, logger, server.Handlers{
		Transactions: handler.NewTransactionHandler(ledger),
		Goods:        handler.NewGoodHandler(goods),
		Parties:      handler.NewPartyHandler(parties),
	})

	//Server起動
	addr := ":" + cfg.Port
	if cfg.Port != "" && cfg.Port[0] == ':' {
		addr = cfg.Port
	}
	return server.Start(ctx, e, addr, logger)
}

func newTransactionManager(cfg config.Config, logger *zap.Logger) (repo.TransactionManager, error) {
	if cfg.Store == config.StoreMemory {
		logger.Info("using in-memory store")
		return memory.NewStore(), nil
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}
	logger.Info("using postgres store")
	return infraRepo.NewTxManagerGorm(gormDB), nil
}

func newLocker(cfg config.Config, logger *zap.Logger) (usecase.GoodLocker, func()) {
	if cfg.RedisAddr == "" {
		return lock.NewLocalLocker(), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	logger.Info("using redis locks", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.LockTTL))
	return lock.NewRedisLocker(client, cfg.LockTTL, logger), func() { _ = client.Close() }
}

func newPublisher(cfg config.Config, logger *zap.Logger) publisher {
	if cfg.KafkaBroker == "" {
		return event.NopPublisher{}
	}
	logger.Info("publishing transaction events", zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaTopic))
	return event.NewKafkaPublisher(cfg.KafkaBroker, cfg.KafkaTopic)
}
