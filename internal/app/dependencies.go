package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/bookhaven/internal/health"
	badgerstore "github.com/vladislavdragonenkov/bookhaven/internal/storage/badger"
	"github.com/vladislavdragonenkov/bookhaven/internal/storage/memory"
	"github.com/vladislavdragonenkov/bookhaven/internal/storage/postgres"
	redisstore "github.com/vladislavdragonenkov/bookhaven/internal/storage/redis"
)

const storageInitTimeout = 5 * time.Second

// runtimeDependencies содержит хранилища, выбранные конфигурацией.
type runtimeDependencies struct {
	sessions domain.SessionStorage
	durable  domain.KVStore

	sessionChecker healthcheck.Checker
	durableChecker healthcheck.Checker

	// sessionFallback выставляется, когда Redis недоступен и корзины живут в памяти.
	sessionFallback bool

	closers []func() error
}

// closeFn закрывает все открытые подключения в обратном порядке.
func (d *runtimeDependencies) closeFn() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// initRuntimeDependencies открывает хранилища сессий и долговременных записей.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	deps := &runtimeDependencies{}

	if err := initDurableStorage(ctx, cfg, deps, logger); err != nil {
		_ = deps.closeFn()
		return nil, err
	}
	if err := initSessionStorage(ctx, cfg, deps, logger); err != nil {
		_ = deps.closeFn()
		return nil, err
	}
	return deps, nil
}

func initSessionStorage(ctx context.Context, cfg Config, deps *runtimeDependencies, logger *log.Entry) error {
	driver := SessionDriver(strings.ToLower(strings.TrimSpace(string(cfg.SessionDriver))))
	switch driver {
	case "", SessionDriverMemory:
		deps.sessions = memory.NewSessionStorage(cfg.SessionTTL, memory.WithQuota(cfg.SessionQuotaBytes))
		deps.sessionChecker = healthcheck.NewPingChecker("memory", func(context.Context) error { return nil })
		return nil

	case SessionDriverRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		sessions := redisstore.NewSessionStorage(client, cfg.SessionTTL)

		pingCtx, cancel := context.WithTimeout(ctx, storageInitTimeout)
		defer cancel()
		if err := sessions.Ping(pingCtx); err != nil {
			_ = client.Close()
			// Одно предупреждение на запуск: дальше корзины живут в памяти процесса.
			logger.WithError(err).WithField("redis_addr", cfg.RedisAddr).
				Warn("session storage unavailable, falling back to in-memory session storage")
			deps.sessions = memory.NewSessionStorage(cfg.SessionTTL, memory.WithQuota(cfg.SessionQuotaBytes))
			deps.sessionChecker = healthcheck.NewDegradedChecker("memory", "redis unavailable at startup")
			deps.sessionFallback = true
			return nil
		}

		deps.sessions = sessions
		deps.sessionChecker = healthcheck.NewPingChecker("redis", sessions.Ping)
		deps.closers = append(deps.closers, client.Close)
		logger.WithField("redis_addr", cfg.RedisAddr).Info("redis session storage initialized")
		return nil

	default:
		return fmt.Errorf("unsupported session driver %q", cfg.SessionDriver)
	}
}

func initDurableStorage(ctx context.Context, cfg Config, deps *runtimeDependencies, logger *log.Entry) error {
	driver := DurableDriver(strings.ToLower(strings.TrimSpace(string(cfg.DurableDriver))))
	switch driver {
	case "", DurableDriverMemory:
		deps.durable = memory.NewKVStore()
		deps.durableChecker = healthcheck.NewPingChecker("memory", func(context.Context) error { return nil })
		return nil

	case DurableDriverBadger:
		store, err := badgerstore.Open(cfg.BadgerPath, logger.WithField("component", "badger"))
		if err != nil {
			return fmt.Errorf("open badger durable storage: %w", err)
		}
		deps.durable = store
		deps.durableChecker = healthcheck.NewPingChecker("badger", store.Ping)
		deps.closers = append(deps.closers, store.Close)
		logger.WithField("path", cfg.BadgerPath).Info("badger durable storage initialized")
		return nil

	case DurableDriverPostgres:
		dsn := strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			return errors.New("postgres durable driver requires BOOKHAVEN_POSTGRES_DSN")
		}

		initCtx, cancel := context.WithTimeout(ctx, storageInitTimeout)
		defer cancel()

		store, err := postgres.Open(initCtx, dsn)
		if err != nil {
			return fmt.Errorf("open postgres durable storage: %w", err)
		}
		deps.closers = append(deps.closers, store.Close)

		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(initCtx, 0); err != nil {
				return fmt.Errorf("apply postgres migrations: %w", err)
			}
		}

		deps.durable = postgres.NewKVStore(store, postgres.DurableScope)
		deps.durableChecker = healthcheck.NewPingChecker("postgres", store.Ping)
		logger.Info("postgres durable storage initialized")
		return nil

	default:
		return fmt.Errorf("unsupported durable driver %q", cfg.DurableDriver)
	}
}
