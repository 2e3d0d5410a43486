package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/app"
)

const (
	envHTTPAddr            = "BOOKHAVEN_HTTP_ADDR"
	envMetricsAddr         = "BOOKHAVEN_METRICS_ADDR"
	envSessionDriver       = "BOOKHAVEN_SESSION_DRIVER"
	envRedisAddr           = "BOOKHAVEN_REDIS_ADDR"
	envSessionTTL          = "BOOKHAVEN_SESSION_TTL"
	envSessionQuotaBytes   = "BOOKHAVEN_SESSION_QUOTA_BYTES"
	envDurableDriver       = "BOOKHAVEN_DURABLE_DRIVER"
	envBadgerPath          = "BOOKHAVEN_BADGER_PATH"
	envPostgresDSN         = "BOOKHAVEN_POSTGRES_DSN"
	envPostgresAutoMigrate = "BOOKHAVEN_POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers        = "BOOKHAVEN_KAFKA_BROKERS"
	envRequestTimeout      = "BOOKHAVEN_REQUEST_TIMEOUT"
	envEnableDebugRoutes   = "BOOKHAVEN_ENABLE_DEBUG_ROUTES"
	envLogLevel            = "BOOKHAVEN_LOG_LEVEL"
)

type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	if raw, ok := lookup(envLogLevel); ok && strings.TrimSpace(raw) != "" {
		level, err := log.ParseLevel(strings.TrimSpace(raw))
		if err != nil {
			log.WithError(err).WithField("env", envLogLevel).Warn("invalid log level, using info")
			return
		}
		log.SetLevel(level)
	}
}

// readConfigFromEnv накладывает переменные окружения на конфигурацию по умолчанию.
// Некорректные значения не прерывают запуск: остаётся значение по умолчанию и
// возвращается предупреждение.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", key, raw, err))
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(envHTTPAddr, &cfg.HTTPAddr)
	str(envMetricsAddr, &cfg.MetricsAddr)
	str(envRedisAddr, &cfg.RedisAddr)
	str(envBadgerPath, &cfg.BadgerPath)
	str(envPostgresDSN, &cfg.PostgresDSN)
	str(envKafkaBrokers, &cfg.KafkaBrokers)

	if v, ok := lookup(envSessionDriver); ok && strings.TrimSpace(v) != "" {
		cfg.SessionDriver = app.SessionDriver(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup(envDurableDriver); ok && strings.TrimSpace(v) != "" {
		cfg.DurableDriver = app.DurableDriver(strings.ToLower(strings.TrimSpace(v)))
	}

	if v, ok := lookup(envSessionTTL); ok {
		if d, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0"); err != nil {
			warn(envSessionTTL, v, err)
		} else {
			cfg.SessionTTL = d
		}
	}
	if v, ok := lookup(envRequestTimeout); ok {
		if d, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0"); err != nil {
			warn(envRequestTimeout, v, err)
		} else {
			cfg.RequestTimeout = d
		}
	}
	if v, ok := lookup(envSessionQuotaBytes); ok {
		if n, err := parseInt(v, func(n int) bool { return n >= 0 }, "must be >= 0"); err != nil {
			warn(envSessionQuotaBytes, v, err)
		} else {
			cfg.SessionQuotaBytes = n
		}
	}
	if v, ok := lookup(envPostgresAutoMigrate); ok {
		if b, err := parseBool(v); err != nil {
			warn(envPostgresAutoMigrate, v, err)
		} else {
			cfg.PostgresAutoMigrate = b
		}
	}
	if v, ok := lookup(envEnableDebugRoutes); ok {
		if b, err := parseBool(v); err != nil {
			warn(envEnableDebugRoutes, v, err)
		} else {
			cfg.EnableDebugRoutes = b
		}
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, constraint string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q: %w", raw, err)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("%d %s", value, constraint)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, constraint string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("%s %s", value, constraint)
	}
	return value, nil
}

func main() {
	setupLogger(os.LookupEnv)
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":      cfg.HTTPAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"session_driver": cfg.SessionDriver,
		"durable_driver": cfg.DurableDriver,
	}).Info("запускаем витрину BookHaven")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("витрина остановлена")
}
