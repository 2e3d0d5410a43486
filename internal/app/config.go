package app

import "time"

// SessionDriver выбирает хранилище корзин текущих сессий.
type SessionDriver string

const (
	SessionDriverMemory SessionDriver = "memory"
	SessionDriverRedis  SessionDriver = "redis"
)

// DurableDriver выбирает хранилище обращений, заказов и подписок.
type DurableDriver string

const (
	DurableDriverMemory   DurableDriver = "memory"
	DurableDriverBadger   DurableDriver = "badger"
	DurableDriverPostgres DurableDriver = "postgres"
)

// Config описывает настройки запуска витрины.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	SessionDriver     SessionDriver
	RedisAddr         string
	SessionTTL        time.Duration
	SessionQuotaBytes int

	DurableDriver       DurableDriver
	BadgerPath          string
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers: список брокеров через запятую; пустая строка отключает события.
	KafkaBrokers string

	RequestTimeout    time.Duration
	EnableDebugRoutes bool
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		SessionDriver:       SessionDriverMemory,
		RedisAddr:           "localhost:6379",
		SessionTTL:          30 * time.Minute,
		SessionQuotaBytes:   5 << 20,
		DurableDriver:       DurableDriverMemory,
		BadgerPath:          "data/bookhaven",
		PostgresAutoMigrate: true,
		RequestTimeout:      10 * time.Second,
	}
}
