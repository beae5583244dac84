package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// App: конфигурация всего сервиса.
type App struct {
	// envconfig ищет DB_DB_HOST, затем альтернативное имя DB_HOST из тега.
	DB DBConfig

	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// JWT
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"60"`
	BcryptCost   int    `envconfig:"BCRYPT_COST" default:"10"`

	// Фоновая очистка просроченных бронирований.
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`

	// Список пространств доступен без токена.
	PublicCatalog bool `envconfig:"PUBLIC_CATALOG" default:"true"`

	// Часовой пояс для времени без явного смещения.
	TimeZone string `envconfig:"APP_TIMEZONE" default:"UTC"`

	// RabbitMQ для событий бронирования; если пусто, события только в лог.
	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`

	OTELEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"spacebook"`
	Env          string `envconfig:"ENV" default:"dev"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load читает конфигурацию из окружения.
func Load() (*App, error) {
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *App) Validate() error {
	if err := c.DB.Validate(); err != nil {
		return err
	}
	if c.JWTExpireMin <= 0 {
		return fmt.Errorf("invalid config: JWT_EXPIRE_MIN must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("invalid config: SWEEP_INTERVAL must be positive")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid config: APP_TIMEZONE: %w", err)
	}
	return nil
}

func (c *App) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpireMin) * time.Minute
}

// Location возвращает часовой пояс приложения; Validate уже проверил имя.
func (c *App) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *App) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
