package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Drivers soportados para el almacenamiento local.
const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort          string        `env:"HTTP_PORT" envDefault:"8080"`
	StoreDriver       string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath        string        `env:"SQLITE_PATH" envDefault:"lofty.db"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	GeminiBaseURL     string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiModel       string        `env:"GEMINI_MODEL"`
	GatewayTimeout    time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"45s"`
	SimulatedLatency  time.Duration `env:"SIMULATED_LATENCY" envDefault:"1s"`
	AnalysisMockDelay time.Duration `env:"ANALYSIS_MOCK_DELAY" envDefault:"3s"`
	ReportURL         string        `env:"REPORT_URL" envDefault:"https://docs.google.com/document/d/1example-doc-id/edit"`
	SettingsSecret    string        `env:"SETTINGS_SECRET"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
