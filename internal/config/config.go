package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type KioskConfig struct {
	Env          string `yaml:"env" env:"KIOSK_ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	GRPCServer   `yaml:"grpc_server"`
	KioskDB      `yaml:"kiosk_db"`
	LogConfig    `yaml:"log_config"`
	Rates        `yaml:"rates"`
	KafkaService `yaml:"kafka-service"`
}

type HTTPServer struct {
	Host string `yaml:"host" env:"KIOSK_HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"KIOSK_HTTP_PORT" env-default:"8008"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"KIOSK_GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"KIOSK_GRPC_PORT" env-default:"50061"`
}

type KioskDB struct {
	Dsn            string `yaml:"dsn" env:"KIOSK_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"KIOSK_MIGRATIONS_PATH"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"KIOSK_LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"KIOSK_LOG_FORMAT" env-default:"text"`
	LogOutput string `yaml:"log_output" env:"KIOSK_LOG_OUTPUT" env-default:"stdout"`
}

type Rates struct {
	URL             string        `yaml:"url" env:"KIOSK_RATES_URL" env-default:"https://rates3.edge.app/v3/rates"`
	TargetFiat      string        `yaml:"target_fiat" env:"KIOSK_RATES_TARGET_FIAT" env-default:"USD"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env-default:"60s"`
	RetryBaseDelay  time.Duration `yaml:"retry_base_delay" env-default:"5s"`
	MaxAttempts     int           `yaml:"max_attempts" env-default:"5"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env-default:"10s"`
	HealthInterval  time.Duration `yaml:"health_interval" env-default:"1m"`
}

type KafkaService struct {
	Brokers string `yaml:"brokers" env:"KIOSK_KAFKA_BROKERS"`
	Topic   string `yaml:"topic" env-default:"kiosk-quote-events"`
}

// BrokerList splits the comma separated broker setting; empty means publishing is off.
func (k KafkaService) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func Load(configPath string) (*KioskConfig, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg KioskConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if cfg.Rates.MaxAttempts < 1 {
		return nil, fmt.Errorf("rates.max_attempts must be at least 1, got %d", cfg.Rates.MaxAttempts)
	}
	for name, d := range map[string]time.Duration{
		"rates.refresh_interval": cfg.Rates.RefreshInterval,
		"rates.request_timeout":  cfg.Rates.RequestTimeout,
		"rates.health_interval":  cfg.Rates.HealthInterval,
	} {
		if d <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if cfg.Rates.RetryBaseDelay < 0 {
		return nil, fmt.Errorf("rates.retry_base_delay must not be negative, got %s", cfg.Rates.RetryBaseDelay)
	}
	return &cfg, nil
}

func MustLoad() *KioskConfig {

	// Processing env config variable and file
	configPath := os.Getenv("KIOSK_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("KIOSK_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	return cfg
}
