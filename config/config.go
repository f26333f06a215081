package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Driver      string        `mapstructure:"driver"` // postgres, mysql or sqlite
	DSN         string        `mapstructure:"dsn"`
	LogLevel    string        `mapstructure:"log_level"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
}

type ConsulConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type Config struct {
	HTTPPort    int    `mapstructure:"http_port"`
	GRPCPort    int    `mapstructure:"grpc_port"`
	LogLevel    string `mapstructure:"log_level"`
	ServiceName string `mapstructure:"service_name"`
	ServiceHost string `mapstructure:"service_host"`

	JwtSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`

	Database DatabaseConfig `mapstructure:"database"`
	Consul   ConsulConfig   `mapstructure:"consul"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

const insecureSecret = "default-very-insecure-secret-key"

var AppConfig Config

// SetDefaults registers every known key on v, which also makes them visible
// to AutomaticEnv during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http_port", 8000)
	v.SetDefault("grpc_port", 50051)
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "receita-api")
	v.SetDefault("service_host", "127.0.0.1")
	v.SetDefault("jwt_secret", insecureSecret) // CHANGE THIS IN PRODUCTION
	v.SetDefault("token_ttl", 24*time.Hour)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "receita.db?_foreign_keys=on")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.wait_timeout", 30*time.Second)

	v.SetDefault("consul.enabled", false)
	v.SetDefault("consul.address", "127.0.0.1:8500")

	v.SetDefault("metrics.enabled", true)
}

// Load reads configuration from v. A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable overrides: RECEITA_DATABASE_DSN etc.
	v.SetEnvPrefix("RECEITA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "mysql" && cfg.Database.Driver != "sqlite" {
		return cfg, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	return cfg, nil
}

// InsecureSecret reports whether the JWT secret is still the built-in default.
func (c Config) InsecureSecret() bool {
	return c.JwtSecret == insecureSecret
}

func InitConfig() {
	// .env is optional; values there become plain environment variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(fmt.Errorf("fatal error reading .env file: %w", err))
	}

	cfg, err := Load(viper.GetViper())
	if err != nil {
		panic(fmt.Errorf("fatal error loading config: %w", err))
	}
	AppConfig = cfg
}
