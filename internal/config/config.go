package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Reporting ReportingConfig `mapstructure:"reporting"`
	JWTSecret string          `mapstructure:"jwt_secret"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Live execution strategies.
const (
	StrategyDirect = "direct"
	StrategyRPC    = "rpc"
)

// ReportingConfig controls how report queries execute.
//
// Mode is "live" or "sample"; a sample response is always tagged as such in
// the result envelope. Strategy selects the live path: "direct" builds and
// runs parameterized SQL, "rpc" calls the execute_custom_report_query
// database function and falls back to direct when the function is missing.
type ReportingConfig struct {
	Mode        string `mapstructure:"mode"`
	Strategy    string `mapstructure:"strategy"`
	RowLimit    int    `mapstructure:"row_limit"`
	RPCRowLimit int    `mapstructure:"rpc_row_limit"`
	HistorySize int    `mapstructure:"history_size"`
}

// ConnString returns the PostgreSQL connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../..")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.pool_size", 10)
	viper.SetDefault("jwt_secret", "changeme-secret")
	viper.SetDefault("reporting.mode", "live")
	viper.SetDefault("reporting.strategy", "direct")
	viper.SetDefault("reporting.row_limit", 500)
	viper.SetDefault("reporting.rpc_row_limit", 1000)
	viper.SetDefault("reporting.history_size", 100)

	viper.AutomaticEnv()

	// A missing app.yaml is fine: defaults plus environment variables are
	// a complete configuration. Anything else (unreadable file, bad YAML)
	// still fails.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
