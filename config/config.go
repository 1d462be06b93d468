// Package config loads the tradestats configuration.
//
// Values come, by increasing precedence, from defaults, an optional
// configuration file (YAML, TOML or JSON), a .env file and TRADESTATS_*
// environment variables. Nested keys use an underscore in the environment:
// server.port is TRADESTATS_SERVER_PORT.
package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/renderer"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes the environment variables overriding the configuration.
const EnvPrefix = "TRADESTATS"

// EnvConfigFile names the configuration file when none is given.
const EnvConfigFile = EnvPrefix + "_CONFIG_FILE"

// Config is the tradestats configuration.
type Config struct {
	Ledger           string  `mapstructure:"ledger"`
	Currency         string  `mapstructure:"currency"`
	RiskFreeRate     float64 `mapstructure:"risk_free_rate"`
	DrawdownOnEquity bool    `mapstructure:"drawdown_on_equity"`
	CumulativeStep   int     `mapstructure:"cumulative_step"`
	MaxPoints        int     `mapstructure:"max_points"`
	Theme            string  `mapstructure:"theme"`

	Server    Server               `mapstructure:"server"`
	Mongo     Mongo                `mapstructure:"mongo"`
	Log       Log                  `mapstructure:"log"`
	Gemini    Gemini               `mapstructure:"gemini"`
	JSONPaths tradestats.JSONPaths `mapstructure:"json_paths"`
}

// Server configures the HTTP dashboard.
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Mongo configures the trade store. An empty URI disables it.
type Mongo struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// Log configures the logger.
type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Gemini configures the commentary assistant.
type Gemini struct {
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`
}

// Defaults.
const (
	DefaultLedger          = "trades.jsonl"
	DefaultCurrency        = "INR"
	DefaultTheme           = "slate"
	DefaultHost            = "localhost"
	DefaultPort            = 8080
	DefaultShutdownTimeout = 5 * time.Second
	DefaultLogLevel        = "info"
	DefaultGeminiModel     = "gemini-2.5-flash"
)

func setDefaults(v *viper.Viper) {
	paths := tradestats.DefaultJSONPaths()
	defaults := map[string]any{
		"ledger":                  DefaultLedger,
		"currency":                DefaultCurrency,
		"risk_free_rate":          tradestats.DefaultRiskFreeRate,
		"drawdown_on_equity":      false,
		"cumulative_step":         1,
		"max_points":              0,
		"theme":                   DefaultTheme,
		"server.host":             DefaultHost,
		"server.port":             DefaultPort,
		"server.shutdown_timeout": DefaultShutdownTimeout,
		"mongo.uri":               "",
		"mongo.database":          "tradestats",
		"mongo.collection":        "ledger",
		"log.level":               DefaultLogLevel,
		"log.development":         false,
		"gemini.model":            DefaultGeminiModel,
		"gemini.api_key":          "",
		"json_paths.trades":       paths.Trades,
		"json_paths.symbol":       paths.Symbol,
		"json_paths.date":         paths.Date,
		"json_paths.pnl":          paths.PnL,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Load reads the configuration.
//
// An empty path falls back to $TRADESTATS_CONFIG_FILE, then looks for an
// optional tradestats.{yaml,toml,json} in the working directory. A non-empty
// path must exist. The result is validated.
func Load(path string) (*Config, error) {
	// a missing .env is fine.
	_ = godotenv.Load()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
		}
	} else {
		v.SetConfigName("tradestats")
		v.AddConfigPath(".")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode configuration: %w", err)
	}
	// the conventional variable name is accepted too.
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration values and reports all the errors at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Ledger == "" && c.Mongo.URI == "" {
		errs = append(errs, errors.New("no ledger: set ledger or mongo.uri"))
	}
	if c.Currency == "" {
		errs = append(errs, errors.New("currency is empty"))
	}
	if math.IsNaN(c.RiskFreeRate) || math.IsInf(c.RiskFreeRate, 0) {
		errs = append(errs, fmt.Errorf("invalid risk_free_rate %v", c.RiskFreeRate))
	}
	if c.CumulativeStep < 0 {
		errs = append(errs, fmt.Errorf("invalid cumulative_step %d", c.CumulativeStep))
	}
	if c.MaxPoints < 0 {
		errs = append(errs, fmt.Errorf("invalid max_points %d", c.MaxPoints))
	}
	if _, err := renderer.ThemeByName(c.Theme); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server.port %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("invalid server.shutdown_timeout %v", c.Server.ShutdownTimeout))
	}
	if c.Mongo.URI != "" && (c.Mongo.Database == "" || c.Mongo.Collection == "") {
		errs = append(errs, errors.New("mongo.database and mongo.collection are required with mongo.uri"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log.level: %w", err))
	}
	return errors.Join(errs...)
}

// Options returns the derivation options.
func (c *Config) Options() tradestats.Options {
	opts := tradestats.DefaultOptions()
	opts.RiskFreeRate = c.RiskFreeRate
	opts.DrawdownOnEquity = c.DrawdownOnEquity
	opts.CumulativeStep = c.CumulativeStep
	opts.MaxPoints = c.MaxPoints
	return opts
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
