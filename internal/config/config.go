// Package config loads agent settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/fetch"
	"token-risk-agent/internal/llm"
	"token-risk-agent/internal/tools"
)

// Config is the root agent configuration.
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Solana    SolanaConfig    `mapstructure:"solana"`
	Server    ServerConfig    `mapstructure:"server"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Breaker   BreakerConfig   `mapstructure:"breaker"`
	Upstreams UpstreamsConfig `mapstructure:"upstreams"`
	Teneo     TeneoConfig     `mapstructure:"teneo"`
}

// LLMConfig configures the chat-completions planner.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	BaseURL     string  `mapstructure:"base_url"`
}

// HTTPConfig configures outbound tool calls.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// SolanaConfig configures the JSON-RPC client used by on-chain fallbacks.
type SolanaConfig struct {
	RPCEndpoint string `mapstructure:"rpc_endpoint"`
}

// ServerConfig describes the service surface.
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	AppURL   string `mapstructure:"app_url"`
	MaxTasks int    `mapstructure:"max_tasks"` // retained tasks before eviction
}

// PostgresConfig enables the durable allow-list when DSN is set.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LoggerConfig configures zap.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// BreakerConfig configures the per-upstream circuit breaker.
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// UpstreamsConfig overrides tool base URLs. Empty values use the public endpoints.
type UpstreamsConfig struct {
	GoPlus       string `mapstructure:"goplus"`
	Solscan      string `mapstructure:"solscan"`
	Jupiter      string `mapstructure:"jupiter"`
	Rugcheck     string `mapstructure:"rugcheck"`
	SlowMist     string `mapstructure:"slowmist"`
	CertiK       string `mapstructure:"certik"`
	Helius       string `mapstructure:"helius"`
	HeliusAPIKey string `mapstructure:"helius_api_key"`
	DexScreener  string `mapstructure:"dexscreener"`
}

// TeneoConfig holds Teneo network credentials.
type TeneoConfig struct {
	PrivateKey         string `mapstructure:"private_key"`
	NFTTokenID         string `mapstructure:"nft_token_id"`
	OwnerAddress       string `mapstructure:"owner_address"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
}

// DefaultRPCEndpoint is the public Solana mainnet-beta endpoint.
const DefaultRPCEndpoint = "https://api.mainnet-beta.solana.com"

// envBindings maps config keys to environment variables.
var envBindings = map[string]string{
	"llm.api_key":                 "GOOGLE_API_KEY",
	"llm.model":                   "LLM_MODEL",
	"llm.temperature":             "LLM_TEMPERATURE",
	"llm.max_tokens":              "LLM_MAX_TOKENS",
	"llm.base_url":                "LLM_BASE_URL",
	"http.timeout":                "HTTP_TIMEOUT",
	"solana.rpc_endpoint":         "SOLANA_RPC_ENDPOINT",
	"server.host":                 "SERVER_HOST",
	"server.port":                 "SERVER_PORT",
	"server.app_url":              "APP_URL",
	"server.max_tasks":            "SERVER_MAX_TASKS",
	"postgres.dsn":                "POSTGRES_DSN",
	"logger.level":                "LOG_LEVEL",
	"logger.format":               "LOG_FORMAT",
	"breaker.max_failures":        "BREAKER_MAX_FAILURES",
	"breaker.open_timeout":        "BREAKER_OPEN_TIMEOUT",
	"upstreams.goplus":            "GOPLUS_BASE_URL",
	"upstreams.solscan":           "SOLSCAN_BASE_URL",
	"upstreams.jupiter":           "JUPITER_BASE_URL",
	"upstreams.rugcheck":          "RUGCHECK_BASE_URL",
	"upstreams.slowmist":          "SLOWMIST_BASE_URL",
	"upstreams.certik":            "CERTIK_BASE_URL",
	"upstreams.helius":            "HELIUS_BASE_URL",
	"upstreams.helius_api_key":    "HELIUS_API_KEY",
	"upstreams.dexscreener":       "DEXSCREENER_BASE_URL",
	"teneo.private_key":           "PRIVATE_KEY",
	"teneo.nft_token_id":          "NFT_TOKEN_ID",
	"teneo.owner_address":         "OWNER_ADDRESS",
	"teneo.rate_limit_per_minute": "RATE_LIMIT_PER_MINUTE",
}

// Load reads .env files (default ".env"), then the environment and an optional
// config.yaml, and validates the result. Existing environment variables win
// over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: load env file: %v", domain.ErrConfiguration, err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("%w: bind %s: %v", domain.ErrConfiguration, env, err)
		}
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: read config file: %v", domain.ErrConfiguration, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", domain.ErrConfiguration, err)
	}
	if cfg.Server.AppURL == "" {
		cfg.Server.AppURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.temperature", llm.DefaultTemperature)
	v.SetDefault("llm.max_tokens", llm.DefaultMaxTokens)
	v.SetDefault("llm.base_url", llm.DefaultBaseURL)
	v.SetDefault("http.timeout", fetch.DefaultTimeout)
	v.SetDefault("solana.rpc_endpoint", DefaultRPCEndpoint)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 10002)
	v.SetDefault("server.max_tasks", 1000)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("breaker.max_failures", fetch.DefaultMaxFailures)
	v.SetDefault("breaker.open_timeout", fetch.DefaultOpenTimeout)
}

// Validate checks required settings. A missing LLM credential is fatal.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		problems = append(problems, "GOOGLE_API_KEY is not set; create a .env file with your Google AI API key")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("LLM_TEMPERATURE must be in [0,2], got %v", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		problems = append(problems, fmt.Sprintf("LLM_MAX_TOKENS must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.HTTP.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("HTTP_TIMEOUT must be positive, got %s", c.HTTP.Timeout))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("SERVER_PORT out of range: %d", c.Server.Port))
	}
	if c.Server.MaxTasks <= 0 {
		problems = append(problems, fmt.Sprintf("SERVER_MAX_TASKS must be positive, got %d", c.Server.MaxTasks))
	}
	switch c.Logger.Format {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be json or console, got %q", c.Logger.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Endpoints converts upstream overrides into tool endpoints.
func (c *Config) Endpoints() tools.Endpoints {
	u := c.Upstreams
	return tools.Endpoints{
		GoPlus:       u.GoPlus,
		Solscan:      u.Solscan,
		Jupiter:      u.Jupiter,
		Rugcheck:     u.Rugcheck,
		SlowMist:     u.SlowMist,
		CertiK:       u.CertiK,
		Helius:       u.Helius,
		HeliusAPIKey: u.HeliusAPIKey,
		DexScreener:  u.DexScreener,
	}
}
