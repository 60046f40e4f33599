package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/outreach-cli/internal/cost"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Verifier  VerifierConfig  `yaml:"verifier" mapstructure:"verifier"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Apify     ApifyConfig     `yaml:"apify" mapstructure:"apify"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	SMTP      SMTPConfig      `yaml:"smtp" mapstructure:"smtp"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Pricing   cost.Rates      `yaml:"pricing" mapstructure:"pricing"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// VerifierConfig holds email verification vendor settings.
type VerifierConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   int    `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// DiscoveryConfig configures per-domain discovery behavior.
type DiscoveryConfig struct {
	MaxExhaustive int `yaml:"max_exhaustive" mapstructure:"max_exhaustive"`
	MaxTargets    int `yaml:"max_targets" mapstructure:"max_targets"`
	MinRelevance  int `yaml:"min_relevance" mapstructure:"min_relevance"`
}

// AnthropicConfig holds Anthropic API settings for outreach drafting.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ApifyConfig holds Apify actor settings for contact scraping.
type ApifyConfig struct {
	Token       string `yaml:"token" mapstructure:"token"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	ActorID     string `yaml:"actor_id" mapstructure:"actor_id"`
	PollSecs    int    `yaml:"poll_secs" mapstructure:"poll_secs"`
	MaxPollSecs int    `yaml:"max_poll_secs" mapstructure:"max_poll_secs"`
}

// NotionConfig holds Notion API credentials and database IDs.
type NotionConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	ContactDB string `yaml:"contact_db" mapstructure:"contact_db"`
}

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	From     string `yaml:"from" mapstructure:"from"`
}

// ScoringConfig points at an optional YAML override for the scoring tables.
type ScoringConfig struct {
	TablesPath string `yaml:"tables_path" mapstructure:"tables_path"`
}

// BatchConfig configures multi-domain batch processing.
type BatchConfig struct {
	MaxConcurrentDomains int `yaml:"max_concurrent_domains" mapstructure:"max_concurrent_domains"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "outreach.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_domains", 5)
	v.SetDefault("verifier.base_url", "https://api.millionverifier.com")
	v.SetDefault("verifier.timeout_secs", 10)
	v.SetDefault("verifier.rate_limit", 2)
	v.SetDefault("discovery.max_exhaustive", 5)
	v.SetDefault("discovery.max_targets", 3)
	v.SetDefault("discovery.min_relevance", 40)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("apify.base_url", "https://api.apify.com")
	v.SetDefault("apify.poll_secs", 5)
	v.SetDefault("apify.max_poll_secs", 300)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("pricing.verifier.per_credit", 0.0037)
	v.SetDefault("pricing.apify.per_run", 0.01)
	v.SetDefault("pricing.apify.per_dataset_row", 0.002)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if len(cfg.Pricing.Anthropic) == 0 {
		cfg.Pricing.Anthropic = cost.DefaultRates().Anthropic
	}

	return &cfg, nil
}

// Validate checks that the fields required for the given mode are set.
// Modes: "discover" (store + catalog work, verifier key optional),
// "outreach" (anthropic + smtp), "scrape" (apify), "serve" (server + store).
func (c *Config) Validate(mode string) error {
	var missing []string

	checkStore := func() {
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required")
		}
	}

	switch mode {
	case "discover":
		checkStore()
	case "outreach":
		if c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required")
		}
		if c.SMTP.Host != "" && c.SMTP.From == "" {
			missing = append(missing, "smtp.from is required when smtp.host is set")
		}
	case "scrape":
		if c.Apify.Token == "" {
			missing = append(missing, "apify.token is required")
		}
		if c.Apify.ActorID == "" {
			missing = append(missing, "apify.actor_id is required")
		}
	case "serve":
		checkStore()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
		if c.Batch.MaxConcurrentDomains < 1 || c.Batch.MaxConcurrentDomains > 50 {
			missing = append(missing, "batch.max_concurrent_domains must be between 1 and 50")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
