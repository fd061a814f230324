package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leadscope/lead-cli/internal/cost"
)

// Config holds the full application configuration. It is built once at
// startup, validated, and passed by reference into the orchestrator and its
// collaborators — never read ad hoc per call.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
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

// AnthropicConfig holds Anthropic API settings and the per-stage model
// assignments. Triage and the preprocessor run on the cheap model; the main
// analysis model steps up with the tier.
type AnthropicConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	TriageModel       string `yaml:"triage_model" mapstructure:"triage_model"`
	PreprocessorModel string `yaml:"preprocessor_model" mapstructure:"preprocessor_model"`
	LightModel        string `yaml:"light_model" mapstructure:"light_model"`
	DeepModel         string `yaml:"deep_model" mapstructure:"deep_model"`
	XRayModel         string `yaml:"xray_model" mapstructure:"xray_model"`
	ContextModel      string `yaml:"context_model" mapstructure:"context_model"`
}

// BatchConfig configures bulk analysis. Leads run in groups of GroupSize
// with a pause between groups to respect upstream rate limits.
type BatchConfig struct {
	GroupSize      int `yaml:"group_size" mapstructure:"group_size"`
	GroupPauseSecs int `yaml:"group_pause_secs" mapstructure:"group_pause_secs"`
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
	v.SetEnvPrefix("LEADSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadscope.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.group_size", 5)
	v.SetDefault("batch.group_pause_secs", 2)
	// An explicit empty default makes the key visible to AutomaticEnv.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.triage_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.preprocessor_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.light_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.deep_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.xray_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.context_model", "claude-sonnet-4-5-20250929")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	cfg := &Config{Pricing: cost.DefaultRates()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return cfg, nil
}

// Validate enforces required fields once at startup.
func (c *Config) Validate() error {
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic.key is required")
	}
	for name, model := range map[string]string{
		"anthropic.triage_model":       c.Anthropic.TriageModel,
		"anthropic.preprocessor_model": c.Anthropic.PreprocessorModel,
		"anthropic.light_model":        c.Anthropic.LightModel,
		"anthropic.deep_model":         c.Anthropic.DeepModel,
		"anthropic.xray_model":         c.Anthropic.XRayModel,
		"anthropic.context_model":      c.Anthropic.ContextModel,
	} {
		if model == "" {
			return eris.Errorf("config: %s is required", name)
		}
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unsupported store.driver %q", c.Store.Driver)
	}
	if c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url is required")
	}

	if c.Batch.GroupSize < 1 {
		return eris.New("config: batch.group_size must be at least 1")
	}
	if c.Batch.GroupPauseSecs < 0 {
		return eris.New("config: batch.group_pause_secs must not be negative")
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
