package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Verify    VerifyConfig    `yaml:"verify" mapstructure:"verify"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ProvidersConfig configures the LLM CLI backends.
type ProvidersConfig struct {
	// Primary names the provider tried first: "claude" or "codex".
	Primary string `yaml:"primary" mapstructure:"primary"`

	// ClaudeTimeoutSecs and CodexTimeoutSecs bound one subprocess
	// invocation. Overridable via SHIPNOTE_PROVIDERS_CLAUDE_TIMEOUT_SECS
	// and SHIPNOTE_PROVIDERS_CODEX_TIMEOUT_SECS.
	ClaudeTimeoutSecs int `yaml:"claude_timeout_secs" mapstructure:"claude_timeout_secs"`
	CodexTimeoutSecs  int `yaml:"codex_timeout_secs" mapstructure:"codex_timeout_secs"`

	// RequestsPerMinute throttles provider invocations. Zero disables.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// ClaudeTimeout returns the claude deadline as a duration.
func (p ProvidersConfig) ClaudeTimeout() time.Duration {
	return time.Duration(p.ClaudeTimeoutSecs) * time.Second
}

// CodexTimeout returns the codex deadline as a duration.
func (p ProvidersConfig) CodexTimeout() time.Duration {
	return time.Duration(p.CodexTimeoutSecs) * time.Second
}

// RetryConfig configures per-provider retry behavior.
type RetryConfig struct {
	MaxAttempts        int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffSecs float64 `yaml:"initial_backoff_secs" mapstructure:"initial_backoff_secs"`
	MaxBackoffSecs     float64 `yaml:"max_backoff_secs" mapstructure:"max_backoff_secs"`
}

// VerifyConfig configures evidence verification.
type VerifyConfig struct {
	Enabled     bool `yaml:"enabled" mapstructure:"enabled"`
	Concurrency int  `yaml:"concurrency" mapstructure:"concurrency"`

	// MinConfidence filters entries scoring below it out of the rendered
	// changelog section.
	MinConfidence int `yaml:"min_confidence" mapstructure:"min_confidence"`

	// Penalty knobs; see the verify package for semantics.
	PenaltyFailedSearch  int `yaml:"penalty_failed_search" mapstructure:"penalty_failed_search"`
	PenaltyStubFinding   int `yaml:"penalty_stub_finding" mapstructure:"penalty_stub_finding"`
	PenaltyUnverifiable  int `yaml:"penalty_unverifiable" mapstructure:"penalty_unverifiable"`
	PenaltyClaimMismatch int `yaml:"penalty_claim_mismatch" mapstructure:"penalty_claim_mismatch"`
}

// HistoryConfig configures the run-history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
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
	v.SetConfigName("shipnote")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/shipnote")

	// Environment
	v.SetEnvPrefix("SHIPNOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("providers.primary", "claude")
	v.SetDefault("providers.claude_timeout_secs", 300)
	v.SetDefault("providers.codex_timeout_secs", 300)
	v.SetDefault("providers.requests_per_minute", 0)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_secs", 1.0)
	v.SetDefault("retry.max_backoff_secs", 30.0)
	v.SetDefault("verify.enabled", true)
	v.SetDefault("verify.concurrency", 0)
	v.SetDefault("verify.min_confidence", 0)
	v.SetDefault("verify.penalty_failed_search", 5)
	v.SetDefault("verify.penalty_stub_finding", 15)
	v.SetDefault("verify.penalty_unverifiable", 30)
	v.SetDefault("verify.penalty_claim_mismatch", 20)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", ".shipnote/history.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

	return &cfg, nil
}

// Validate checks configuration consistency before a run.
func (c *Config) Validate() error {
	var problems []string

	switch c.Providers.Primary {
	case "claude", "codex":
	default:
		problems = append(problems, "providers.primary must be claude or codex")
	}
	if c.Providers.ClaudeTimeoutSecs <= 0 || c.Providers.CodexTimeoutSecs <= 0 {
		problems = append(problems, "provider timeouts must be > 0")
	}
	if c.Providers.RequestsPerMinute < 0 {
		problems = append(problems, "providers.requests_per_minute must be >= 0")
	}
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		problems = append(problems, "retry.max_attempts must be between 1 and 10")
	}
	if c.Retry.InitialBackoffSecs <= 0 || c.Retry.MaxBackoffSecs < c.Retry.InitialBackoffSecs {
		problems = append(problems, "retry backoff bounds must satisfy 0 < initial <= max")
	}
	if c.Verify.MinConfidence < 0 || c.Verify.MinConfidence > 100 {
		problems = append(problems, "verify.min_confidence must be between 0 and 100")
	}
	for _, p := range []int{
		c.Verify.PenaltyFailedSearch, c.Verify.PenaltyStubFinding,
		c.Verify.PenaltyUnverifiable, c.Verify.PenaltyClaimMismatch,
	} {
		if p < 0 {
			problems = append(problems, "verify penalties must be >= 0")
			break
		}
	}

	if len(problems) > 0 {
		return eris.New("invalid configuration: " + strings.Join(problems, "; "))
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
