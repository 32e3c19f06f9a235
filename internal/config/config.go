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
	Document  DocumentConfig  `yaml:"document" mapstructure:"document"`
	TOC       TOCConfig       `yaml:"toc" mapstructure:"toc"`
	Locator   LocatorConfig   `yaml:"locator" mapstructure:"locator"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	OCRFlux   OCRFluxConfig   `yaml:"ocrflux" mapstructure:"ocrflux"`
	Insight   InsightConfig   `yaml:"insight" mapstructure:"insight"`
	Reconcile ReconcileConfig `yaml:"reconcile" mapstructure:"reconcile"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DocumentConfig configures PDF access.
type DocumentConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	RenderDPI     int    `yaml:"render_dpi" mapstructure:"render_dpi"`
}

// TOCConfig configures table-of-contents parsing.
type TOCConfig struct {
	// FrontMatterPages is how many leading pages are scanned for TOC lines.
	FrontMatterPages int `yaml:"front_matter_pages" mapstructure:"front_matter_pages"`
	// MinDeclaredPage discards TOC matches pointing into front matter;
	// county chapters never start that early.
	MinDeclaredPage int `yaml:"min_declared_page" mapstructure:"min_declared_page"`
}

// LocatorConfig configures section resolution.
type LocatorConfig struct {
	// PageOffset is the constant gap between TOC-declared and physical
	// page numbers for this report edition.
	PageOffset int `yaml:"page_offset" mapstructure:"page_offset"`
	// MaxRangePages caps a resolved section range.
	MaxRangePages int `yaml:"max_range_pages" mapstructure:"max_range_pages"`
	// LastEntryPages is the assumed section length for the final TOC entry.
	LastEntryPages int `yaml:"last_entry_pages" mapstructure:"last_entry_pages"`
	// HeaderSearchWindow is how many pages either side of the computed
	// start are searched for the county header before giving up.
	HeaderSearchWindow int `yaml:"header_search_window" mapstructure:"header_search_window"`
}

// ExtractConfig configures the tiered extraction orchestrator.
type ExtractConfig struct {
	Workers           int   `yaml:"workers" mapstructure:"workers"`
	RemoteTimeoutSecs int   `yaml:"remote_timeout_secs" mapstructure:"remote_timeout_secs"`
	MinPayloadChars   int   `yaml:"min_payload_chars" mapstructure:"min_payload_chars"`
	SummaryPages      []int `yaml:"summary_pages" mapstructure:"summary_pages"`
}

// RemoteTimeout returns the per-page remote call timeout.
func (c ExtractConfig) RemoteTimeout() time.Duration {
	return time.Duration(c.RemoteTimeoutSecs) * time.Second
}

// OCRFluxConfig holds remote vision-OCR service settings.
type OCRFluxConfig struct {
	URL         string  `yaml:"url" mapstructure:"url"`
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// InsightConfig holds secondary structured-analysis (Anthropic) settings.
type InsightConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// Enabled reports whether the secondary analysis source is configured.
func (c InsightConfig) Enabled() bool {
	return c.Key != ""
}

// ReconcileConfig configures cross-source validation.
type ReconcileConfig struct {
	// DisagreementThreshold is the relative delta above which two sources
	// are considered in conflict (0.15 = 15%).
	DisagreementThreshold float64 `yaml:"disagreement_threshold" mapstructure:"disagreement_threshold"`
	// LowConfidenceFloor flags results whose extraction confidence is
	// below this value.
	LowConfidenceFloor int `yaml:"low_confidence_floor" mapstructure:"low_confidence_floor"`
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
	v.SetEnvPrefix("COUNTYLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("document.pdftotext_path", "pdftotext")
	v.SetDefault("document.render_dpi", 200)
	v.SetDefault("toc.front_matter_pages", 20)
	v.SetDefault("toc.min_declared_page", 40)
	v.SetDefault("locator.page_offset", 46)
	v.SetDefault("locator.max_range_pages", 16)
	v.SetDefault("locator.last_entry_pages", 4)
	v.SetDefault("locator.header_search_window", 5)
	v.SetDefault("extract.workers", 4)
	v.SetDefault("extract.remote_timeout_secs", 120)
	v.SetDefault("extract.min_payload_chars", 50)
	v.SetDefault("extract.summary_pages", []int{47, 48, 49, 50, 51})
	v.SetDefault("ocrflux.rate_per_sec", 2.0)
	v.SetDefault("ocrflux.max_attempts", 1)
	v.SetDefault("insight.model", "claude-haiku-4-5-20251001")
	v.SetDefault("insight.max_tokens", 2048)
	v.SetDefault("reconcile.disagreement_threshold", 0.15)
	v.SetDefault("reconcile.low_confidence_floor", 50)

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
