package config

import (
	"time"

	"golang.org/x/text/language"
)

// Config represents the complete configuration structure
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	List      ListConfig      `mapstructure:"list"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// APIConfig holds SWAPI connection details
type APIConfig struct {
	URL       string        `mapstructure:"url" validate:"required,http_url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent"`
}

// ListConfig controls how planet pages are presented
type ListConfig struct {
	SortByName bool   `mapstructure:"sort_by_name"`
	Locale     string `mapstructure:"locale" validate:"required,locale"`
}

// Language returns the collation language for Locale, English if it does not parse
func (c ListConfig) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// FilterConfig contains the default filter and named presets.
// Preset names are lower-cased by the config loader.
type FilterConfig struct {
	Default string            `mapstructure:"default"`
	Presets map[string]string `mapstructure:"presets"`
	// Workers is the size of the evaluation pool; 0 uses every CPU
	Workers int `mapstructure:"workers" validate:"gte=0"`
	// BatchSize is the page size from which evaluation is split across workers
	BatchSize int `mapstructure:"batch_size" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	Color  bool   `mapstructure:"color"`
}

// TelemetryConfig controls OTLP trace export
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint" validate:"omitempty,url"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
}
