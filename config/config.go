package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// EnvPrefix prefixes every environment override, e.g. HOLOCRON_API_URL
const EnvPrefix = "HOLOCRON"

// Load loads the configuration from defaults, an optional config file, a
// .env file and the environment, in increasing order of precedence. A missing
// config file is only an error when configPath names it explicitly.
func Load(configPath string) (*Config, error) {
	// .env is optional; variables already set in the environment win
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".holocron"))
		}

		v.AddConfigPath("/etc/holocron/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.API.URL = strings.TrimSpace(cfg.API.URL)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.url", "https://swapi.dev/api")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.user_agent", "holocron")

	// List defaults
	v.SetDefault("list.sort_by_name", false)
	v.SetDefault("list.locale", "en")

	// Filter defaults
	v.SetDefault("filter.workers", 0)
	v.SetDefault("filter.batch_size", 100)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.service_name", "holocron")
}

// bindEnv maps HOLOCRON_SECTION_KEY variables onto section.key. SWAPI_URL is
// accepted as a fallback for the API base URL.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("api.url", EnvPrefix+"_API_URL", "SWAPI_URL")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatValidationError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their config key instead of the Go field name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
		_, err := language.Parse(fl.Field().String())
		return err == nil
	})

	return validate
}

// formatValidationError formats a field error as a config key message
func formatValidationError(err validator.FieldError) string {
	key := configKey(err)

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL, got %q", key, err.Value())
	case "oneof":
		return fmt.Sprintf("invalid %s: %v (must be one of: %s)", key, err.Value(), strings.ReplaceAll(err.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", key, err.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", key, err.Param())
	case "locale":
		return fmt.Sprintf("%s must be a BCP 47 language tag, got %q", key, err.Value())
	default:
		return fmt.Sprintf("%s is invalid", key)
	}
}

// configKey turns the namespace Config.api.url into api.url
func configKey(err validator.FieldError) string {
	ns := err.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
