package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/abhisek/studyloop/internal/calendar"
	"github.com/abhisek/studyloop/internal/review"
	"github.com/abhisek/studyloop/internal/study"
)

// EnvPrefix prefixes every environment override, e.g. STUDYLOOP_LOG_LEVEL.
const EnvPrefix = "STUDYLOOP"

// Config holds all configuration for the application.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

// DatabaseConfig selects the store backend. An empty SQLite DSN resolves to
// the default data path.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// SchedulerConfig configures review scheduling.
type SchedulerConfig struct {
	Variant          string  `mapstructure:"variant" validate:"oneof=adaptive phase fsrs"`
	MaxIntervalDays  int     `mapstructure:"max_interval_days" validate:"min=1,max=3650"`
	RatingScale      string  `mapstructure:"rating_scale" validate:"oneof=4 5"`
	DesiredRetention float64 `mapstructure:"desired_retention" validate:"gt=0,lt=1"`
}

// RetryConfig configures retries of conflicting review writes.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
	InitialWait time.Duration `mapstructure:"initial_wait" validate:"gte=0"`
	MaxWait     time.Duration `mapstructure:"max_wait" validate:"gtefield=InitialWait"`
	Multiplier  float64       `mapstructure:"multiplier" validate:"gte=1"`
}

// CalendarConfig selects the reminder calendar.
type CalendarConfig struct {
	Provider   string `mapstructure:"provider" validate:"oneof=disabled mock google"`
	CalendarID string `mapstructure:"calendar_id"`
}

// HTTPConfig configures the JSON API server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

// Load reads configuration from defaults, an optional studyloop.yaml and
// STUDYLOOP_* environment variables, in increasing priority. A non-empty
// path names the config file explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("studyloop")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$XDG_CONFIG_HOME/studyloop")
		v.AddConfigPath("$HOME/.config/studyloop")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetDefault("scheduler.variant", string(review.VariantAdaptive))
	v.SetDefault("scheduler.max_interval_days", review.DefaultMaxIntervalDays)
	v.SetDefault("scheduler.rating_scale", "5")
	v.SetDefault("scheduler.desired_retention", review.DefaultFSRSParams().DesiredRetention)

	retry := study.DefaultRetryConfig()
	v.SetDefault("retry.max_attempts", retry.MaxAttempts)
	v.SetDefault("retry.initial_wait", retry.InitialWait)
	v.SetDefault("retry.max_wait", retry.MaxWait)
	v.SetDefault("retry.multiplier", retry.Multiplier)

	v.SetDefault("calendar.provider", "disabled")
	v.SetDefault("calendar.calendar_id", "primary")

	v.SetDefault("http.addr", "127.0.0.1:8080")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// ReviewConfig converts to the scheduler's configuration.
func (c *Config) ReviewConfig() review.Config {
	fsrs := review.DefaultFSRSParams()
	fsrs.DesiredRetention = c.Scheduler.DesiredRetention
	return review.Config{
		Variant:         review.Variant(c.Scheduler.Variant),
		MaxIntervalDays: c.Scheduler.MaxIntervalDays,
		FSRS:            fsrs,
	}
}

// Scale returns the configured input rating scale.
func (c *Config) Scale() review.Scale {
	s, err := review.ParseScale(c.Scheduler.RatingScale)
	if err != nil {
		return review.Scale5
	}
	return s
}

// StudyRetry converts to the study service's retry policy.
func (c *Config) StudyRetry() study.RetryConfig {
	return study.RetryConfig{
		MaxAttempts: c.Retry.MaxAttempts,
		InitialWait: c.Retry.InitialWait,
		MaxWait:     c.Retry.MaxWait,
		Multiplier:  c.Retry.Multiplier,
	}
}

// CalendarProvider converts to the calendar factory configuration.
func (c *Config) CalendarProvider() calendar.Config {
	return calendar.Config{Provider: c.Calendar.Provider, CalendarID: c.Calendar.CalendarID}
}
