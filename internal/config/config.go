// Package config loads ophaaldagen settings from an optional YAML file,
// OPHAALDAGEN_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/klabast/wb-services/ophaaldagen/internal/logger"
	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
)

// Defaults
const (
	DefaultSeenonsBaseURL  = "https://api-dev-593.seenons.com/api/me"
	DefaultHuisvuilBaseURL = "https://huisvuilkalender.denhaag.nl"
	DefaultTimeout         = 15 * time.Second
	DefaultRateLimit       = 5.0
	DefaultUserAgent       = "ophaaldagen/1.0"
	DefaultFormat          = "text"

	EnvPrefix  = "OPHAALDAGEN"
	ConfigName = "ophaaldagen"
)

// Viper keys
const (
	KeySeenonsBaseURL  = "seenons.base_url"
	KeyHuisvuilBaseURL = "huisvuil.base_url"
	KeyHTTPTimeout     = "http.timeout"
	KeyHTTPRateLimit   = "http.rate_limit"
	KeyHTTPUserAgent   = "http.user_agent"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyLogOutput       = "log.output"
	KeyMatchDirection  = "match.direction"
	KeyMatchTieBreak   = "match.tie_break"
	KeyOutputFormat    = "output.format"
)

// Formats lists the report formats the CLI can render
var Formats = []string{"text", "json", "csv", "ics", "yaml"}

// ErrInvalidConfig is returned when a loaded value fails validation
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all ophaaldagen configuration
type Config struct {
	Seenons  ServiceConfig
	Huisvuil ServiceConfig
	HTTP     HTTPConfig
	Log      logger.Config
	Match    MatchConfig
	Output   OutputConfig

	// File is the config file that was read, empty when none was found
	File string
}

// ServiceConfig locates one remote service
type ServiceConfig struct {
	BaseURL string
}

// HTTPConfig is shared by both remote clients
type HTTPConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables pacing
	UserAgent string
}

// MatchConfig selects the name-match policy
type MatchConfig struct {
	Direction reconcile.Direction
	TieBreak  reconcile.TieBreak
}

// Policy returns the reconciler's match policy
func (m MatchConfig) Policy() reconcile.Policy {
	return reconcile.Policy{Direction: m.Direction, TieBreak: m.TieBreak}
}

// OutputConfig holds presentation settings
type OutputConfig struct {
	Format string
}

// NewViper returns a viper instance with defaults and environment binding set up.
// Callers bind their flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeySeenonsBaseURL, DefaultSeenonsBaseURL)
	v.SetDefault(KeyHuisvuilBaseURL, DefaultHuisvuilBaseURL)
	v.SetDefault(KeyHTTPTimeout, DefaultTimeout)
	v.SetDefault(KeyHTTPRateLimit, DefaultRateLimit)
	v.SetDefault(KeyHTTPUserAgent, DefaultUserAgent)

	logDefaults := logger.DefaultConfig()
	v.SetDefault(KeyLogLevel, logDefaults.Level)
	v.SetDefault(KeyLogFormat, logDefaults.Format)
	v.SetDefault(KeyLogOutput, logDefaults.Output)

	v.SetDefault(KeyMatchDirection, string(reconcile.NamePrefixOfTitle))
	v.SetDefault(KeyMatchTieBreak, string(reconcile.TieBreakLast))
	v.SetDefault(KeyOutputFormat, DefaultFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (explicit path, or ophaaldagen.yaml in the working
// directory or ~/.config/ophaaldagen) into v and builds a validated Config.
// A missing default config file is fine; a missing explicit one is not.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	direction, err := reconcile.ParseDirection(v.GetString(KeyMatchDirection))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	tieBreak, err := reconcile.ParseTieBreak(v.GetString(KeyMatchTieBreak))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := &Config{
		Seenons:  ServiceConfig{BaseURL: v.GetString(KeySeenonsBaseURL)},
		Huisvuil: ServiceConfig{BaseURL: v.GetString(KeyHuisvuilBaseURL)},
		HTTP: HTTPConfig{
			Timeout:   v.GetDuration(KeyHTTPTimeout),
			RateLimit: v.GetFloat64(KeyHTTPRateLimit),
			UserAgent: v.GetString(KeyHTTPUserAgent),
		},
		Log: logger.Config{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			Output: v.GetString(KeyLogOutput),
		},
		Match: MatchConfig{
			Direction: direction,
			TieBreak:  tieBreak,
		},
		Output: OutputConfig{
			Format: strings.ToLower(v.GetString(KeyOutputFormat)),
		},
		File: v.ConfigFileUsed(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	for name, base := range map[string]string{
		KeySeenonsBaseURL:  c.Seenons.BaseURL,
		KeyHuisvuilBaseURL: c.Huisvuil.BaseURL,
	} {
		if err := validateBaseURL(base); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyHTTPTimeout, c.HTTP.Timeout))
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %v", KeyHTTPRateLimit, c.HTTP.RateLimit))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	if !slices.Contains(Formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("%s must be one of %s, got %q",
			KeyOutputFormat, strings.Join(Formats, ", "), c.Output.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL has no host: %q", raw)
	}
	return nil
}
