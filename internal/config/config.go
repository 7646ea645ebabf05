// Package config resolves server settings from defaults, an optional .env
// file, FEEDBACK_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // time zones resolve without a system database

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "FEEDBACK_"

// Config holds the server settings.
type Config struct {
	DBPath  string
	Addr    string
	LogPath string
	// Secret seeds the token signing key. Empty means use the secret
	// stored in the database.
	Secret   string
	TimeZone string
	// SubmitRate is the sustained number of submissions allowed per
	// caller per minute; SubmitBurst is the bucket size.
	SubmitRate     float64
	SubmitBurst    int
	WebhookURL     string
	WebhookTimeout time.Duration

	// Location is TimeZone resolved by Validate.
	Location *time.Location
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:         "feedback.sqlite3",
		Addr:           ":8080",
		TimeZone:       "UTC",
		SubmitRate:     6,
		SubmitBurst:    3,
		WebhookTimeout: 5 * time.Second,
	}
}

// LoadEnv applies the variables of the .env file at path (if it exists)
// and then the process environment to c. Process variables win.
func (c *Config) LoadEnv(path string) error {
	fileVars := map[string]string{}
	if path != "" {
		vars, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if vars != nil {
			fileVars = vars
		}
	}

	return c.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("DB", &c.DBPath)
	str("ADDR", &c.Addr)
	str("LOG", &c.LogPath)
	str("SECRET", &c.Secret)
	str("TZ", &c.TimeZone)
	str("WEBHOOK_URL", &c.WebhookURL)

	if v, ok := lookup(EnvPrefix + "SUBMIT_RATE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sSUBMIT_RATE: %w", EnvPrefix, err)
		}
		c.SubmitRate = f
	}
	if v, ok := lookup(EnvPrefix + "SUBMIT_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSUBMIT_BURST: %w", EnvPrefix, err)
		}
		c.SubmitBurst = n
	}
	if v, ok := lookup(EnvPrefix + "WEBHOOK_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sWEBHOOK_TIMEOUT: %w", EnvPrefix, err)
		}
		c.WebhookTimeout = d
	}
	return nil
}

// AddFlags binds the server flags to c. Current values of c become the
// flag defaults, so call it after LoadEnv.
func (c *Config) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&c.DBPath, "db", "d", c.DBPath, "SQLite database path")
	flagSet.StringVarP(&c.Addr, "addr", "a", c.Addr, "listen address")
	flagSet.StringVarP(&c.LogPath, "log", "l", c.LogPath, "log file path (rotated; default: stdout/stderr only)")
	flagSet.StringVar(&c.Secret, "secret", c.Secret, "token signing secret (default: generated and stored in the database)")
	flagSet.StringVar(&c.TimeZone, "tz", c.TimeZone, "reference time zone for date ranges")
	flagSet.Float64Var(&c.SubmitRate, "submit-rate", c.SubmitRate, "submissions per caller per minute")
	flagSet.IntVar(&c.SubmitBurst, "submit-burst", c.SubmitBurst, "submission burst per caller")
	flagSet.StringVar(&c.WebhookURL, "webhook", c.WebhookURL, "URL receiving change notifications as JSON")
	flagSet.DurationVar(&c.WebhookTimeout, "webhook-timeout", c.WebhookTimeout, "timeout of one notification delivery")
}

// Validate checks the settings and resolves Location.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path required")
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address required")
	}
	if c.SubmitRate <= 0 || c.SubmitBurst < 1 {
		return fmt.Errorf("submit rate and burst must be positive")
	}
	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("webhook timeout must be positive")
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("time zone %q: %w", c.TimeZone, err)
	}
	c.Location = loc
	return nil
}
