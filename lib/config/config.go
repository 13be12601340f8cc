// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/ahmed5528/masa-bot/lib/secret"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "MASA_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Log formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Bounds checked by Validate.
const (
	MaxSerialPrefixLength = 8
	MaxSerialRetries      = 10
	MaxHistoryLimit       = 200
	MaxStaffMarkerLength  = 256
)

// Config is the relay's configuration.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment" json:"environment"`

	// Telegram configures the Bot API client.
	Telegram TelegramConfig `yaml:"telegram" json:"telegram"`

	// Group is the private group whose members may use the relay.
	Group GroupConfig `yaml:"group" json:"group"`

	// Staff lists the platform user ids allowed to /reply and /history.
	Staff []int64 `yaml:"staff" json:"staff"`

	// Form is the support request form users are sent to.
	Form FormConfig `yaml:"form" json:"form"`

	// Storage configures the SQLite database.
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Serial configures serial generation.
	Serial SerialConfig `yaml:"serial" json:"serial"`

	// Relay configures routing behavior.
	Relay RelayConfig `yaml:"relay" json:"relay"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log" json:"log"`

	// Per-environment overrides, applied after the base config is loaded.
	Development *Overrides `yaml:"development,omitempty" json:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty" json:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// Overrides contains the sections that can be overridden per environment.
// Only non-zero fields replace the base value.
type Overrides struct {
	Telegram *TelegramConfig `yaml:"telegram,omitempty" json:"telegram,omitempty"`
	Storage  *StorageConfig  `yaml:"storage,omitempty" json:"storage,omitempty"`
	Relay    *RelayConfig    `yaml:"relay,omitempty" json:"relay,omitempty"`
	Log      *LogConfig      `yaml:"log,omitempty" json:"log,omitempty"`
}

// TelegramConfig configures the Bot API client.
type TelegramConfig struct {
	// APIURL is the Bot API base URL.
	// Default: https://api.telegram.org
	APIURL string `yaml:"api_url" json:"api_url"`

	// TokenFile is a file holding the bot token. Exactly one of
	// TokenFile and TokenEnv must be set.
	TokenFile string `yaml:"token_file" json:"token_file"`

	// TokenEnv names an environment variable holding the bot token.
	// The variable is removed from the environment once read.
	TokenEnv string `yaml:"token_env" json:"token_env"`

	// PollTimeout is the getUpdates long-poll duration.
	// Default: 30s
	PollTimeout Duration `yaml:"poll_timeout" json:"poll_timeout"`

	// RequestTimeout bounds every other Bot API call.
	// Default: 30s
	RequestTimeout Duration `yaml:"request_timeout" json:"request_timeout"`
}

// GroupConfig identifies the membership group.
type GroupConfig struct {
	// ChatID is the group's chat id (negative for supergroups).
	ChatID int64 `yaml:"chat_id" json:"chat_id"`

	// InviteLinkTTL is how long a fetched invite link is reused.
	// Default: 10m
	InviteLinkTTL Duration `yaml:"invite_link_ttl" json:"invite_link_ttl"`
}

// FormConfig configures the support request form.
type FormConfig struct {
	// URL is the form link shown with the user's serial.
	URL string `yaml:"url" json:"url"`
}

// StorageConfig configures the SQLite database.
type StorageConfig struct {
	// Path is the database file. ${HOME} and ${VAR:-default} are expanded.
	// Default: ${HOME}/.local/share/masa-relay/relay.db
	Path string `yaml:"path" json:"path"`

	// PoolSize is the number of pooled connections.
	// Default: 4
	PoolSize int `yaml:"pool_size" json:"pool_size"`
}

// SerialConfig configures serial generation.
type SerialConfig struct {
	// Prefix opens every serial.
	// Default: KCM-
	Prefix string `yaml:"prefix" json:"prefix"`

	// MaxRetries is how many fresh serials are tried after a collision.
	// Default: 1
	MaxRetries *int `yaml:"max_retries" json:"max_retries"`
}

// RelayConfig configures routing.
type RelayConfig struct {
	// StaffMarker opens staff messages delivered to users.
	// Default: "You have a message from the support team"
	StaffMarker string `yaml:"staff_marker" json:"staff_marker"`

	// HistoryLimit is the default number of records /history shows.
	// Default: 20
	HistoryLimit int `yaml:"history_limit" json:"history_limit"`

	// HintUnrelatedText answers unrelated text from registered users
	// with a hint instead of ignoring it.
	HintUnrelatedText *bool `yaml:"hint_unrelated_text" json:"hint_unrelated_text"`

	// EventTimeout bounds the handling of one inbound event.
	// Default: 30s
	EventTimeout Duration `yaml:"event_timeout" json:"event_timeout"`

	// Workers is the number of dispatch goroutines. Events from one
	// user always land on the same worker.
	// Default: 8
	Workers int `yaml:"workers" json:"workers"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	// Default: info
	Level string `yaml:"level" json:"level"`

	// Format is auto, text or json. Auto selects text on a terminal.
	// Default: auto
	Format string `yaml:"format" json:"format"`

	// RedactionKeyFile holds the key for user references in logs.
	// Without it a random key is used and references change on restart.
	RedactionKeyFile string `yaml:"redaction_key_file" json:"redaction_key_file"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist to give optional fields sensible values, not as a
// fallback - the config file is required.
func Default() *Config {
	retries := 1
	hint := false
	return &Config{
		Environment: Development,
		Telegram: TelegramConfig{
			APIURL:         "https://api.telegram.org",
			PollTimeout:    Duration(30 * time.Second),
			RequestTimeout: Duration(30 * time.Second),
		},
		Group: GroupConfig{
			InviteLinkTTL: Duration(10 * time.Minute),
		},
		Storage: StorageConfig{
			Path:     "${HOME}/.local/share/masa-relay/relay.db",
			PoolSize: 4,
		},
		Serial: SerialConfig{
			Prefix:     "KCM-",
			MaxRetries: &retries,
		},
		Relay: RelayConfig{
			StaffMarker:       "You have a message from the support team",
			HistoryLimit:      20,
			HintUnrelatedText: &hint,
			EventTimeout:      Duration(30 * time.Second),
			Workers:           8,
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatAuto,
		},
	}
}

// Load loads configuration from the MASA_CONFIG environment variable.
//
// There are no fallbacks or defaults - if MASA_CONFIG is not set, this
// fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your relay config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Files ending
// in .json or .jsonc are parsed as JSON with comments; everything else
// as YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		return decoder.Decode(c)
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		err := decoder.Decode(c)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production logs are machine-read unless a format was chosen.
		if overrides == nil && c.Log.Format == FormatAuto {
			overrides = &Overrides{Log: &LogConfig{Format: FormatJSON}}
		}
	}

	if overrides == nil {
		return
	}

	if telegram := overrides.Telegram; telegram != nil {
		setString(&c.Telegram.APIURL, telegram.APIURL)
		if telegram.TokenFile != "" || telegram.TokenEnv != "" {
			c.Telegram.TokenFile = telegram.TokenFile
			c.Telegram.TokenEnv = telegram.TokenEnv
		}
		setDuration(&c.Telegram.PollTimeout, telegram.PollTimeout)
		setDuration(&c.Telegram.RequestTimeout, telegram.RequestTimeout)
	}

	if storage := overrides.Storage; storage != nil {
		setString(&c.Storage.Path, storage.Path)
		if storage.PoolSize != 0 {
			c.Storage.PoolSize = storage.PoolSize
		}
	}

	if relay := overrides.Relay; relay != nil {
		setString(&c.Relay.StaffMarker, relay.StaffMarker)
		if relay.HistoryLimit != 0 {
			c.Relay.HistoryLimit = relay.HistoryLimit
		}
		if relay.HintUnrelatedText != nil {
			c.Relay.HintUnrelatedText = relay.HintUnrelatedText
		}
		setDuration(&c.Relay.EventTimeout, relay.EventTimeout)
		if relay.Workers != 0 {
			c.Relay.Workers = relay.Workers
		}
	}

	if log := overrides.Log; log != nil {
		setString(&c.Log.Level, log.Level)
		setString(&c.Log.Format, log.Format)
		setString(&c.Log.RedactionKeyFile, log.RedactionKeyFile)
	}
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func setDuration(target *Duration, value Duration) {
	if value != 0 {
		*target = value
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Storage.Path = expandVars(c.Storage.Path, vars)
	c.Telegram.TokenFile = expandVars(c.Telegram.TokenFile, vars)
	c.Log.RedactionKeyFile = expandVars(c.Log.RedactionKeyFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	switch {
	case c.Telegram.TokenFile == "" && c.Telegram.TokenEnv == "":
		errs = append(errs, fmt.Errorf("telegram.token_file or telegram.token_env is required"))
	case c.Telegram.TokenFile != "" && c.Telegram.TokenEnv != "":
		errs = append(errs, fmt.Errorf("telegram.token_file and telegram.token_env are mutually exclusive"))
	}
	if parsed, err := url.Parse(c.Telegram.APIURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("telegram.api_url must be an http(s) URL, got %q", c.Telegram.APIURL))
	}
	if c.Telegram.PollTimeout < 0 || c.Telegram.PollTimeout.Std() > 10*time.Minute {
		errs = append(errs, fmt.Errorf("telegram.poll_timeout must be between 0 and 10m"))
	}
	if c.Telegram.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("telegram.request_timeout must be positive"))
	}

	if c.Group.ChatID == 0 {
		errs = append(errs, fmt.Errorf("group.chat_id is required"))
	}
	if c.Group.InviteLinkTTL < 0 {
		errs = append(errs, fmt.Errorf("group.invite_link_ttl must not be negative"))
	}

	if len(c.Staff) == 0 {
		errs = append(errs, fmt.Errorf("staff must list at least one user id"))
	}
	for index, id := range c.Staff {
		if id <= 0 {
			errs = append(errs, fmt.Errorf("staff[%d]: user ids are positive, got %d", index, id))
		}
	}

	if parsed, err := url.Parse(c.Form.URL); c.Form.URL == "" || err != nil || parsed.Scheme == "" {
		errs = append(errs, fmt.Errorf("form.url must be an absolute URL"))
	}

	if c.Storage.Path == "" {
		errs = append(errs, fmt.Errorf("storage.path is required"))
	}
	if c.Storage.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("storage.pool_size must be at least 1"))
	}

	if prefix := c.Serial.Prefix; prefix == "" || len(prefix) > MaxSerialPrefixLength {
		errs = append(errs, fmt.Errorf("serial.prefix must be 1 to %d characters", MaxSerialPrefixLength))
	}
	if retries := c.Serial.MaxRetries; retries == nil || *retries < 0 || *retries > MaxSerialRetries {
		errs = append(errs, fmt.Errorf("serial.max_retries must be between 0 and %d", MaxSerialRetries))
	}

	if marker := c.Relay.StaffMarker; marker == "" || len(marker) > MaxStaffMarkerLength {
		errs = append(errs, fmt.Errorf("relay.staff_marker must be 1 to %d bytes", MaxStaffMarkerLength))
	}
	if c.Relay.HistoryLimit < 1 || c.Relay.HistoryLimit > MaxHistoryLimit {
		errs = append(errs, fmt.Errorf("relay.history_limit must be between 1 and %d", MaxHistoryLimit))
	}
	if c.Relay.EventTimeout <= 0 {
		errs = append(errs, fmt.Errorf("relay.event_timeout must be positive"))
	}
	if c.Relay.Workers < 1 {
		errs = append(errs, fmt.Errorf("relay.workers must be at least 1"))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !contains(levels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levels))
	}
	formats := []string{FormatAuto, FormatText, FormatJSON}
	if !contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Token reads the bot token from the configured source.
func (c *Config) Token() (*secret.Buffer, error) {
	if c.Telegram.TokenFile != "" {
		return secret.ReadFromPath(c.Telegram.TokenFile)
	}
	if c.Telegram.TokenEnv != "" {
		return secret.ReadFromEnvironment(c.Telegram.TokenEnv)
	}
	return nil, fmt.Errorf("config: no telegram token source configured")
}

// HintUnrelated reports relay.hint_unrelated_text.
func (c *Config) HintUnrelated() bool {
	return c.Relay.HintUnrelatedText != nil && *c.Relay.HintUnrelatedText
}

// SerialRetries reports serial.max_retries.
func (c *Config) SerialRetries() int {
	if c.Serial.MaxRetries == nil {
		return 0
	}
	return *c.Serial.MaxRetries
}

// EnsureStorageDir creates the directory holding the database.
func (c *Config) EnsureStorageDir() error {
	directory := filepath.Dir(c.Storage.Path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
