// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
telegram:
  token_file: /run/secrets/bot-token
group:
  chat_id: -1002248454067
staff: [1992092583]
form:
  url: https://forms.example.com/support
storage:
  path: /var/lib/masa/relay.db
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Serial.Prefix != "KCM-" || cfg.SerialRetries() != 1 {
		t.Errorf("serial defaults = %q, %d", cfg.Serial.Prefix, cfg.SerialRetries())
	}
	if cfg.Telegram.PollTimeout.Std() != 30*time.Second {
		t.Errorf("poll_timeout = %s", cfg.Telegram.PollTimeout)
	}
	if cfg.HintUnrelated() {
		t.Error("hint_unrelated_text should default to false")
	}
	if cfg.Relay.Workers != 8 || cfg.Relay.HistoryLimit != 20 {
		t.Errorf("relay defaults = %+v", cfg.Relay)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when MASA_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "MASA_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WithEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, writeConfig(t, "relay.yaml", minimalYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Group.ChatID != -1002248454067 {
		t.Errorf("chat_id = %d", cfg.Group.ChatID)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("minimal config invalid: %v", err)
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := writeConfig(t, "relay.yaml", `
environment: staging
telegram:
  api_url: http://127.0.0.1:8081
  token_env: MASA_BOT_TOKEN
  poll_timeout: 45s
group:
  chat_id: -100
  invite_link_ttl: 1h
staff: [900, 901]
form:
  url: https://forms.example.com/support
serial:
  prefix: SUP-
  max_retries: 0
relay:
  staff_marker: Message from support
  history_limit: 50
  hint_unrelated_text: true
  event_timeout: 5s
  workers: 2
log:
  level: warn
  format: json
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("environment = %s", cfg.Environment)
	}
	if cfg.Telegram.APIURL != "http://127.0.0.1:8081" || cfg.Telegram.TokenEnv != "MASA_BOT_TOKEN" {
		t.Errorf("telegram = %+v", cfg.Telegram)
	}
	if cfg.Telegram.PollTimeout.Std() != 45*time.Second {
		t.Errorf("poll_timeout = %s", cfg.Telegram.PollTimeout)
	}
	if cfg.Telegram.RequestTimeout.Std() != 30*time.Second {
		t.Errorf("request_timeout default lost: %s", cfg.Telegram.RequestTimeout)
	}
	if cfg.Group.InviteLinkTTL.Std() != time.Hour {
		t.Errorf("invite_link_ttl = %s", cfg.Group.InviteLinkTTL)
	}
	if len(cfg.Staff) != 2 || cfg.Staff[1] != 901 {
		t.Errorf("staff = %v", cfg.Staff)
	}
	if cfg.Serial.Prefix != "SUP-" || cfg.SerialRetries() != 0 {
		t.Errorf("serial = %q, %d", cfg.Serial.Prefix, cfg.SerialRetries())
	}
	if !cfg.HintUnrelated() || cfg.Relay.HistoryLimit != 50 || cfg.Relay.Workers != 2 {
		t.Errorf("relay = %+v", cfg.Relay)
	}
	if cfg.Relay.EventTimeout.Std() != 5*time.Second {
		t.Errorf("event_timeout = %s", cfg.Relay.EventTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFileJSONC(t *testing.T) {
	path := writeConfig(t, "relay.jsonc", `{
	// The token is mounted by the orchestrator.
	"telegram": {"token_file": "/run/secrets/bot-token", "request_timeout": "10s"},
	"group": {"chat_id": -42},
	"staff": [7, 8],
	"form": {"url": "https://forms.example.com/support"},
	/* trailing commas are accepted */
	"storage": {"path": "/tmp/relay.db",},
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Telegram.RequestTimeout.Std() != 10*time.Second {
		t.Errorf("request_timeout = %s", cfg.Telegram.RequestTimeout)
	}
	if cfg.Group.ChatID != -42 || len(cfg.Staff) != 2 {
		t.Errorf("group/staff = %d, %v", cfg.Group.ChatID, cfg.Staff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "relay.yaml", "telegram:\n  tokn_file: /x\n"},
		{"json", "relay.json", `{"telegram": {"tokn_file": "/x"}}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := LoadFile(writeConfig(t, test.file, test.content)); err == nil {
				t.Error("expected error for misspelled key")
			}
		})
	}
}

func TestLoadFileBadDuration(t *testing.T) {
	path := writeConfig(t, "relay.yaml", "relay:\n  event_timeout: soon\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "absent.yaml") {
		t.Errorf("error = %v, want one naming the file", err)
	}
}

func TestLoadFileEmptyKeepsDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "relay.yaml", ""))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Relay.Workers != 8 {
		t.Errorf("workers = %d", cfg.Relay.Workers)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "relay.yaml", minimalYAML+`
environment: production
relay:
  workers: 4
production:
  storage:
    path: /srv/masa/relay.db
  relay:
    workers: 16
    hint_unrelated_text: true
  log:
    level: warn
development:
  relay:
    workers: 1
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Storage.Path != "/srv/masa/relay.db" {
		t.Errorf("storage.path = %s", cfg.Storage.Path)
	}
	if cfg.Relay.Workers != 16 || !cfg.HintUnrelated() {
		t.Errorf("relay = %+v", cfg.Relay)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %s", cfg.Log.Level)
	}
	// An explicit production section replaces the implicit JSON default.
	if cfg.Log.Format != FormatAuto {
		t.Errorf("log.format = %s", cfg.Log.Format)
	}
}

func TestProductionDefaultsToJSONLogs(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "relay.yaml", minimalYAML+"environment: production\n"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Log.Format != FormatJSON {
		t.Errorf("log.format = %s, want json", cfg.Log.Format)
	}

	cfg, err = LoadFile(writeConfig(t, "relay.yaml", minimalYAML+"environment: production\nlog:\n  format: text\n"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Log.Format != FormatText {
		t.Errorf("explicit log.format = %s, want text", cfg.Log.Format)
	}
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("HOME", "/home/masa")
	t.Setenv("MASA_SECRETS", "")
	path := writeConfig(t, "relay.yaml", `
telegram:
  token_file: ${MASA_SECRETS:-/etc/masa}/token
log:
  redaction_key_file: ${HOME}/redaction.key
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Telegram.TokenFile != "/etc/masa/token" {
		t.Errorf("token_file = %s", cfg.Telegram.TokenFile)
	}
	if cfg.Log.RedactionKeyFile != "/home/masa/redaction.key" {
		t.Errorf("redaction_key_file = %s", cfg.Log.RedactionKeyFile)
	}
	if cfg.Storage.Path != "/home/masa/.local/share/masa-relay/relay.db" {
		t.Errorf("default storage.path = %s", cfg.Storage.Path)
	}
}

func validConfig() *Config {
	cfg := Default()
	cfg.Telegram.TokenFile = "/run/secrets/bot-token"
	cfg.Group.ChatID = -100
	cfg.Staff = []int64{900}
	cfg.Form.URL = "https://forms.example.com/support"
	cfg.Storage.Path = "/var/lib/masa/relay.db"
	return cfg
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	negative := -1
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "invalid environment"},
		{"no token source", func(c *Config) { c.Telegram.TokenFile = "" }, "token_file or telegram.token_env"},
		{"two token sources", func(c *Config) { c.Telegram.TokenEnv = "TOKEN" }, "mutually exclusive"},
		{"bad api url", func(c *Config) { c.Telegram.APIURL = "ftp://x" }, "telegram.api_url"},
		{"zero group", func(c *Config) { c.Group.ChatID = 0 }, "group.chat_id"},
		{"empty roster", func(c *Config) { c.Staff = nil }, "staff must list"},
		{"bad staff id", func(c *Config) { c.Staff = []int64{900, -5} }, "staff[1]"},
		{"no form", func(c *Config) { c.Form.URL = "" }, "form.url"},
		{"relative form", func(c *Config) { c.Form.URL = "forms/support" }, "form.url"},
		{"long prefix", func(c *Config) { c.Serial.Prefix = "SUPPORT-X" }, "serial.prefix"},
		{"negative retries", func(c *Config) { c.Serial.MaxRetries = &negative }, "serial.max_retries"},
		{"long staff marker", func(c *Config) { c.Relay.StaffMarker = strings.Repeat("m", MaxStaffMarkerLength+1) }, "relay.staff_marker"},
		{"history limit", func(c *Config) { c.Relay.HistoryLimit = MaxHistoryLimit + 1 }, "relay.history_limit"},
		{"no workers", func(c *Config) { c.Relay.Workers = 0 }, "relay.workers"},
		{"no event timeout", func(c *Config) { c.Relay.EventTimeout = 0 }, "relay.event_timeout"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := validConfig()
			test.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error %q does not mention %q", err, test.wantErr)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("empty config accepted")
	}
	for _, want := range []string{"telegram.token_file", "group.chat_id", "staff must list", "form.url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %q:\n%v", want, err)
		}
	}
}

func TestToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("123:abc\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := validConfig()
	cfg.Telegram.TokenFile = path
	token, err := cfg.Token()
	if err != nil {
		t.Fatalf("Token from file: %v", err)
	}
	if token.String() != "123:abc" {
		t.Errorf("token = %q", token.String())
	}
	token.Close()

	t.Setenv("MASA_TEST_TOKEN", "456:def")
	cfg.Telegram.TokenFile = ""
	cfg.Telegram.TokenEnv = "MASA_TEST_TOKEN"
	token, err = cfg.Token()
	if err != nil {
		t.Fatalf("Token from environment: %v", err)
	}
	defer token.Close()
	if token.String() != "456:def" {
		t.Errorf("token = %q", token.String())
	}
	if _, set := os.LookupEnv("MASA_TEST_TOKEN"); set {
		t.Error("token variable left in the environment")
	}
}

func TestEnsureStorageDir(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "nested", "dir", "relay.db")
	if err := cfg.EnsureStorageDir(); err != nil {
		t.Fatalf("EnsureStorageDir: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(cfg.Storage.Path)); err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}
