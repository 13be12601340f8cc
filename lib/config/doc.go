// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the relay binaries.
//
// Configuration is loaded from a single file specified by either the
// MASA_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search. Files ending in .json or .jsonc are read as JSON with
// comments; any other file is YAML. Unknown keys are rejected.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production logs default to JSON.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values; the bot token itself
// may come from a named variable (telegram.token_env).
//
// Key exports:
//
//   - [Config] -- master struct with Telegram, Group, Staff, Form,
//     Storage, Serial, Relay and Log sections
//   - [Default] -- returns a Config with defaults for optional fields
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
package config
