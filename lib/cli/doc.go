// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the command-line scaffolding shared by the relay
// binaries: a [Command] tree dispatched by the first positional
// argument with per-command pflag sets, typo suggestions for unknown
// commands and flags, [ExitError] for handled non-zero exits, and the
// process logger constructor [NewLogger].
package cli
