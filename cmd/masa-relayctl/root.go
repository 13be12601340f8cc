// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/ahmed5528/masa-bot/lib/cli"

func root(env *environment) *cli.Command {
	return &cli.Command{
		Name:    "masa-relayctl",
		Summary: "Inspect a support relay database",
		Description: `Operator commands over the relay's SQLite database.

Global flags go before the command:
  --config FILE   relay config file (default: $MASA_CONFIG)
  --no-color      disable colored output
  --version       print version information`,
		Usage: "masa-relayctl [--config FILE] [--no-color] <command> [flags]",
		Subcommands: []*cli.Command{
			usersCommand(env),
			lookupCommand(env),
			historyCommand(env),
			exportCommand(env),
		},
		HelpOutput: env.stderr,
	}
}
