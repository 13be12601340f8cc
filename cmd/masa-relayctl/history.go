// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/ahmed5528/masa-bot/lib/cli"
	"github.com/ahmed5528/masa-bot/lib/config"
	"github.com/ahmed5528/masa-bot/lib/conversation"
)

func historyCommand(env *environment) *cli.Command {
	var limit int
	return &cli.Command{
		Name:    "history",
		Summary: "Print a serial's conversation, oldest first",
		Description: `Print the most recent messages of a conversation in chronological
order, one line per message, in the format staff see from /history.

The default limit is the config's relay.history_limit.`,
		Usage: "masa-relayctl history <serial> [--limit N]",
		Examples: []cli.Example{
			{Description: "Show the last 100 messages", Command: "masa-relayctl history KCM-7QX2M4PA --limit 100"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("history", pflag.ContinueOnError)
			flagSet.IntVar(&limit, "limit", 0, fmt.Sprintf("number of messages (1-%d)", config.MaxHistoryLimit))
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one serial, got %d arguments", len(args))
			}
			if limit < 0 || limit > config.MaxHistoryLimit {
				return fmt.Errorf("--limit must be between 1 and %d, got %d", config.MaxHistoryLimit, limit)
			}

			s, err := env.open()
			if err != nil {
				return err
			}
			defer s.Close()

			binding, err := s.resolve(env.ctx, args[0])
			if err != nil {
				return env.notFound(err)
			}
			if limit == 0 {
				limit = s.cfg.Relay.HistoryLimit
			}

			records, err := s.db.Conversations().Recent(env.ctx, binding.UserID, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(env.stdout, env.styles.faint.Render("No messages for "+binding.Serial+"."))
				return nil
			}

			fmt.Fprintln(env.stdout, env.styles.header.Render(
				fmt.Sprintf("History for %s (%d messages):", binding.Serial, len(records))))
			for _, record := range conversation.Chronological(records) {
				fmt.Fprintln(env.stdout, env.styles.historyLine(record))
			}
			return nil
		},
		HelpOutput: env.stderr,
	}
}
