// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/ahmed5528/masa-bot/lib/cli"
)

func usersCommand(env *environment) *cli.Command {
	var (
		limit   int
		showIDs bool
	)
	return &cli.Command{
		Name:    "users",
		Summary: "List registered users, most recent first",
		Description: `List registered users with their serial, join time, message count
and last activity.

Platform user ids are hidden unless --show-ids is given: the serial is
the identifier staff work with.`,
		Usage: "masa-relayctl users [--limit N] [--show-ids]",
		Examples: []cli.Example{
			{Description: "Show the 20 most recent registrations", Command: "masa-relayctl users --limit 20"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("users", pflag.ContinueOnError)
			flagSet.IntVar(&limit, "limit", 50, "maximum number of users to list")
			flagSet.BoolVar(&showIDs, "show-ids", false, "include platform user ids")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			if limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			s, err := env.open()
			if err != nil {
				return err
			}
			defer s.Close()

			summaries, err := s.db.Identities().ListUsers(env.ctx, limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(env.stdout, env.styles.faint.Render("No registered users."))
				return nil
			}

			headers := []string{"SERIAL", "NAME", "JOINED", "MESSAGES", "LAST ACTIVITY"}
			if showIDs {
				headers = append(headers, "USER ID")
			}
			rows := make([][]string, 0, len(summaries))
			for _, summary := range summaries {
				row := []string{
					summary.Binding.Serial,
					truncate(summary.Binding.DisplayName, nameWidth),
					formatTime(summary.Binding.JoinedAt),
					strconv.FormatInt(summary.MessageCount, 10),
					formatTime(summary.LastActivity),
				}
				if showIDs {
					row = append(row, strconv.FormatInt(summary.Binding.UserID, 10))
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(env.stdout, env.styles.table(headers, rows))
			return nil
		},
		HelpOutput: env.stderr,
	}
}
