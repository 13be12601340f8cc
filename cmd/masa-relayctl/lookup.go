// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/ahmed5528/masa-bot/lib/cli"
)

func lookupCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:    "lookup",
		Summary: "Show the user behind a serial",
		Description: `Resolve a serial to its registration. The serial is normalized the
same way the /reply command does it: case and the prefix are optional.

Exits with status 2 when no user holds the serial.`,
		Usage: "masa-relayctl lookup <serial>",
		Examples: []cli.Example{
			{Description: "Resolve a serial typed without its prefix", Command: "masa-relayctl lookup 7qx2m4pa"},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one serial, got %d arguments", len(args))
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

			label := env.styles.faint
			fmt.Fprintf(env.stdout, "%s %s\n", label.Render("Serial: "), env.styles.serial.Render(binding.Serial))
			fmt.Fprintf(env.stdout, "%s %s\n", label.Render("Name:   "), binding.DisplayName)
			fmt.Fprintf(env.stdout, "%s %d\n", label.Render("User ID:"), binding.UserID)
			fmt.Fprintf(env.stdout, "%s %s\n", label.Render("Joined: "), formatTime(binding.JoinedAt))
			return nil
		},
		HelpOutput: env.stderr,
	}
}
