// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ahmed5528/masa-bot/lib/clock"
	"github.com/ahmed5528/masa-bot/lib/config"
	"github.com/ahmed5528/masa-bot/lib/process"
	"github.com/ahmed5528/masa-bot/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	globals := pflag.NewFlagSet("masa-relayctl", pflag.ContinueOnError)
	globals.SetInterspersed(false)
	configPath := globals.String("config", "", "path to the relay config file (default: $"+config.EnvironmentVariable+")")
	noColor := globals.Bool("no-color", false, "disable colored output")
	showVersion := globals.Bool("version", false, "print version information and exit")
	globals.SetOutput(os.Stderr)
	if err := globals.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if *showVersion {
		fmt.Printf("masa-relayctl %s\n", version.Info())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := &environment{
		ctx:        ctx,
		configPath: *configPath,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		clock:      clock.Real(),
	}
	env.styles = newStyles(os.Stdout, *noColor)

	return root(env).Execute(globals.Args())
}
