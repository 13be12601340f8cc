// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ahmed5528/masa-bot/lib/archive"
	"github.com/ahmed5528/masa-bot/lib/atomicfile"
	"github.com/ahmed5528/masa-bot/lib/cli"
)

func exportCommand(env *environment) *cli.Command {
	var (
		format   string
		compress bool
		output   string
	)
	return &cli.Command{
		Name:    "export",
		Summary: "Export a serial's full transcript",
		Description: `Write every message of a conversation as a transcript document
(JSON or CBOR, optionally zstd-compressed). Transcripts carry the
serial, never the platform user id or name.

Binary output (CBOR or --zstd) is refused on a terminal; use --output
or redirect stdout.`,
		Usage: "masa-relayctl export <serial> [--format json|cbor] [--zstd] [--output FILE]",
		Examples: []cli.Example{
			{Description: "Pretty JSON on stdout", Command: "masa-relayctl export KCM-7QX2M4PA"},
			{Description: "Compact archive to a file", Command: "masa-relayctl export KCM-7QX2M4PA --format cbor --zstd --output KCM-7QX2M4PA.cbor.zst"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
			flagSet.StringVar(&format, "format", string(archive.FormatJSON), "transcript encoding: json or cbor")
			flagSet.BoolVar(&compress, "zstd", false, "compress the transcript with zstd")
			flagSet.StringVarP(&output, "output", "o", "", "write to FILE instead of stdout")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one serial, got %d arguments", len(args))
			}
			parsed, err := archive.ParseFormat(format)
			if err != nil {
				return err
			}
			binary := parsed == archive.FormatCBOR || compress
			if output == "" && binary && isTerminal(env.stdout) {
				return fmt.Errorf("refusing to write binary output to a terminal; use --output or redirect stdout")
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
			records, err := s.db.Conversations().Recent(env.ctx, binding.UserID, math.MaxInt32)
			if err != nil {
				return err
			}
			transcript := archive.Build(binding, records, env.clock.Now())
			options := archive.Options{Format: parsed, Zstd: compress}

			if output == "" {
				return archive.Write(env.stdout, transcript, options)
			}
			if err := writeFile(output, transcript, options); err != nil {
				return err
			}
			fmt.Fprintf(env.stderr, "Exported %d messages of %s to %s\n", len(transcript.Messages), binding.Serial, output)
			return nil
		},
		HelpOutput: env.stderr,
	}
}

// writeFile replaces path with the encoded transcript; a failed export
// leaves any previous file intact.
func writeFile(path string, transcript archive.Transcript, options archive.Options) error {
	return atomicfile.WriteFunc(path, 0o600, func(w io.Writer) error {
		return archive.Write(w, transcript, options)
	})
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
