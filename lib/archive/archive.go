// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive exports one user's conversation as a self-contained
// transcript. Transcripts are keyed by serial only; platform user ids
// never appear in them.
//
// Transcripts are written as JSON (human-readable) or CBOR (compact,
// deterministic, via lib/codec), optionally wrapped in a zstd frame.
// [Read] detects all four combinations.
package archive

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/ahmed5528/masa-bot/lib/codec"
	"github.com/ahmed5528/masa-bot/lib/conversation"
	"github.com/ahmed5528/masa-bot/lib/identity"
)

// Version is the transcript schema version written by this package.
const Version = 1

// Format selects the transcript encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatCBOR:
		return Format(name), nil
	default:
		return "", fmt.Errorf("archive: unknown format %q (want json or cbor)", name)
	}
}

// Transcript is the exported conversation of one serial.
type Transcript struct {
	Version    int       `json:"version"`
	Serial     string    `json:"serial"`
	JoinedAt   time.Time `json:"joined_at"`
	ExportedAt time.Time `json:"exported_at"`
	Messages   []Message `json:"messages"`
}

// Message is one relayed message, oldest first within a Transcript.
type Message struct {
	ID        int64     `json:"id"`
	Direction string    `json:"direction"`
	StaffID   int64     `json:"staff_id,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Build assembles a transcript from a binding and its records as
// returned by conversation.Log.Recent (newest first).
func Build(binding identity.Binding, newestFirst []conversation.Record, exportedAt time.Time) Transcript {
	ordered := conversation.Chronological(newestFirst)
	messages := make([]Message, len(ordered))
	for index, record := range ordered {
		messages[index] = Message{
			ID:        record.ID,
			Direction: string(record.Direction),
			StaffID:   record.StaffID,
			Text:      record.Text,
			Timestamp: record.Timestamp.UTC(),
		}
	}
	return Transcript{
		Version:    Version,
		Serial:     binding.Serial,
		JoinedAt:   binding.JoinedAt.UTC(),
		ExportedAt: exportedAt.UTC(),
		Messages:   messages,
	}
}

// Options controls Write.
type Options struct {
	Format Format
	// Zstd wraps the encoded transcript in a zstd frame.
	Zstd bool
}

// Write encodes transcript to w.
func Write(w io.Writer, transcript Transcript, options Options) (err error) {
	if _, err := ParseFormat(string(options.Format)); err != nil {
		return err
	}

	output := w
	if options.Zstd {
		compressor, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return fmt.Errorf("archive: zstd: %w", err)
		}
		defer func() {
			if closeErr := compressor.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("archive: zstd: %w", closeErr)
			}
		}()
		output = compressor
	}

	switch options.Format {
	case FormatJSON:
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(transcript)
	case FormatCBOR:
		err = codec.NewEncoder(output).Encode(transcript)
	}
	if err != nil {
		return fmt.Errorf("archive: encoding %s: %w", options.Format, err)
	}
	return nil
}

// zstdMagic opens every zstd frame (RFC 8878 §3.1.1).
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Read decodes a transcript written by Write with any Options.
func Read(r io.Reader) (Transcript, error) {
	input := bufio.NewReader(r)

	if magic, _ := input.Peek(len(zstdMagic)); bytes.Equal(magic, zstdMagic) {
		decompressor, err := zstd.NewReader(input)
		if err != nil {
			return Transcript{}, fmt.Errorf("archive: zstd: %w", err)
		}
		defer decompressor.Close()
		input = bufio.NewReader(decompressor)
	}

	format, err := sniff(input)
	if err != nil {
		return Transcript{}, err
	}

	var transcript Transcript
	switch format {
	case FormatJSON:
		err = json.NewDecoder(input).Decode(&transcript)
	default:
		err = codec.NewDecoder(input).Decode(&transcript)
	}
	if err != nil {
		return Transcript{}, fmt.Errorf("archive: decoding %s: %w", format, err)
	}
	if transcript.Version != Version {
		return Transcript{}, fmt.Errorf("archive: unsupported transcript version %d", transcript.Version)
	}
	return transcript, nil
}

// sniff reports JSON when the first non-space byte opens an object.
// A CBOR transcript starts with a map header (major type 5).
func sniff(input *bufio.Reader) (Format, error) {
	for peek := 1; ; peek++ {
		head, err := input.Peek(peek)
		if len(head) < peek {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return "", fmt.Errorf("archive: empty transcript: %w", err)
		}
		switch last := head[peek-1]; last {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return FormatJSON, nil
		default:
			if last>>5 == 5 {
				return FormatCBOR, nil
			}
			return "", fmt.Errorf("archive: unrecognized transcript encoding (first byte %#x)", last)
		}
	}
}
