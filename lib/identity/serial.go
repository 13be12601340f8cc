// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

const (
	// SerialAlphabet is the set of characters a serial body draws from.
	SerialAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// SerialLength is the number of random characters after the prefix.
	SerialLength = 8

	// DefaultSerialPrefix makes serials recognizable in free text.
	DefaultSerialPrefix = "KCM-"
)

// rejectionLimit is the largest multiple of len(SerialAlphabet) that
// fits in a byte. Bytes at or above it are discarded so every
// character is equally likely.
const rejectionLimit = 256 - 256%len(SerialAlphabet)

// Generator produces candidate serials. Candidates are uniformly
// random and not unique by construction; Registrar retries on
// collision.
type Generator struct {
	prefix string
	random io.Reader
}

// NewGenerator returns a Generator using prefix and crypto/rand. An
// empty prefix selects DefaultSerialPrefix.
func NewGenerator(prefix string) *Generator {
	return NewGeneratorFrom(prefix, rand.Reader)
}

// NewGeneratorFrom returns a Generator reading randomness from random.
// Tests use it to force collisions.
func NewGeneratorFrom(prefix string, random io.Reader) *Generator {
	if prefix == "" {
		prefix = DefaultSerialPrefix
	}
	return &Generator{prefix: strings.ToUpper(prefix), random: random}
}

// Prefix returns the fixed serial prefix.
func (g *Generator) Prefix() string { return g.prefix }

// Generate returns prefix + SerialLength random alphabet characters.
func (g *Generator) Generate() (string, error) {
	body := make([]byte, 0, SerialLength)
	scratch := make([]byte, SerialLength*2)
	for len(body) < SerialLength {
		if _, err := io.ReadFull(g.random, scratch); err != nil {
			return "", fmt.Errorf("identity: reading randomness: %w", err)
		}
		for _, b := range scratch {
			if int(b) >= rejectionLimit {
				continue
			}
			body = append(body, SerialAlphabet[int(b)%len(SerialAlphabet)])
			if len(body) == SerialLength {
				break
			}
		}
	}
	return g.prefix + string(body), nil
}

// Normalize canonicalizes a serial typed by a person: surrounding
// whitespace and backticks are dropped, letters are upper-cased, and
// the prefix is added when missing. It reports false when the result
// is not a well-formed serial.
func (g *Generator) Normalize(input string) (string, bool) {
	candidate := strings.ToUpper(strings.Trim(strings.TrimSpace(input), "`"))
	// A bare body may itself start with the prefix's characters; only a
	// longer candidate carries the prefix.
	body := candidate
	if len(candidate) != SerialLength {
		body = strings.TrimPrefix(candidate, g.prefix)
	}
	if len(body) != SerialLength {
		return "", false
	}
	for index := 0; index < len(body); index++ {
		if strings.IndexByte(SerialAlphabet, body[index]) < 0 {
			return "", false
		}
	}
	return g.prefix + body, true
}
