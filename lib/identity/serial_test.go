// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"bytes"
	"strings"
	"testing"
)

// constantReader yields the same byte forever.
type constantReader byte

func (r constantReader) Read(p []byte) (int, error) {
	for index := range p {
		p[index] = byte(r)
	}
	return len(p), nil
}

func TestGenerateShape(t *testing.T) {
	generator := NewGenerator("")
	seen := make(map[string]bool)
	for range 200 {
		serial, err := generator.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !strings.HasPrefix(serial, DefaultSerialPrefix) {
			t.Fatalf("serial %q lacks prefix %q", serial, DefaultSerialPrefix)
		}
		body := strings.TrimPrefix(serial, DefaultSerialPrefix)
		if len(body) != SerialLength {
			t.Fatalf("serial body %q has length %d, want %d", body, len(body), SerialLength)
		}
		for _, character := range body {
			if !strings.ContainsRune(SerialAlphabet, character) {
				t.Fatalf("serial %q contains %q outside the alphabet", serial, character)
			}
		}
		seen[serial] = true
	}
	if len(seen) < 199 {
		t.Errorf("200 draws produced only %d distinct serials", len(seen))
	}
}

func TestGenerateRejectsBiasedBytes(t *testing.T) {
	// 0xFF is above the rejection limit and must be skipped; 0x25 (37)
	// maps to alphabet index 1.
	input := append(bytes.Repeat([]byte{0xFF}, 8), bytes.Repeat([]byte{0x25}, 8)...)
	generator := NewGeneratorFrom("T-", bytes.NewReader(input))
	serial, err := generator.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if serial != "T-BBBBBBBB" {
		t.Errorf("Generate() = %q, want %q", serial, "T-BBBBBBBB")
	}
}

func TestGenerateShortRandomSource(t *testing.T) {
	generator := NewGeneratorFrom("", bytes.NewReader([]byte{1, 2, 3}))
	if _, err := generator.Generate(); err == nil {
		t.Fatal("expected error when randomness runs out")
	}
}

func TestNormalize(t *testing.T) {
	generator := NewGenerator("kcm-")
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"KCM-AB12CD34", "KCM-AB12CD34", true},
		{"  kcm-ab12cd34 ", "KCM-AB12CD34", true},
		{"AB12CD34", "KCM-AB12CD34", true},
		{"`KCM-AB12CD34`", "KCM-AB12CD34", true},
		{"ZZZZZZZZ", "KCM-ZZZZZZZZ", true},
		{"KCM-AB12CD3", "", false},
		{"KCM-AB12CD345", "", false},
		{"KCM-AB12-D34", "", false},
		{"", "", false},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, ok := generator.Normalize(test.input)
			if ok != test.ok || got != test.want {
				t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", test.input, got, ok, test.want, test.ok)
			}
		})
	}
}

func TestNormalizePrefixFromAlphabet(t *testing.T) {
	generator := NewGenerator("AB")
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"ABCDEFGH", "ABABCDEFGH", true},
		{"ababcdefgh", "ABABCDEFGH", true},
		{"AB12345678", "AB12345678", true},
		{"12345678", "AB12345678", true},
		{"ABCDEFG", "", false},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, ok := generator.Normalize(test.input)
			if ok != test.ok || got != test.want {
				t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", test.input, got, ok, test.want, test.ok)
			}
		})
	}
}
