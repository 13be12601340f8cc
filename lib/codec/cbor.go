// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encoding = mustEncMode()
	decoding = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	options := cbor.CoreDetEncOptions()
	// Record timestamps carry nanoseconds; the default integer time
	// encoding keeps only seconds.
	options.Time = cbor.TimeRFC3339Nano
	mode, err := options.EncMode()
	if err != nil {
		panic("codec: building CBOR encoder: " + err.Error())
	}
	return mode
}

func mustDecMode() cbor.DecMode {
	mode, err := cbor.DecOptions{
		// Maps decoded into any get string keys so they can be
		// re-encoded as JSON.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: building CBOR decoder: " + err.Error())
	}
	return mode
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) { return encoding.Marshal(v) }

// Unmarshal decodes data into v. Fields unknown to v are skipped.
func Unmarshal(data []byte, v any) error { return decoding.Unmarshal(data, v) }

// NewEncoder returns a deterministic stream encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder { return encoding.NewEncoder(w) }

// NewDecoder returns a stream decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder { return decoding.NewDecoder(r) }
