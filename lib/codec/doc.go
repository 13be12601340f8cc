// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the relay's standard CBOR encoding configuration.
//
// JSON is used for the Bot API and for human-readable exports; CBOR
// is the compact export format. This package holds the one encoder
// configuration so every CBOR writer produces identical bytes for the
// same data: Core Deterministic Encoding (RFC 8949 §4.2) with sorted
// map keys, smallest integer encoding and no indefinite-length items.
// Times are encoded as RFC 3339 strings with nanoseconds.
//
// Types serialized as both JSON and CBOR carry only `json` tags;
// fxamacker/cbor reads them when `cbor` tags are absent.
package codec
