// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O helpers for the relay's API clients.
//
// Response helpers (ReadResponse, DecodeResponse) bound body reads at
// MaxResponseSize. Bot API responses are small JSON documents; the
// bound only guards against a misbehaving endpoint.
//
// StripURL removes the request URL from transport errors. Some APIs
// (the Telegram Bot API among them) carry credentials in the request
// path, and *url.Error embeds that path in its message.
package netutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
)

// MaxResponseSize is the bound on JSON API response body reads: 16 MB.
const MaxResponseSize int64 = 16 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a JSON API response body (up to MaxResponseSize
// bytes) and JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// StripURL returns err with any *url.Error unwrapped to its operation
// and underlying cause, so the request URL never reaches a log line.
// Errors without a *url.Error in their chain are returned unchanged.
func StripURL(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return &strippedError{op: urlErr.Op, cause: urlErr.Err}
}

type strippedError struct {
	op    string
	cause error
}

func (e *strippedError) Error() string {
	return e.op + " request: " + e.cause.Error()
}

func (e *strippedError) Unwrap() error { return e.cause }

// Timeout reports whether the underlying cause was a timeout.
func (e *strippedError) Timeout() bool {
	var timeout interface{ Timeout() bool }
	return errors.As(e.cause, &timeout) && timeout.Timeout()
}
