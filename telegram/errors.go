// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// APIError is a failed Bot API call ({"ok": false, ...}). Callers use
// errors.As to inspect it, or the Is* helpers below.
type APIError struct {
	// Method is the Bot API method that failed (e.g., "sendMessage").
	Method string
	// Code is the error_code field, which mirrors an HTTP status.
	Code int
	// Description is the server's human-readable explanation.
	Description string
	// RetryAfter is set when the server asked the client to slow down.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s (%d): %s", e.Method, e.Code, e.Description)
}

// Bot API error codes the relay distinguishes.
const (
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
)

// IsAPIError reports whether err is an *APIError with the given code.
func IsAPIError(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// IsForbidden reports whether the bot was refused: the user blocked it,
// never started a conversation with it, or the bot lacks a right in the
// chat.
func IsForbidden(err error) bool {
	return IsAPIError(err, CodeForbidden)
}

// IsChatNotFound reports whether the referenced chat does not exist or
// the bot is not in it.
func IsChatNotFound(err error) bool {
	return descriptionContains(err, CodeBadRequest, "chat not found")
}

// IsMessageNotModified reports whether an edit was rejected because the
// new content equals the old. Edits triggered by repeated button
// presses hit this routinely.
func IsMessageNotModified(err error) bool {
	return descriptionContains(err, CodeBadRequest, "message is not modified")
}

// RetryAfter returns the server-requested delay carried by err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter, true
	}
	return 0, false
}

func descriptionContains(err error, code int, fragment string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != code {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Description), fragment)
}
