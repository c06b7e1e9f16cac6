// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package logging

import (
	"net/url"
	"strings"
)

// sensitiveParams are query parameters never written to logs.
var sensitiveParams = []string{"api_key", "apikey", "token", "sk", "api_sig", "secret", "password"}

// SanitizeSecret keeps the first four characters of a secret and masks the
// rest. Values of eight characters or fewer are fully masked.
func SanitizeSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "[REDACTED]"
	}
	return s[:4] + "..." + "[REDACTED]"
}

// RedactURL masks sensitive query parameters in a URL string. Unparseable
// input is returned as "[INVALID URL]" rather than echoed.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[INVALID URL]"
	}
	q := u.Query()
	changed := false
	for key := range q {
		if isSensitiveParam(key) {
			q.Set(key, "[REDACTED]")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.String()
}

func isSensitiveParam(key string) bool {
	k := strings.ToLower(key)
	for _, p := range sensitiveParams {
		if k == p {
			return true
		}
	}
	return false
}
