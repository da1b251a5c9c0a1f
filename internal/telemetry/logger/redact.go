package logger

import (
	"log/slog"
	"strings"
)

// Key fragments whose values are never logged.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"authorization",
	"cookie",
	"private_key",
}

const redactedValue = "***REDACTED***"

// maxValueLen bounds string attributes; request-supplied values such as
// stat filter patterns are otherwise unbounded.
const maxValueLen = 256

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if len(v) > maxValueLen {
			return slog.String(a.Key, Truncate(v))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// IsSensitiveKey reports whether a key name suggests secret content.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}

// Truncate shortens v to the logged maximum, marking the cut.
func Truncate(v string) string {
	if len(v) <= maxValueLen {
		return v
	}
	return v[:maxValueLen] + "...(truncated)"
}
