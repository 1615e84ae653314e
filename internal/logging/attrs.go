package logging

import (
	"log/slog"
	"time"
)

// Attr is the attribute type accepted by the helpers in this package.
type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key, value string) Attr { return slog.String(key, value) }

// Error keeps the "error" key present even for a nil error.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

const (
	defaultErrorHint = "rerun with --log-level debug for per-file detail"
	defaultImpact    = "some files were not processed"
)

// WarnWithContext logs a warning tagged with eventType. error_hint and impact
// fall back to generic text when attrs does not set them.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = ensureAttr(attrs, FieldEventType, eventType)
	attrs = ensureAttr(attrs, FieldErrorHint, defaultErrorHint)
	attrs = ensureAttr(attrs, FieldImpact, defaultImpact)
	logger.Warn(msg, toArgs(attrs)...)
}

// ErrorWithContext is WarnWithContext at error level without an impact default.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = ensureAttr(attrs, FieldEventType, eventType)
	attrs = ensureAttr(attrs, FieldErrorHint, defaultErrorHint)
	logger.Error(msg, toArgs(attrs)...)
}

func ensureAttr(attrs []Attr, key, fallback string) []Attr {
	for _, a := range attrs {
		if a.Key == key {
			return attrs
		}
	}
	return append(attrs, String(key, fallback))
}

func toArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}
