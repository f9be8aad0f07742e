package logger

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// Fields represents structured log fields
type Fields map[string]interface{}

// Init binds a Sentry client when dsn is set. The returned func flushes
// pending events and is safe to call when Sentry is disabled.
func Init(dsn, environment, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     "accompanist@" + release,
		Debug:       environment != "production",
	})
	if err != nil {
		return func() {}, fmt.Errorf("sentry init: %w", err)
	}
	return func() { sentry.Flush(flushTimeout) }, nil
}

func enabled() bool {
	return sentry.CurrentHub().Client() != nil
}

func breadcrumb(level sentry.Level, typ, msg string, fields Fields) {
	if !enabled() {
		return
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:     typ,
		Category: "log",
		Message:  msg,
		Data:     map[string]interface{}(fields),
		Level:    level,
	})
}

// Info logs an informational message with structured fields
func Info(msg string, fields Fields) {
	log.Printf("[INFO] %s%s", msg, formatFields(fields))
	breadcrumb(sentry.LevelInfo, "info", msg, fields)
}

// Warn logs a warning message with structured fields
func Warn(msg string, fields Fields) {
	log.Printf("[WARN] %s%s", msg, formatFields(fields))
	breadcrumb(sentry.LevelWarning, "warning", msg, fields)
}

func Debug(msg string, fields Fields) {
	log.Printf("[DEBUG] %s%s", msg, formatFields(fields))
	breadcrumb(sentry.LevelDebug, "debug", msg, fields)
}

// Error logs an error message with structured fields and sends to Sentry
func Error(msg string, err error, fields Fields) {
	log.Printf("[ERROR] %s: %v%s", msg, err, formatFields(fields))
	if !enabled() {
		return
	}
	hub := sentry.CurrentHub()
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range fields {
			scope.SetContext(key, map[string]interface{}{"value": value})
		}
		if stage, ok := fields["stage"].(string); ok {
			scope.SetTag("stage", stage)
		}
		hub.CaptureException(err)
	})
}

// formatFields renders fields as " {k=v, ...}" with sorted keys.
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+formatValue(fields[k]))
	}
	return " {" + strings.Join(parts, ", ") + "}"
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%.2f", val)
	case time.Duration:
		return val.Round(time.Millisecond).String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
