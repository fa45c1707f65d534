package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging with domain-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger writing to stdout.
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{Logger: slog.New(handler)}
}

// RequestLogger logs HTTP request details.
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// ScoringPassLogger logs one batch scoring pass.
func (l *Logger) ScoringPassLogger(epoch, dreps, votes int, duration time.Duration) {
	l.Info("Scoring pass completed",
		"epoch", epoch,
		"dreps_scored", dreps,
		"votes_analyzed", votes,
		"duration_ms", duration.Milliseconds(),
	)
}

// SyncLogger logs one ingest sync against the chain indexer.
func (l *Logger) SyncLogger(resource string, fetched int, duration time.Duration, err error) {
	if err != nil {
		l.Warn("Ingest sync failed",
			"resource", resource,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	l.Info("Ingest sync completed",
		"resource", resource,
		"records", fetched,
		"duration_ms", duration.Milliseconds(),
	)
}

// ShiftLogger logs a detected alignment degradation.
func (l *Logger) ShiftLogger(drepID string, delta int, categories int) {
	l.Warn("Alignment shift detected",
		"drep_id", drepID,
		"delta", delta,
		"category_shifts", categories,
	)
}

// SystemLogger logs system-level events.
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

var startTime = time.Now()
