// Package logging provides a tiny abstraction over slog so the orchestration
// pipeline can depend on a minimal interface (Logger) while allowing callers
// to plug any structured logger. It also offers a ChatLogger with contextual
// helpers scoped to a chat and its pipeline stages.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger defines the minimal logging interface used throughout the module.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NoOpLogger discards all log messages. Useful for tests or when logging is
// disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// ChatLoggerConfig configures construction of a ChatLogger.
type ChatLoggerConfig struct {
	Level     slog.Level
	Format    string // json or text
	Output    io.Writer
	AddSource bool
}

// DefaultChatLoggerConfig returns a baseline JSON info-level configuration.
func DefaultChatLoggerConfig() *ChatLoggerConfig {
	return &ChatLoggerConfig{Level: slog.LevelInfo, Format: "json", Output: os.Stdout, AddSource: false}
}

// ChatLogger wraps slog.Logger adding chat-scoped cloning helpers and
// pipeline-stage convenience methods. It is cheap to copy via With* methods.
type ChatLogger struct {
	logger *slog.Logger
	chatID string
	userID string
}

// NewChatLogger builds a ChatLogger from a config (or defaults if nil).
func NewChatLogger(cfg *ChatLoggerConfig) *ChatLogger {
	if cfg == nil {
		cfg = DefaultChatLoggerConfig()
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &ChatLogger{logger: slog.New(handler)}
}

// WithChat attaches chat and user identifiers to every log entry.
func (l *ChatLogger) WithChat(chatID, userID string) *ChatLogger {
	nl := *l
	nl.chatID = chatID
	nl.userID = userID
	return &nl
}

func (l *ChatLogger) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(extra)+2)
	if l.chatID != "" {
		attrs = append(attrs, slog.String("chat_id", l.chatID))
	}
	if l.userID != "" {
		attrs = append(attrs, slog.String("user_id", l.userID))
	}
	return append(attrs, extra...)
}

// Debug logs at debug level.
func (l *ChatLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs at info level.
func (l *ChatLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *ChatLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs at error level.
func (l *ChatLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

func (l *ChatLogger) log(level slog.Level, msg string, args ...any) {
	if !l.logger.Handler().Enabled(context.Background(), level) {
		return
	}
	attrs := l.attrs()
	rec := slog.NewRecord(time.Now(), level, msg, 0)
	rec.AddAttrs(attrs...)
	rec.Add(args...)
	_ = l.logger.Handler().Handle(context.Background(), rec)
}

// LogCompletionCall records completion-backend latency and outcome.
func (l *ChatLogger) LogCompletionCall(stage string, dur time.Duration, err error) {
	attrs := l.attrs(slog.String("stage", stage), slog.Duration("duration", dur))
	level := slog.LevelInfo
	msg := "completion call finished"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelError
		msg = "completion call failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogStageExecution records one pipeline stage's token consumption.
func (l *ChatLogger) LogStageExecution(stage string, tokensUsed, tokensRemaining int) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "stage executed",
		l.attrs(
			slog.String("stage", stage),
			slog.Int("tokens_used", tokensUsed),
			slog.Int("tokens_remaining", tokensRemaining),
		)...)
}
