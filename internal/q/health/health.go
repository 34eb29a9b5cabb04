// Package health pairs errors with structured log attributes so that a failure can be returned to the caller and logged in one line, with the log record carrying
// machine-friendly key/values while Error() stays readable.
package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// Loggable is implemented by errors that want a log record different from their Error() text: typically errors whose Error() is a multi-line, user-facing message.
// LogErr uses LogRecord when it finds a Loggable anywhere in the error's chain.
type Loggable interface {
	error
	LogRecord() (msg string, attrs []any)
}

// HealthErr is an error with slog-style attributes and an optional wrapped error.
type HealthErr struct {
	Message string
	wrapped error
	attrs   []any
}

// Error satisfies the error interface. All aspects are serialized: msg, attrs, and the wrapped error.
func (e *HealthErr) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.attrs) > 0 {
		b.WriteString("[")
		writeAttrs(&b, e.attrs)
		b.WriteString("]")
	}

	if e.wrapped != nil {
		b.WriteString(" via ")
		b.WriteString(e.wrapped.Error())
	}

	return b.String()
}

func (e *HealthErr) Unwrap() error {
	return e.wrapped
}

// NewErr returns a new error (unlogged). args is in the same format as slog's args to Info: key/values or slog.Attrs.
func NewErr(msg string, args ...any) error {
	return &HealthErr{Message: msg, attrs: args}
}

// Wrap returns a new error that wraps `wrapped`.
func Wrap(msg string, wrapped error, args ...any) error {
	if wrapped == nil {
		wrapped = errors.New("nil wrapped error. WARNING: you should not call Wrap with a nil error")
	}
	return &HealthErr{Message: msg, wrapped: wrapped, attrs: args}
}

// LogErr logs err to logger (if both are non-nil) at error level and returns err unchanged:
//
//	return health.LogErr(logger, health.NewErr("snapshot save failed", "key", key))
//
// A HealthErr is logged with its own message, then its attrs, then a "via" attr holding the wrapped error, then args. A Loggable error is logged with its LogRecord.
// Any other error is logged as err.Error() plus args.
func LogErr(logger *slog.Logger, err error, args ...any) error {
	if logger == nil || err == nil {
		return err
	}

	if h, ok := err.(*HealthErr); ok {
		all := make([]any, 0, len(h.attrs)+len(args)+1)
		all = append(all, h.attrs...)
		if h.wrapped != nil {
			all = append(all, slog.String("via", h.wrapped.Error()))
		}
		all = append(all, args...)
		logger.Error(h.Message, all...)
		return err
	}

	var l Loggable
	if errors.As(err, &l) {
		msg, attrs := l.LogRecord()
		logger.Error(msg, append(attrs, args...)...)
		return err
	}

	logger.Error(err.Error(), args...)
	return err
}

// LogNewErr creates a new error with msg and args, logs it, and returns it.
func LogNewErr(logger *slog.Logger, msg string, args ...any) error {
	return LogErr(logger, NewErr(msg, args...))
}

// LogWrappedErr wraps err with msg and args, logs it, and returns it.
func LogWrappedErr(logger *slog.Logger, msg string, wrapped error, args ...any) error {
	return LogErr(logger, Wrap(msg, wrapped, args...))
}

// writeAttrs writes attrs (in the protocol of slog attrs to .Log) to b in key=value format, as per the Text handler. Ex: `num=3 str="hi"`.
func writeAttrs(b *strings.Builder, attrs []any) {
	if len(attrs) == 0 {
		return
	}

	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.MessageKey {
				return slog.Attr{}
			}
			return a
		},
	}

	// Capture just the attributes by logging an empty message into b.
	logger := slog.New(slog.NewTextHandler(&noNewlineWriter{w: b}, opts))
	logger.Log(context.Background(), slog.LevelDebug, "", attrs...)
}

// noNewlineWriter strips the single trailing newline slog.TextHandler writes.
type noNewlineWriter struct {
	w io.Writer
}

func (n *noNewlineWriter) Write(p []byte) (int, error) {
	if len(p) > 0 && p[len(p)-1] == '\n' {
		written, err := n.w.Write(p[:len(p)-1])
		if err == nil {
			return len(p), nil
		}
		return written, err
	}
	return n.w.Write(p)
}
