// Package simplelogger builds the process logger: slog text records appended to a file, or nothing at all when no file is configured.
package simplelogger

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// EnvLogFile names the environment variable holding the log file path.
const EnvLogFile = "DRAFTPATCH_LOG_FILE"

var mu sync.Mutex

// Log is a minimal printf-style logger. It appends formatted output to the file specified by DRAFTPATCH_LOG_FILE.
//
// If DRAFTPATCH_LOG_FILE is unset/empty or the path can't be opened as a file, Log is a no-op.
func Log(format string, args ...any) {
	path := os.Getenv(EnvLogFile)
	if path == "" {
		return
	}
	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Len() == 0 || b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = appendFile{path: path}.Write(b.Bytes())
}

// New returns a text slog.Logger appending to path at level. An empty path falls back to DRAFTPATCH_LOG_FILE; if that is empty too, the logger discards everything.
func New(path string, level slog.Level) *slog.Logger {
	if path == "" {
		path = os.Getenv(EnvLogFile)
	}
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	return slog.New(slog.NewTextHandler(appendFile{path: path}, &slog.HandlerOptions{Level: level}))
}

// ParseLevel parses "debug", "info", "warn" or "error" (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// appendFile opens path for each write so that several processes can share one log file. Failures to open are swallowed.
type appendFile struct {
	path string
}

func (a appendFile) Write(p []byte) (int, error) {
	// Serialize open/write/close to reduce interleaving within a single process.
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return len(p), nil
	}
	defer f.Close()
	return f.Write(p)
}
