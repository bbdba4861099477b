package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const isWindows = runtime.GOOS == "windows"

var noColor = os.Getenv("TERM") == "dumb" ||
	(!isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()))

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	gray   = "\033[1;90m"
)

func color(val string) string {
	if isWindows || noColor {
		return ""
	}
	return val
}

type consoleLogger struct {
	mu       *sync.Mutex
	out      io.Writer
	logLevel LogLevel
	prefixes []string
	metadata map[string]interface{}
}

var _ Logger = (*consoleLogger)(nil)

// NewConsoleLogger returns a Logger that writes human-readable, optionally
// colored lines to stderr at the given level.
func NewConsoleLogger(level LogLevel) Logger {
	return &consoleLogger{
		mu:       &sync.Mutex{},
		out:      os.Stderr,
		logLevel: level,
	}
}

func (c *consoleLogger) clone() *consoleLogger {
	return &consoleLogger{
		mu:       c.mu,
		out:      c.out,
		logLevel: c.logLevel,
		prefixes: c.prefixes,
		metadata: c.metadata,
	}
}

func (c *consoleLogger) With(metadata map[string]interface{}) Logger {
	l := c.clone()
	merged := make(map[string]interface{}, len(c.metadata)+len(metadata))
	for k, v := range c.metadata {
		merged[k] = v
	}
	for k, v := range metadata {
		merged[k] = v
	}
	l.metadata = merged
	return l
}

// WithPrefix will return a new logger with a prefix prepended to the message
func (c *consoleLogger) WithPrefix(prefix string) Logger {
	l := c.clone()
	if !slices.Contains(l.prefixes, prefix) {
		prefixes := make([]string, len(c.prefixes), len(c.prefixes)+1)
		copy(prefixes, c.prefixes)
		l.prefixes = append(prefixes, prefix)
	}
	return l
}

func (c *consoleLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.logLevel
}

func (c *consoleLogger) log(level LogLevel, levelName, levelColor, msg string, args ...interface{}) {
	if !c.IsLevelEnabled(level) {
		return
	}
	line := fmt.Sprintf(msg, args...)
	if len(c.prefixes) > 0 {
		line = strings.Join(c.prefixes, " ") + " " + line
	}
	var suffix string
	if len(c.metadata) > 0 {
		if buf, err := json.Marshal(c.metadata); err == nil {
			suffix = " " + color(gray) + string(buf) + color(reset)
		}
	}
	ts := time.Now().Format("15:04:05.000")
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s%s%s %s[%-5s]%s %s%s\n",
		color(gray), ts, color(reset),
		color(levelColor), levelName, color(reset),
		line, suffix)
}

func (c *consoleLogger) Trace(msg string, args ...interface{}) {
	c.log(LevelTrace, "TRACE", gray, msg, args...)
}

func (c *consoleLogger) Debug(msg string, args ...interface{}) {
	c.log(LevelDebug, "DEBUG", cyan, msg, args...)
}

func (c *consoleLogger) Info(msg string, args ...interface{}) {
	c.log(LevelInfo, "INFO", green, msg, args...)
}

func (c *consoleLogger) Warn(msg string, args ...interface{}) {
	c.log(LevelWarn, "WARN", yellow, msg, args...)
}

func (c *consoleLogger) Error(msg string, args ...interface{}) {
	c.log(LevelError, "ERROR", red, msg, args...)
}
