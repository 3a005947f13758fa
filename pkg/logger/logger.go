package logger

import (
	"fmt"
	"strings"

	"github.com/sadlil/gologger"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type defaultLogger struct {
	level int
	sink  gologger.GoLogger
}

// NewLogger writes colored lines to the console.
func NewLogger(level int) *defaultLogger {
	return &defaultLogger{level: level, sink: gologger.GetLogger(gologger.CONSOLE, gologger.ColoredLog)}
}

// NewFileLogger appends plain lines to the file at path.
func NewFileLogger(level int, path string) *defaultLogger {
	return &defaultLogger{level: level, sink: gologger.GetLogger(gologger.FILE, path)}
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	if l.level <= DEBUG {
		l.sink.Debug(fmt.Sprintf(msg, a...))
	}
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	if l.level <= INFO {
		l.sink.Info(fmt.Sprintf(msg, a...))
	}
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	if l.level <= WARNING {
		l.sink.Warn(fmt.Sprintf(msg, a...))
	}
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	if l.level <= ERROR {
		l.sink.Error(fmt.Sprintf(msg, a...))
	}
}

// ParseLevel maps a config value like "warning" to a level, defaulting to INFO.
func ParseLevel(s string) int {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	case "silence", "silent":
		return SILENCE
	default:
		return INFO
	}
}
