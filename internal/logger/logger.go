package logger

import (
	"io"
	"log"
	"os"
)

// Logger wraps standard log with debug flag
type Logger struct {
	debug bool
	*log.Logger
}

// New creates a new logger writing to stderr when debug is enabled
func New(debug bool) *Logger {
	return NewWithWriter(debug, os.Stderr)
}

// NewWithWriter creates a logger writing to w. Debug lines are dropped
// unless debug is set; errors always reach w.
func NewWithWriter(debug bool, w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{
		debug:  debug,
		Logger: log.New(w, "", log.LstdFlags),
	}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return NewWithWriter(false, io.Discard)
}

// With returns a logger sharing the output with every line prefixed.
func (l *Logger) With(prefix string) *Logger {
	return &Logger{
		debug:  l.debug,
		Logger: log.New(l.Writer(), l.Prefix()+prefix+" ", l.Flags()|log.Lmsgprefix),
	}
}

// Debug reports whether debug output is enabled
func (l *Logger) Debug() bool {
	return l.debug
}

// Printf logs if debug is enabled
func (l *Logger) Printf(format string, v ...interface{}) {
	if l.debug {
		l.Logger.Printf(format, v...)
	}
}

// Print logs if debug is enabled
func (l *Logger) Print(v ...interface{}) {
	if l.debug {
		l.Logger.Print(v...)
	}
}

// Println logs if debug is enabled
func (l *Logger) Println(v ...interface{}) {
	if l.debug {
		l.Logger.Println(v...)
	}
}

// Errorf always logs
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.Logger.Printf("error: "+format, v...)
}

// Fatalf always logs (fatal errors)
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.Logger.Fatalf(format, v...)
}
