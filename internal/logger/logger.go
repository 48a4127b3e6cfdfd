package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"detectserver/internal/config"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Logger provides leveled logging to stdout plus one file per level.
type Logger struct {
	entry *logrus.Entry
	hook  *levelFileHook
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(cfg *config.Config) (*Logger, error) {
	return newLogger(os.Stdout, cfg.LogDirectory, cfg.LogLevel)
}

// Discard returns a Logger that writes nowhere, for tests.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(base)}
}

func newLogger(out io.Writer, logDir, level string) (*Logger, error) {
	base := logrus.New()
	base.SetOutput(out)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	l := &Logger{entry: logrus.NewEntry(base)}
	if logDir == "" {
		return l, nil
	}

	hook, err := newLevelFileHook(logDir)
	if err != nil {
		return nil, err
	}
	base.AddHook(hook)
	l.hook = hook

	return l, nil
}

// WithFields returns a child Logger that adds fields to every entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields), hook: l.hook}
}

// SetLevel changes the minimum level; unknown names are ignored.
func (l *Logger) SetLevel(level string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.entry.Logger.SetLevel(lvl)
	}
}

// Debug writes a formatted debug-level log entry.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}

// Close flushes and closes the per-level files.
func (l *Logger) Close() error {
	if l.hook == nil {
		return nil
	}
	return l.hook.Close()
}

// levelFileHook appends each entry to info.log, warning.log or error.log.
type levelFileHook struct {
	mu        sync.Mutex
	formatter logrus.Formatter
	files     map[logrus.Level]*os.File
}

func newLevelFileHook(logDir string) (*levelFileHook, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}

	names := map[string][]logrus.Level{
		"info.log":    {logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel},
		"warning.log": {logrus.WarnLevel},
		"error.log":   {logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel},
	}

	h := &levelFileHook{
		formatter: &logrus.TextFormatter{FullTimestamp: true, DisableColors: true},
		files:     make(map[logrus.Level]*os.File),
	}
	for name, levels := range names {
		file, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			h.Close()
			return nil, errors.Wrapf(err, "open log file %s", name)
		}
		for _, lvl := range levels {
			h.files[lvl] = file
		}
	}

	return h, nil
}

func (h *levelFileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *levelFileHook) Fire(entry *logrus.Entry) error {
	file, ok := h.files[entry.Level]
	if !ok {
		return nil
	}

	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = file.Write(line)
	return err
}

func (h *levelFileHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	closed := make(map[*os.File]bool)
	var firstErr error
	for _, file := range h.files {
		if closed[file] {
			continue
		}
		closed[file] = true
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
