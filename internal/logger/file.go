package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileLogger writes a per-run log file. Every line carries a full timestamp so
// the file stays useful after the terminal output is gone.
type FileLogger struct {
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// DefaultLogDir returns the directory run logs are written to when none is
// configured: <user cache dir>/npm-clean/logs, or the temp dir if the user
// cache dir cannot be determined.
func DefaultLogDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "npm-clean", "logs")
}

// NewFileLogger creates the log directory if needed and opens
// npm-clean_<YYYYMMDD-HHMMSS>_<runID>.log inside it.
func NewFileLogger(logDir, logLevel, runID string) (*FileLogger, error) {
	if logDir == "" {
		logDir = DefaultLogDir()
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("npm-clean_%s", time.Now().Format("20060102-150405"))
	if runID != "" {
		name += "_" + runID
	}
	runFile := filepath.Join(logDir, name+".log")

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	fl := &FileLogger{
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.write("=== npm-clean run log ===\n")
	if runID != "" {
		fl.write(fmt.Sprintf("Run: %s\n", runID))
	}
	fl.write(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// Path returns the path of the run log file.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !shouldLog(fl.logLevel, strings.ToLower(level)) {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	fl.write(fmt.Sprintf("[%s] [%s] %s\n", ts, level, message))
}

func (fl *FileLogger) write(line string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return
	}
	_, _ = fl.runLog.WriteString(line)
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return nil
	}
	if err := fl.runLog.Sync(); err != nil {
		fl.runLog.Close()
		fl.runLog = nil
		return fmt.Errorf("failed to sync run log: %w", err)
	}
	err := fl.runLog.Close()
	fl.runLog = nil
	return err
}
