package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"forum-bans/internal/config"
)

// log levels, in increasing severity
const (
	levelDebug = iota
	levelInfo
	levelWarning
	levelError
)

var (
	std      = log.New(os.Stdout, "", log.Ldate|log.Ltime)
	minLevel = levelInfo
)

// createLogFilePath generates a log file path with the current date
func createLogFilePath(logDir, prefix string) string {
	currentDate := time.Now().Format("2006-01-02")
	return filepath.Join(logDir, fmt.Sprintf("%s-%s.log", prefix, currentDate))
}

// createRotatingLogger creates a lumberjack rotating logger
func createRotatingLogger(logFilePath string, cfg *config.Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.Logger.Rotation.MaxSize,
		MaxBackups: cfg.Logger.Rotation.MaxBackups,
		MaxAge:     cfg.Logger.Rotation.MaxAge,
		Compress:   cfg.Logger.Rotation.Compress,
	}
}

func parseLevel(level string) int {
	switch level {
	case "DEBUG":
		return levelDebug
	case "INFO":
		return levelInfo
	case "WARNING":
		return levelWarning
	case "ERROR":
		return levelError
	default:
		return levelInfo
	}
}

// Setup configures logging to output to both stdout and a rotating log file
func Setup(cfg *config.Config) error {
	logDir := cfg.Logger.Directory

	// Create log directory if it doesn't exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath := createLogFilePath(logDir, "forum-bans")
	rotatingLogger := createRotatingLogger(logFilePath, cfg)
	multiWriter := io.MultiWriter(os.Stdout, rotatingLogger)

	std = log.New(multiWriter, "", log.Ldate|log.Ltime)
	minLevel = parseLevel(cfg.Logger.Level)

	// Route the standard logger through the same writer so that
	// third-party code using "log" ends up in the log file too.
	log.SetOutput(multiWriter)
	log.SetFlags(log.Ldate | log.Ltime)

	Infof("Logging initialized: writing to %s", logFilePath)
	return nil
}

func output(level int, tag, format string, args ...interface{}) {
	if level < minLevel {
		return
	}
	std.Printf("["+tag+"] "+format, args...)
}

// Debugf logs a debug level message
func Debugf(format string, args ...interface{}) {
	output(levelDebug, "DEBUG", format, args...)
}

// Infof logs an info level message
func Infof(format string, args ...interface{}) {
	output(levelInfo, "INFO", format, args...)
}

// Warningf logs a warning level message
func Warningf(format string, args ...interface{}) {
	output(levelWarning, "WARNING", format, args...)
}

// Errorf logs an error level message
func Errorf(format string, args ...interface{}) {
	output(levelError, "ERROR", format, args...)
}

// Fatalf logs an error level message and exits
func Fatalf(format string, args ...interface{}) {
	output(levelError, "FATAL", format, args...)
	os.Exit(1)
}
