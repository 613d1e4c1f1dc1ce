package logger

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	TimeFormat string `yaml:"time_format"`
	Timezone   string `yaml:"timezone"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func NewLogger(cfg Config) (*zap.Logger, error) {
	// Set default values
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "console"
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "2006-01-02 15:04:05"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 100
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 5
	}

	// Parse log level
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	// Create encoder config
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     customTimeEncoder(cfg.TimeFormat, cfg.Timezone),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   customCallerEncoder,
	}

	// Create encoder
	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	// Write to stdout, plus a rolling file when configured
	sink := zapcore.AddSync(os.Stdout)
	if cfg.File != "" {
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
		sink = zapcore.NewMultiWriteSyncer(sink, fileSink)
	}

	core := zapcore.NewCore(encoder, sink, level)

	// Create logger
	logger := zap.New(core, zap.AddCaller())

	return logger, nil
}

func customTimeEncoder(format, timezone string) zapcore.TimeEncoder {
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		var loc *time.Location
		var err error

		if timezone == "Local" {
			loc = time.Local
		} else {
			loc, err = time.LoadLocation(timezone)
			if err != nil {
				loc = time.UTC
			}
		}

		enc.AppendString(t.In(loc).Format(format))
	}
}

func customCallerEncoder(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	// Get the full path and extract relevant parts
	fullPath := caller.FullPath()

	// Try to extract the most relevant part of the path
	if strings.Contains(fullPath, "/postloom/") {
		// Find the project root and show path from there
		parts := strings.Split(fullPath, "/postloom/")
		if len(parts) > 1 {
			enc.AppendString(parts[len(parts)-1])
			return
		}
	}

	// Fallback to short caller if our custom logic doesn't work
	enc.AppendString(caller.TrimmedPath())
}
