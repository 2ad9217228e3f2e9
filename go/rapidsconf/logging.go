// Copyright 2025 Supabase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rapidsconf

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

// Logger wires slog setup to the configuration registry.
type Logger struct {
	logLevel  Value[string]
	logFormat Value[string]
	logOutput Value[string]

	setupOnce sync.Once
	logger    *slog.Logger
	loggerMu  sync.Mutex
}

// NewLogger registers the logging configuration values.
func NewLogger(reg *Registry) *Logger {
	return &Logger{
		logLevel: Configure(reg, "log-level", Options[string]{
			Default:  "info",
			FlagName: "log-level",
		}),
		logFormat: Configure(reg, "log-format", Options[string]{
			Default:  "json",
			FlagName: "log-format",
		}),
		logOutput: Configure(reg, "log-output", Options[string]{
			Default:  "stderr",
			FlagName: "log-output",
		}),
	}
}

// RegisterFlags registers logging-related command line flags. This must be
// called before parsing flags.
func (lg *Logger) RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", lg.logLevel.Default(), "Log level (debug, info, warn, error)")
	fs.String("log-format", lg.logFormat.Default(), "Log format (json, text)")
	fs.String("log-output", lg.logOutput.Default(), "Log output (stdout, stderr, or file path)")
	BindFlags(fs, lg.logLevel, lg.logFormat, lg.logOutput)
}

// Setup initializes the logger from the configured values and installs it
// as the default slog logger. Safe to call more than once; only the first
// call builds the logger.
func (lg *Logger) Setup() *slog.Logger {
	lg.setupOnce.Do(func() {
		var level slog.Level
		switch strings.ToLower(lg.logLevel.Get()) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var output io.Writer
		outputStr := lg.logOutput.Get()
		switch strings.ToLower(outputStr) {
		case "", "stderr":
			output = os.Stderr
		case "stdout":
			output = os.Stdout
		default:
			file, err := os.OpenFile(outputStr, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				output = os.Stderr
			} else {
				output = file
			}
		}

		var handler slog.Handler
		switch strings.ToLower(lg.logFormat.Get()) {
		case "text":
			handler = slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
		}

		newLogger := slog.New(handler)
		slog.SetDefault(newLogger)

		lg.loggerMu.Lock()
		lg.logger = newLogger
		lg.loggerMu.Unlock()
	})

	return lg.Get()
}

// Get returns the configured logger, or the default slog logger when Setup
// has not run yet.
func (lg *Logger) Get() *slog.Logger {
	lg.loggerMu.Lock()
	defer lg.loggerMu.Unlock()
	if lg.logger == nil {
		return slog.Default()
	}
	return lg.logger
}
