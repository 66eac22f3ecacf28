// Copyright 2024 The LUCI Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gologger provides a logging.Logger implementation backed by the
// go-logging library.
package gologger

import (
	"context"
	"io"
	"os"
	"sync"

	gol "github.com/op/go-logging"

	"go.chromium.org/gax/logging"
)

// StandardFormat prints time, logging level and the message, colored when the
// output supports it.
const StandardFormat = `%{color}[%{time:15:04:05.000} %{level:.4s}]%{color:reset} %{message}`

// LoggerConfig describes the terminal logger to create.
type LoggerConfig struct {
	Out    io.Writer // destination, os.Stderr if nil
	Format string    // go-logging format string, StandardFormat if empty

	once   sync.Once
	logger *gol.Logger
}

// StdConfig defines a LoggerConfig which writes to STDERR using the standard
// format.
var StdConfig = LoggerConfig{Out: os.Stderr}

// NewLogger returns a new logging.Logger instance configured by lc.
func (lc *LoggerConfig) NewLogger() logging.Logger {
	lc.once.Do(func() {
		out := lc.Out
		if out == nil {
			out = os.Stderr
		}
		format := lc.Format
		if format == "" {
			format = StandardFormat
		}
		backend := gol.NewBackendFormatter(
			gol.NewLogBackend(out, "", 0),
			gol.MustStringFormatter(format))
		l := gol.MustGetLogger("gax")
		l.SetBackend(gol.AddModuleLevel(backend))
		lc.logger = l
	})
	return &loggerImpl{lc.logger}
}

// Use installs a logger configured by lc into the Context.
//
// Level filtering happens in the logging package (see logging.SetLevel), so
// the go-logging backend itself is left wide open.
func (lc *LoggerConfig) Use(ctx context.Context) context.Context {
	return logging.Set(ctx, lc.NewLogger())
}

// StdLogger returns a Logger instance that writes to STDERR using the
// standard format.
func StdLogger() logging.Logger {
	return StdConfig.NewLogger()
}

type loggerImpl struct {
	l *gol.Logger
}

var _ logging.Logger = (*loggerImpl)(nil)

func (li *loggerImpl) Debugf(format string, args ...any) {
	li.LogCall(logging.Debug, format, args)
}

func (li *loggerImpl) Infof(format string, args ...any) {
	li.LogCall(logging.Info, format, args)
}

func (li *loggerImpl) Warningf(format string, args ...any) {
	li.LogCall(logging.Warning, format, args)
}

func (li *loggerImpl) Errorf(format string, args ...any) {
	li.LogCall(logging.Error, format, args)
}

func (li *loggerImpl) LogCall(l logging.Level, format string, args []any) {
	switch l {
	case logging.Debug:
		li.l.Debugf(format, args...)
	case logging.Info:
		li.l.Infof(format, args...)
	case logging.Warning:
		li.l.Warningf(format, args...)
	default:
		li.l.Errorf(format, args...)
	}
}
