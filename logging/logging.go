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

// Package logging defines a context-scoped Logger interface.
//
// The default logger discards everything; installing a real logger (e.g.
// gologger) into a Context makes all library code on that Context chatty
// without threading a logger through every call.
package logging

import (
	"context"
)

// Logger interface is ultimately implemented by underlying logging libraries
// (like gologger).
type Logger interface {
	// Debugf formats its arguments according to the format, analogous to
	// fmt.Printf, and records the text as a log message at Debug level.
	Debugf(format string, args ...any)

	// Infof is like Debugf, but logs at Info level.
	Infof(format string, args ...any)

	// Warningf is like Debugf, but logs at Warning level.
	Warningf(format string, args ...any)

	// Errorf is like Debugf, but logs at Error level.
	Errorf(format string, args ...any)

	// LogCall is a generic logging function with an explicit level.
	LogCall(l Level, format string, args []any)
}

// Unique value for the logger key.
var loggerKey = "logging.Logger"

// Set installs a Logger into the Context.
func Set(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, &loggerKey, l)
}

// Get returns the Logger installed in the Context, or a null logger if none
// is installed.
func Get(ctx context.Context) Logger {
	if l, ok := ctx.Value(&loggerKey).(Logger); ok {
		return l
	}
	return Null
}

// Debugf is a shorthand method to call the current logger's Debugf method.
func Debugf(ctx context.Context, format string, args ...any) {
	Logf(ctx, Debug, format, args...)
}

// Infof is a shorthand method to call the current logger's Infof method.
func Infof(ctx context.Context, format string, args ...any) {
	Logf(ctx, Info, format, args...)
}

// Warningf is a shorthand method to call the current logger's Warningf
// method.
func Warningf(ctx context.Context, format string, args ...any) {
	Logf(ctx, Warning, format, args...)
}

// Errorf is a shorthand method to call the current logger's Errorf method.
func Errorf(ctx context.Context, format string, args ...any) {
	Logf(ctx, Error, format, args...)
}

// Logf is a shorthand method to call the current logger's logging method
// which corresponds to the supplied log level.
func Logf(ctx context.Context, l Level, format string, args ...any) {
	if IsLogging(ctx, l) {
		Get(ctx).LogCall(l, format, args)
	}
}
