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

package logging

import (
	"context"
)

// Level is an enumeration consisting of supported log levels.
type Level int

// Level enumerations.
//
// Debug is the lowest level; messages at levels below the Context's
// configured level are discarded before reaching the logger.
const (
	Debug Level = iota
	Info
	Warning
	Error
)

// DefaultLevel is the default Level for Contexts with no explicit level set.
const DefaultLevel = Info

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Unique value for the level key.
var levelKey = "logging.Level"

// SetLevel returns a Context with the specified minimum logging level
// installed.
func SetLevel(ctx context.Context, l Level) context.Context {
	return context.WithValue(ctx, &levelKey, l)
}

// GetLevel returns the minimum logging level of the Context.
func GetLevel(ctx context.Context) Level {
	if l, ok := ctx.Value(&levelKey).(Level); ok {
		return l
	}
	return DefaultLevel
}

// IsLogging tests whether the Context is configured to log at the specified
// level.
func IsLogging(ctx context.Context, l Level) bool {
	return l >= GetLevel(ctx)
}
