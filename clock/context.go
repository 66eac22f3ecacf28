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

package clock

import (
	"context"
	"time"
)

// Unique value for the clock key.
var clockKey = "clock.Clock"

// Set creates a new Context with the supplied Clock installed.
func Set(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, &clockKey, c)
}

// Get returns the Clock installed in the supplied Context, defaulting to the
// system clock if none is set.
func Get(ctx context.Context) Clock {
	if c, ok := ctx.Value(&clockKey).(Clock); ok {
		return c
	}
	return GetSystemClock()
}

// Now calls Clock.Now on the Clock instance stored in the supplied Context.
func Now(ctx context.Context) time.Time {
	return Get(ctx).Now()
}

// Sleep calls Clock.Sleep on the Clock instance stored in the supplied
// Context.
func Sleep(ctx context.Context, d time.Duration) TimerResult {
	return Get(ctx).Sleep(ctx, d)
}

// NewTimer calls Clock.NewTimer on the Clock instance stored in the supplied
// Context.
func NewTimer(ctx context.Context) Timer {
	return Get(ctx).NewTimer(ctx)
}

// After waits a duration using the Clock instance stored in the supplied
// Context, then sends the current time over the returned channel.
//
// If the supplied Context is canceled, the timer will expire immediately.
func After(ctx context.Context, d time.Duration) <-chan TimerResult {
	return Get(ctx).After(ctx, d)
}

// Since is an equivalent of time.Since.
func Since(ctx context.Context, t time.Time) time.Duration {
	return Now(ctx).Sub(t)
}

// Until is an equivalent of time.Until.
func Until(ctx context.Context, t time.Time) time.Duration {
	return t.Sub(Now(ctx))
}
