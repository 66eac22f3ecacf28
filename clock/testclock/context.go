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

package testclock

import (
	"context"
	"time"

	"go.chromium.org/gax/clock"
)

// Fixed epochs for tests that need a concrete start time.
//
// Pinning the epoch keeps failure output and golden values stable across
// machines; the date itself is arbitrary, chosen far enough from the zero
// time that subtracting durations never goes negative.
var (
	// TestTimeUTC is the standard test epoch in UTC.
	TestTimeUTC = time.Date(2016, time.February, 3, 4, 5, 6, 7, time.UTC)

	// TestTimeLocal has the same date and wall-clock reading as TestTimeUTC,
	// but in the local zone (a different instant unless the local zone is
	// UTC), for tests exercising zone-sensitive paths.
	TestTimeLocal = time.Date(2016, time.February, 3, 4, 5, 6, 7, time.Local)
)

// UseTime equips a Context with a fresh TestClock parked at now.
//
// The clock is returned alongside the derived Context so the test can drive
// it (Add, Set, SetTimerCallback) while the code under test reads it through
// the clock package.
func UseTime(ctx context.Context, now time.Time) (context.Context, TestClock) {
	tc := New(now)
	return clock.Set(ctx, tc), tc
}
