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

package gax

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.chromium.org/gax/clock"
	"go.chromium.org/gax/clock/testclock"
	"go.chromium.org/gax/grpcutil"
)

var grpcErrorf = grpcutil.Errf

func plainError(msg string) error {
	return errors.New(msg)
}

func asError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// sleepRecorder accumulates the durations of every sleep scheduled on the
// test clock, mirroring what a recording scheduler would observe.
type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) add(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleeps = append(r.sleeps, d)
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.sleeps...)
}

// newRetryTestContext installs a test clock that records every scheduled
// sleep and advances synthetic time so the sleeper wakes immediately.
//
// Zero-length sleeps still advance the clock by a millisecond so loops
// bounded by a total timeout make progress.
func newRetryTestContext(ctx context.Context) (context.Context, *sleepRecorder) {
	ctx, tc := testclock.UseTime(ctx, testclock.TestTimeUTC)
	rec := &sleepRecorder{}
	tc.SetTimerCallback(func(d time.Duration, _ clock.Timer) {
		rec.add(d)
		if d <= 0 {
			d = time.Millisecond
		}
		tc.Add(d)
	})
	return ctx, rec
}

// testRetrySettings mirrors a flat two-millisecond schedule under a ten
// millisecond overall deadline.
func testRetrySettings() RetrySettings {
	return RetrySettings{
		InitialRetryDelay:    2 * time.Millisecond,
		RetryDelayMultiplier: 1,
		MaxRetryDelay:        2 * time.Millisecond,
		InitialRPCTimeout:    2 * time.Millisecond,
		RPCTimeoutMultiplier: 1,
		MaxRPCTimeout:        2 * time.Millisecond,
		TotalTimeout:         10 * time.Millisecond,
	}
}
