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

// Package testclock implements clock.Clock for tests: time only moves when
// the test advances it, and the test can observe every timer as it is set.
package testclock

import (
	"context"
	"sync"
	"time"

	"go.chromium.org/gax/clock"
)

// TestClock is a Clock interface with additional methods to help instrument
// it.
type TestClock interface {
	clock.Clock

	// Set sets the test clock's time.
	Set(time.Time)

	// Add advances the test clock's time.
	Add(time.Duration)

	// SetTimerCallback is a goroutine-safe method to set an instance-wide
	// callback that is invoked when any timer begins.
	SetTimerCallback(TimerCallback)
}

// TimerCallback is invoked each time a timer is set. This is useful for
// synchronizing state when testing: a callback can record the scheduled
// duration and advance the clock so the timer fires immediately.
type TimerCallback func(time.Duration, clock.Timer)

// testClock is a test-oriented implementation of the Clock interface.
type testClock struct {
	sync.Mutex

	now       time.Time  // the current clock time
	timerCond *sync.Cond // wakes blocked timers when time advances

	timerCallback TimerCallback
}

var _ TestClock = (*testClock)(nil)

// New returns a TestClock instance set at the specified time.
func New(now time.Time) TestClock {
	c := testClock{
		now: now,
	}
	c.timerCond = sync.NewCond(&c)
	return &c
}

func (c *testClock) Now() time.Time {
	c.Lock()
	defer c.Unlock()

	return c.now
}

func (c *testClock) Sleep(ctx context.Context, d time.Duration) clock.TimerResult {
	return <-c.After(ctx, d)
}

func (c *testClock) NewTimer(ctx context.Context) clock.Timer {
	return newTimer(ctx, c)
}

func (c *testClock) After(ctx context.Context, d time.Duration) <-chan clock.TimerResult {
	t := newTimer(ctx, c)
	t.Reset(d)
	return t.GetC()
}

func (c *testClock) Set(t time.Time) {
	c.Lock()
	defer c.Unlock()

	c.setTimeLocked(t)
}

func (c *testClock) Add(d time.Duration) {
	c.Lock()
	defer c.Unlock()

	c.setTimeLocked(c.now.Add(d))
}

func (c *testClock) setTimeLocked(t time.Time) {
	if t.Before(c.now) {
		panic("testclock: cannot go backwards in time")
	}
	c.now = t

	// Unblock any timers that are waiting on our lock.
	c.timerCond.Broadcast()
}

func (c *testClock) SetTimerCallback(callback TimerCallback) {
	c.Lock()
	defer c.Unlock()

	c.timerCallback = callback
}

func (c *testClock) getTimerCallback() TimerCallback {
	c.Lock()
	defer c.Unlock()

	return c.timerCallback
}

func (c *testClock) signalTimerSet(d time.Duration, t clock.Timer) {
	if callback := c.getTimerCallback(); callback != nil {
		callback(d, t)
	}
}

// invokeAt invokes the specified callback when the clock has advanced at or
// past the specified threshold.
//
// If ctx is canceled before the threshold is reached, the callback is invoked
// immediately with the Context's error.
func (c *testClock) invokeAt(ctx context.Context, threshold time.Time, callback func(clock.TimerResult)) {
	finishedC := make(chan struct{})
	stopC := make(chan struct{})

	// The monitor goroutine waits on the clock's condition until either the
	// threshold has been crossed or it is told to stop. The lock taken here is
	// owned by that goroutine.
	c.Lock()
	go func() {
		defer close(finishedC)

		defer func() {
			now := c.now
			c.Unlock()

			// If we finished naturally but our Context is Done, include the
			// Context error.
			callback(clock.TimerResult{Time: now, Err: ctx.Err()})
		}()

		for {
			if !c.now.Before(threshold) {
				return
			}

			c.timerCond.Wait()

			select {
			case <-stopC:
				return
			default:
			}
		}
	}()

	// Watch the Context and unblock the monitor if it expires before the
	// designated time.
	go func() {
		select {
		case <-finishedC:
			return

		case <-ctx.Done():
			// If we finished at the same moment the Context was canceled,
			// don't wake the monitor (determinism).
			select {
			case <-finishedC:
				return
			default:
			}

			// Broadcast under the lock: the monitor holds it until it parks
			// in Wait, so the wakeup cannot be lost.
			c.Lock()
			close(stopC)
			c.timerCond.Broadcast()
			c.Unlock()
		}
	}()
}
