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

// Package clock is the module's only gateway to time.
//
// Code that needs "now" or wants to defer work asks the Clock carried by its
// Context instead of touching the time package. Production Contexts resolve
// to the system clock; tests install a testclock.TestClock, which turns every
// retry pause and bundle flush delay into an explicitly triggered, observable
// event.
package clock

import (
	"context"
	"time"
)

// Clock produces the current time and defers work.
//
// All four methods are safe for concurrent use. The Context passed to the
// deferral methods bounds the wait: once it is canceled, the pending timer
// fires early with an Incomplete result rather than hanging.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for the given duration and reports how the wait ended.
	//
	// Check Incomplete() on the result: a true value means the Context was
	// canceled mid-sleep and the full duration did not elapse.
	Sleep(ctx context.Context, d time.Duration) TimerResult

	// NewTimer returns an unarmed Timer bound to this clock and the given
	// Context. Arm it with Reset.
	NewTimer(ctx context.Context) Timer

	// After arms a one-shot timer and hands back its result channel.
	After(ctx context.Context, d time.Duration) <-chan TimerResult
}

// Timer is a restartable single-delivery alarm.
//
// The zero state is unarmed: nothing is delivered until Reset is called.
// Successive Resets reuse one result channel, so a loop can park on GetC
// while rearming between iterations.
type Timer interface {
	// GetC returns the channel the armed timer will deliver on.
	//
	// After a Stop, the channel simply never receives; callers waiting on it
	// stay parked, matching time.Timer.
	GetC() <-chan TimerResult

	// Reset arms the timer to fire after d, discarding any earlier arming.
	// It reports whether the timer was still pending when called.
	Reset(d time.Duration) bool

	// Stop disarms a pending timer so it will not deliver. It reports
	// whether there was anything to disarm.
	Stop() bool
}

// TimerResult tells a waiter when, and on what terms, its wait ended.
//
// The embedded Time is the clock reading at delivery. Err is nil for a
// natural expiry; when the wait was cut short by Context cancellation it
// holds the Context's error.
type TimerResult struct {
	time.Time

	Err error
}

// Incomplete reports whether the wait was interrupted before its full
// duration elapsed.
func (tr TimerResult) Incomplete() bool {
	return tr.Err != nil
}
