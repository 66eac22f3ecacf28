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
	"sync"
	"time"

	"go.chromium.org/gax/clock"
)

// timer is a Timer implementation bound to a testClock.
//
// The timer fires when the test clock's time crosses the threshold set by
// Reset. Stop and Reset retire the pending firing by bumping the timer's
// generation; a stale firing is silently dropped.
type timer struct {
	ctx    context.Context
	clk    *testClock
	afterC chan clock.TimerResult

	mu     sync.Mutex
	gen    int
	cancel context.CancelFunc // cancels the pending invokeAt, nil if inactive
}

var _ clock.Timer = (*timer)(nil)

func newTimer(ctx context.Context, clk *testClock) *timer {
	return &timer{
		ctx:    ctx,
		clk:    clk,
		afterC: make(chan clock.TimerResult, 1),
	}
}

func (t *timer) GetC() <-chan clock.TimerResult {
	return t.afterC
}

func (t *timer) Reset(d time.Duration) bool {
	t.mu.Lock()
	active := t.clearLocked()
	t.gen++
	gen := t.gen

	monitorCtx, cancel := context.WithCancel(t.ctx)
	t.cancel = cancel
	threshold := t.clk.Now().Add(d)
	t.mu.Unlock()

	// Let instrumentation observe the timer before it can fire; the callback
	// may advance the clock past the threshold.
	t.clk.signalTimerSet(d, t)

	t.clk.invokeAt(monitorCtx, threshold, func(tr clock.TimerResult) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.gen != gen {
			// Retired by a Stop or a newer Reset.
			return
		}
		t.cancel = nil
		cancel()
		t.afterC <- tr
	})
	return active
}

func (t *timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	active := t.clearLocked()
	t.gen++
	return active
}

// clearLocked cancels the pending firing, if any, and drains an unconsumed
// result so the channel can be reused.
func (t *timer) clearLocked() bool {
	active := t.cancel != nil
	if active {
		t.cancel()
		t.cancel = nil
	}
	select {
	case <-t.afterC:
	default:
	}
	return active
}
