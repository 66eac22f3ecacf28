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
	"sync"
	"time"
)

// GetSystemClock returns the Clock backed by real wall time. It is what
// Get falls back to when a Context has no clock installed.
func GetSystemClock() Clock {
	return systemClock{}
}

// systemClock delegates straight to the time package.
type systemClock struct{}

var _ Clock = systemClock{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (sc systemClock) Sleep(ctx context.Context, d time.Duration) TimerResult {
	return <-sc.After(ctx, d)
}

func (systemClock) NewTimer(ctx context.Context) Timer {
	return &systemTimer{
		ctx:    ctx,
		afterC: make(chan TimerResult, 1),
	}
}

func (sc systemClock) After(ctx context.Context, d time.Duration) <-chan TimerResult {
	t := sc.NewTimer(ctx)
	t.Reset(d)
	return t.GetC()
}

// systemTimer implements Timer on top of time.Timer.
//
// Each Reset spawns a monitor goroutine that delivers a single TimerResult to
// afterC when the underlying timer fires or when the bound Context is
// canceled. Stop (or a subsequent Reset) retires the previous monitor without
// a delivery.
type systemTimer struct {
	ctx    context.Context
	afterC chan TimerResult

	mu     sync.Mutex
	cancel context.CancelFunc // cancels the active monitor, nil if inactive
}

var _ Timer = (*systemTimer)(nil)

func (t *systemTimer) GetC() <-chan TimerResult {
	return t.afterC
}

func (t *systemTimer) Reset(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	active := t.clearLocked()
	monitorCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	go func() {
		tmr := time.NewTimer(d)
		defer tmr.Stop()

		var result TimerResult
		select {
		case now := <-tmr.C:
			result = TimerResult{Time: now}
		case <-t.ctx.Done():
			result = TimerResult{Time: time.Now(), Err: t.ctx.Err()}
		case <-monitorCtx.Done():
			// Stopped or Reset; no delivery.
			return
		}

		// The monitor may have been retired while we were selecting. Delivery
		// and retirement are serialized under the timer's lock so a stopped
		// timer never emits a result.
		t.mu.Lock()
		defer t.mu.Unlock()
		select {
		case <-monitorCtx.Done():
		default:
			t.cancel() // release the monitor context
			t.cancel = nil
			t.afterC <- result
		}
	}()
	return active
}

func (t *systemTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clearLocked()
}

// clearLocked retires the active monitor, if any, and drains a fired result
// that was never consumed so that the channel can be reused by Reset.
func (t *systemTimer) clearLocked() bool {
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
