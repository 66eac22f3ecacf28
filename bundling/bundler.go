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

// Package bundling accumulates individual requests into per-partition
// bundles and flushes each bundle as one merged call, fanning the response
// back out to the originating requests.
package bundling

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"go.chromium.org/gax/clock"
	"go.chromium.org/gax/logging"
)

// ErrClosed is returned by Submit after the Factory has been closed.
var ErrClosed = errors.New("bundling: factory is closed")

// FlushFn issues one merged bundle request against the underlying callable.
type FlushFn[Req, Resp any] func(ctx context.Context, merged Req) (Resp, error)

// Factory owns the open bundles of one bundled method.
//
// The Context supplied at construction scopes the Factory's background work:
// its clock drives delay-threshold timers and flush calls run on it.
// Canceling it abandons pending timers; Close is still required to flush.
type Factory[Req, Resp any] struct {
	ctx      context.Context
	desc     Descriptor[Req, Resp]
	settings Settings
	inflight *semaphore.Weighted // nil when unbounded

	mu      sync.Mutex
	closed  bool
	bundles map[string]*bundle[Req, Resp]
	wg      sync.WaitGroup
}

// bundle is an open accumulation of same-partition requests awaiting flush.
// It is mutated under the Factory's lock and detached from the partition map
// before flushing.
type bundle[Req, Resp any] struct {
	key     string
	flush   FlushFn[Req, Resp]
	created time.Time

	requests     []Req
	issuers      []*RequestIssuer[Req, Resp]
	elementCount int
	byteCount    int

	cancelTimer context.CancelFunc // nil when no delay timer is armed
}

// NewFactory returns a Factory bundling requests per desc and settings.
func NewFactory[Req, Resp any](ctx context.Context, desc Descriptor[Req, Resp], settings Settings) (*Factory[Req, Resp], error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	f := &Factory[Req, Resp]{
		ctx:      ctx,
		desc:     desc,
		settings: settings,
		bundles:  map[string]*bundle[Req, Resp]{},
	}
	if n := settings.BlockingCallCountThreshold; n > 0 {
		f.inflight = semaphore.NewWeighted(int64(n))
	}
	return f, nil
}

// Settings returns the Factory's settings.
func (f *Factory[Req, Resp]) Settings() Settings {
	return f.settings
}

// Submit appends req to the open bundle of its partition, creating the bundle
// if needed, and returns the issuer whose completion carries this request's
// slice of the bundle outcome.
//
// Submit may block when the blocking-call-count threshold is saturated and
// this submission triggers a flush.
func (f *Factory[Req, Resp]) Submit(ctx context.Context, req Req, flush FlushFn[Req, Resp]) (*RequestIssuer[Req, Resp], error) {
	key := f.desc.PartitionKey(req)
	issuer := newRequestIssuer[Req, Resp](req)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, ErrClosed
	}
	b := f.bundles[key]
	if b == nil {
		b = &bundle[Req, Resp]{key: key, flush: flush, created: clock.Now(f.ctx)}
		f.bundles[key] = b
		if f.settings.DelayThreshold > 0 {
			f.armDelayTimerLocked(b)
		}
	}
	b.requests = append(b.requests, req)
	b.issuers = append(b.issuers, issuer)
	b.elementCount += f.desc.CountElements(req)
	b.byteCount += f.desc.CountBytes(req)

	var detached *bundle[Req, Resp]
	if t := f.settings.ElementCountThreshold; t > 0 && b.elementCount >= t {
		delete(f.bundles, key)
		detached = b
	}
	f.mu.Unlock()

	if detached != nil {
		if detached.cancelTimer != nil {
			detached.cancelTimer()
		}
		// The triggering submitter claims the in-flight slot on its own
		// goroutine, blocking while the limit is saturated.
		f.launchFlush(ctx, detached)
	}
	return issuer, nil
}

// Close flushes all open bundles, waits for every in-flight flush to
// complete, and rejects further submissions.
func (f *Factory[Req, Resp]) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	open := f.bundles
	f.bundles = nil
	f.mu.Unlock()

	for _, b := range open {
		if b.cancelTimer != nil {
			b.cancelTimer()
		}
		f.launchFlush(f.ctx, b)
	}
	f.wg.Wait()
	logging.Debugf(f.ctx, "bundling: factory closed, %d partitions flushed", len(open))
	return nil
}

// armDelayTimerLocked schedules the delay-threshold flush for a freshly
// created bundle. Called with f.mu held.
func (f *Factory[Req, Resp]) armDelayTimerLocked(b *bundle[Req, Resp]) {
	timerCtx, cancel := context.WithCancel(f.ctx)
	b.cancelTimer = cancel
	go func() {
		if tr := <-clock.After(timerCtx, f.settings.DelayThreshold); tr.Incomplete() {
			return
		}

		f.mu.Lock()
		if f.bundles[b.key] != b {
			// Already detached by an element-count trigger or by Close.
			f.mu.Unlock()
			return
		}
		delete(f.bundles, b.key)
		f.mu.Unlock()

		logging.Debugf(f.ctx, "bundling: delay threshold reached for partition %q after %s",
			b.key, clock.Since(f.ctx, b.created))
		f.launchFlush(f.ctx, b)
	}()
}

// launchFlush claims an in-flight slot on the calling goroutine, blocking
// when the blocking-call-count threshold is saturated, then runs the flush
// asynchronously.
func (f *Factory[Req, Resp]) launchFlush(ctx context.Context, b *bundle[Req, Resp]) {
	f.wg.Add(1)
	if f.inflight != nil {
		if err := f.inflight.Acquire(ctx, 1); err != nil {
			f.wg.Done()
			f.desc.SplitError(err, b.issuers)
			return
		}
	}
	go func() {
		defer f.wg.Done()
		if f.inflight != nil {
			defer f.inflight.Release(1)
		}
		f.runFlush(b)
	}()
}

func (f *Factory[Req, Resp]) runFlush(b *bundle[Req, Resp]) {
	if lim := f.settings.FlushRateLimit; lim != nil {
		if err := lim.Wait(f.ctx); err != nil {
			f.desc.SplitError(err, b.issuers)
			return
		}
	}

	merged := f.desc.MergeRequests(b.requests)
	resp, err := b.flush(f.ctx, merged)
	if err != nil {
		logging.Warningf(f.ctx, "bundling: flush of %d requests for partition %q failed: %s",
			len(b.issuers), b.key, err)
		f.desc.SplitError(err, b.issuers)
		return
	}
	f.desc.SplitResponse(resp, b.issuers)
}
