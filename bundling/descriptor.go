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

package bundling

import (
	"context"
	"sync"
)

// Descriptor teaches a Factory how requests of a particular method bundle
// together.
//
// Implementations are stateless strategies, safe to share across calls.
type Descriptor[Req, Resp any] interface {
	// PartitionKey derives the bundle partition of a request. Requests with
	// equal keys may share a bundle; requests with distinct keys never do.
	PartitionKey(req Req) string

	// MergeRequests combines same-partition requests, in submission order,
	// into one bundle request.
	MergeRequests(reqs []Req) Req

	// SplitResponse distributes a bundle response across the originating
	// requests. The issuers arrive in submission order; each must receive
	// exactly one SetResponse.
	SplitResponse(resp Resp, bundle []*RequestIssuer[Req, Resp])

	// SplitError propagates a bundle failure to the originating requests.
	// Each issuer must receive exactly one SetError.
	SplitError(err error, bundle []*RequestIssuer[Req, Resp])

	// CountElements returns the number of elements a request contributes to
	// a bundle's element count.
	CountElements(req Req) int

	// CountBytes returns the number of bytes a request contributes to a
	// bundle's byte count.
	CountBytes(req Req) int
}

// RequestIssuer is the per-entry handle within a bundle. It carries the
// original request and the one-shot sink through which the bundle flush
// delivers this entry's slice of the outcome.
//
// Exactly one of SetResponse or SetError is invoked for each issuer during a
// bundle's lifetime; a second completion panics.
type RequestIssuer[Req, Resp any] struct {
	req   Req
	doneC chan struct{}

	mu   sync.Mutex
	done bool
	resp Resp
	err  error
}

func newRequestIssuer[Req, Resp any](req Req) *RequestIssuer[Req, Resp] {
	return &RequestIssuer[Req, Resp]{req: req, doneC: make(chan struct{})}
}

// Request returns the original request of this entry.
func (ri *RequestIssuer[Req, Resp]) Request() Req {
	return ri.req
}

// SetResponse completes this entry with its slice of the bundle response.
func (ri *RequestIssuer[Req, Resp]) SetResponse(resp Resp) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.completeLocked()
	ri.resp = resp
}

// SetError completes this entry with a failure.
func (ri *RequestIssuer[Req, Resp]) SetError(err error) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.completeLocked()
	ri.err = err
}

func (ri *RequestIssuer[Req, Resp]) completeLocked() {
	if ri.done {
		panic("bundling: request issuer completed twice")
	}
	ri.done = true
	close(ri.doneC)
}

// Wait blocks until the entry is completed or the Context is canceled.
func (ri *RequestIssuer[Req, Resp]) Wait(ctx context.Context) (Resp, error) {
	select {
	case <-ri.doneC:
	case <-ctx.Done():
		var zero Resp
		return zero, ctx.Err()
	}

	ri.mu.Lock()
	defer ri.mu.Unlock()
	return ri.resp, ri.err
}
