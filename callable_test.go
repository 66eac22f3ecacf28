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
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"

	"go.chromium.org/gax/bundling"
	"go.chromium.org/gax/clock/testclock"

	. "github.com/smartystreets/goconvey/convey"
)

// stashCallable records the CallContext of its last invocation.
type stashCallable[Req, Resp any] struct {
	mu    sync.Mutex
	cctx  CallContext
	calls int
}

func (s *stashCallable[Req, Resp]) FutureCall(ctx context.Context, req Req, cctx CallContext) *Future[Resp] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cctx = cctx
	s.calls++
	var zero Resp
	return ResolvedFuture(zero)
}

func (s *stashCallable[Req, Resp]) stashed() CallContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cctx
}

// scriptedCallable replays a fixed sequence of outcomes, repeating the last
// one once the script runs out.
type scriptedCallable[Req, Resp any] struct {
	mu      sync.Mutex
	results []func() *Future[Resp]
	calls   int
}

func (s *scriptedCallable[Req, Resp]) FutureCall(ctx context.Context, req Req, cctx CallContext) *Future[Resp] {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i]()
}

func (s *scriptedCallable[Req, Resp]) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func succeedWith[Resp any](val Resp) func() *Future[Resp] {
	return func() *Future[Resp] { return ResolvedFuture(val) }
}

func failWith[Resp any](err error) func() *Future[Resp] {
	return func() *Future[Resp] { return FailedFuture[Resp](err) }
}

// fakeChannel is a channel handle for binding assertions; calls never reach
// it.
type fakeChannel struct {
	grpc.ClientConnInterface
}

func TestBind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	Convey("Bind threads the channel to the primitive", t, func() {
		ch := &fakeChannel{}
		stash := &stashCallable[int, int]{}

		_, err := Create[int, int](stash).Bind(ch).Call(ctx, 0)
		So(err, ShouldBeNil)
		So(stash.stashed().Channel(), ShouldEqual, ch)
	})

	Convey("Bind survives the retrying decorator", t, func() {
		rctx, _ := newRetryTestContext(ctx)
		ch := &fakeChannel{}
		stash := &stashCallable[int, int]{}

		callable := Create[int, int](stash).
			Bind(ch).
			RetryableOn(codes.Unavailable).
			Retrying(testRetrySettings())
		_, err := callable.FutureCall(rctx, 0).Get(rctx)
		So(err, ShouldBeNil)
		So(stash.stashed().Channel(), ShouldEqual, ch)
	})

	Convey("Bind survives the paging decorator", t, func() {
		ch := &fakeChannel{}
		stash := &stashCallable[int, []int]{}

		paged := PageStreaming[int, []int, int](
			Create[int, []int](stash).Bind(ch), intPagesDescriptor{})
		_, err := paged.Call(ctx, 0)
		So(err, ShouldBeNil)
		So(stash.stashed().Channel(), ShouldEqual, ch)
	})

	Convey("Bind survives the bundling decorator", t, func() {
		ch := &fakeChannel{}
		stash := &stashCallable[*labeledIntList, []int]{}
		// The stash alone answers with an empty list, which the squarer
		// descriptor cannot split; record there and answer with the squares.
		primitive := FutureCallableFunc[*labeledIntList, []int](
			func(ctx context.Context, req *labeledIntList, cctx CallContext) *Future[[]int] {
				stash.FutureCall(ctx, req, cctx)
				return squarerCallable.FutureCall(ctx, req, cctx)
			})

		factory, err := bundling.NewFactory[*labeledIntList, []int](ctx, squarerDescriptor{}, bundling.Settings{
			Enabled:               true,
			ElementCountThreshold: 1,
			DelayThreshold:        time.Second,
		})
		So(err, ShouldBeNil)
		defer factory.Close()

		callable := Create[*labeledIntList, []int](primitive).
			Bind(ch).
			Bundling(squarerDescriptor{}, factory)
		_, err = callable.FutureCall(ctx, &labeledIntList{label: "one", ints: []int{1}}).Get(ctx)
		So(err, ShouldBeNil)
		So(stash.stashed().Channel(), ShouldEqual, ch)
	})
}

func TestCallContext(t *testing.T) {
	t.Parallel()

	Convey("With* methods leave the original untouched", t, func() {
		var cctx CallContext

		ch := &fakeChannel{}
		bound := cctx.WithChannel(ch)
		So(cctx.Channel(), ShouldBeNil)
		So(bound.Channel(), ShouldEqual, ch)

		deadline := testclock.TestTimeUTC.Add(time.Second)
		timed := bound.WithDeadline(deadline)
		if _, ok := bound.Deadline(); ok {
			t.Fatal("deadline leaked into the original context")
		}
		d, ok := timed.Deadline()
		So(ok, ShouldBeTrue)
		So(d, ShouldEqual, deadline)
		So(timed.Channel(), ShouldEqual, ch)
	})
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	Convey("A recognized status code is surfaced as-is", t, func() {
		sc := &scriptedCallable[int, int]{results: []func() *Future[int]{
			failWith[int](grpcErrorf(codes.FailedPrecondition, "known")),
		}}
		callable := Create[int, int](sc).RetryableOn(codes.Unavailable)

		_, err := callable.Call(ctx, 1)
		So(err, ShouldNotBeNil)
		apiErr := asError(err)
		So(apiErr, ShouldNotBeNil)
		So(apiErr.StatusCode(), ShouldEqual, codes.FailedPrecondition)
		So(err.Error(), ShouldContainSubstring, "known")
	})

	Convey("An opaque failure classifies as Unknown", t, func() {
		sc := &scriptedCallable[int, int]{results: []func() *Future[int]{
			failWith[int](plainError("unknown")),
		}}
		callable := Create[int, int](sc).RetryableOn()

		_, err := callable.Call(ctx, 1)
		So(err, ShouldNotBeNil)
		apiErr := asError(err)
		So(apiErr, ShouldNotBeNil)
		So(apiErr.StatusCode(), ShouldEqual, codes.Unknown)
		So(err.Error(), ShouldContainSubstring, "unknown")
	})
}
