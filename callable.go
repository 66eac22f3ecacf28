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

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"

	"go.chromium.org/gax/bundling"
)

// FutureCallable issues one unary call attempt.
//
// This is the primitive every decorator wraps: given a request and the
// composed CallContext, it returns a Future of the response. A failed Future
// carries either an error with a recognized status code or an opaque error
// (classified as codes.Unknown by the layers above).
type FutureCallable[Req, Resp any] interface {
	FutureCall(ctx context.Context, req Req, cctx CallContext) *Future[Resp]
}

// FutureCallableFunc adapts a plain function to the FutureCallable interface.
type FutureCallableFunc[Req, Resp any] func(ctx context.Context, req Req, cctx CallContext) *Future[Resp]

// FutureCall implements FutureCallable.
func (f FutureCallableFunc[Req, Resp]) FutureCall(ctx context.Context, req Req, cctx CallContext) *Future[Resp] {
	return f(ctx, req, cctx)
}

// UnaryCallable is the composition root for a unary RPC.
//
// A UnaryCallable is immutable: each decorator method returns a new value
// with one more behavior stacked on top, so partial stacks can be shared
// freely across goroutines.
type UnaryCallable[Req, Resp any] struct {
	callable  FutureCallable[Req, Resp]
	cctx      CallContext
	retryable map[codes.Code]struct{}
}

// Create returns a base UnaryCallable issuing calls through the supplied
// primitive.
func Create[Req, Resp any](fc FutureCallable[Req, Resp]) UnaryCallable[Req, Resp] {
	return UnaryCallable[Req, Resp]{callable: fc}
}

// Bind returns a callable whose calls carry the supplied channel in their
// CallContext. Every underlying invocation, including retried attempts, page
// fetches and bundle flushes, observes it.
func (u UnaryCallable[Req, Resp]) Bind(ch grpc.ClientConnInterface) UnaryCallable[Req, Resp] {
	u.cctx = u.cctx.WithChannel(ch)
	return u
}

// RetryableOn declares the set of status codes considered retryable and
// arranges for every failure of the stack to surface as *Error carrying its
// classified code.
//
// RetryableOn on its own does not retry; stack Retrying on top for that.
func (u UnaryCallable[Req, Resp]) RetryableOn(retryable ...codes.Code) UnaryCallable[Req, Resp] {
	set := make(map[codes.Code]struct{}, len(retryable))
	for _, c := range retryable {
		set[c] = struct{}{}
	}
	u.retryable = set
	u.callable = errorWrappingCallable[Req, Resp]{inner: u.callable}
	return u
}

// Retrying wraps the callable with the retry decorator configured by
// settings, retrying the codes previously declared via RetryableOn.
//
// The decorator defers between attempts through the clock installed in the
// call's Context (see the clock package), so it never reads wall time
// directly.
func (u UnaryCallable[Req, Resp]) Retrying(settings RetrySettings) UnaryCallable[Req, Resp] {
	u.callable = &retryingCallable[Req, Resp]{
		inner:     u.callable,
		settings:  settings,
		retryable: u.retryable,
	}
	return u
}

// Bundling wraps the callable with the bundling decorator.
//
// Individual requests are accumulated into per-partition bundles owned by
// factory; a flushed bundle issues one merged call through the wrapped
// callable and fans the response back out to the originating requests.
func (u UnaryCallable[Req, Resp]) Bundling(desc bundling.Descriptor[Req, Resp], factory *bundling.Factory[Req, Resp]) UnaryCallable[Req, Resp] {
	u.callable = &bundlingCallable[Req, Resp]{
		inner:   u.callable,
		desc:    desc,
		factory: factory,
	}
	return u
}

// FutureCall issues the request asynchronously.
//
// The returned Future completes with the response, or with an *Error
// describing the failure.
func (u UnaryCallable[Req, Resp]) FutureCall(ctx context.Context, req Req) *Future[Resp] {
	return u.callable.FutureCall(ctx, req, u.cctx)
}

// Call issues the request and blocks until it completes.
func (u UnaryCallable[Req, Resp]) Call(ctx context.Context, req Req) (Resp, error) {
	resp, err := u.FutureCall(ctx, req).Get(ctx)
	if err != nil {
		var zero Resp
		return zero, wrapError(err)
	}
	return resp, nil
}

// callOnce is a convenience used by the retrying and bundling layers: one
// synchronous pass through the stack below the given callable.
func callOnce[Req, Resp any](ctx context.Context, fc FutureCallable[Req, Resp], req Req, cctx CallContext) (Resp, error) {
	resp, err := fc.FutureCall(ctx, req, cctx).Get(ctx)
	if err != nil {
		var zero Resp
		return zero, wrapError(err)
	}
	return resp, nil
}

// errorWrappingCallable surfaces every failure of the inner callable as
// *Error carrying the failure's classified status code.
type errorWrappingCallable[Req, Resp any] struct {
	inner FutureCallable[Req, Resp]
}

func (e errorWrappingCallable[Req, Resp]) FutureCall(ctx context.Context, req Req, cctx CallContext) *Future[Resp] {
	inner := e.inner.FutureCall(ctx, req, cctx)
	outer := NewFuture[Resp]()
	go func() {
		resp, err := inner.Get(ctx)
		if err != nil {
			outer.SetError(wrapError(err))
			return
		}
		outer.SetResult(resp)
	}()
	return outer
}
