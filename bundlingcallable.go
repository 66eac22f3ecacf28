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

	"go.chromium.org/gax/bundling"
)

// bundlingCallable funnels individual requests into the factory's
// per-partition bundles. A flushed bundle issues one merged call through the
// inner callable; the CallContext composed at submission time is the one the
// flush observes.
type bundlingCallable[Req, Resp any] struct {
	inner   FutureCallable[Req, Resp]
	desc    bundling.Descriptor[Req, Resp]
	factory *bundling.Factory[Req, Resp]
}

func (bc *bundlingCallable[Req, Resp]) FutureCall(ctx context.Context, req Req, cctx CallContext) *Future[Resp] {
	if !bc.factory.Settings().Enabled {
		return bc.inner.FutureCall(ctx, req, cctx)
	}

	issuer, err := bc.factory.Submit(ctx, req, func(fctx context.Context, merged Req) (Resp, error) {
		return callOnce(fctx, bc.inner, merged, cctx)
	})
	if err != nil {
		return FailedFuture[Resp](err)
	}

	f := NewFuture[Resp]()
	go func() {
		resp, err := issuer.Wait(ctx)
		if err != nil {
			f.SetError(wrapError(err))
			return
		}
		f.SetResult(resp)
	}()
	return f
}
