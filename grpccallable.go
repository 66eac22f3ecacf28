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
	"fmt"

	"google.golang.org/protobuf/proto"

	"go.chromium.org/gax/logging"
)

// GRPCCallable adapts one gRPC method to the FutureCallable interface: the
// leaf of a callable stack issuing real calls.
//
// Req and Resp are the method's proto messages; newReply allocates an empty
// response for the transport to fill in, e.g.
//
//	gax.NewGRPCCallable[*pb.ListFooRequest](
//		"/service.Foo/ListFoo",
//		func() *pb.ListFooResponse { return &pb.ListFooResponse{} },
//	)
type GRPCCallable[Req, Resp proto.Message] struct {
	method   string
	newReply func() Resp
}

// NewGRPCCallable returns a primitive callable invoking the given
// fully-qualified method name on the CallContext's channel.
func NewGRPCCallable[Req, Resp proto.Message](method string, newReply func() Resp) GRPCCallable[Req, Resp] {
	return GRPCCallable[Req, Resp]{method: method, newReply: newReply}
}

// FutureCall implements FutureCallable.
//
// The CallContext's deadline, when set, bounds the outgoing call's Context;
// its transport options are forwarded verbatim.
func (g GRPCCallable[Req, Resp]) FutureCall(ctx context.Context, req Req, cctx CallContext) *Future[Resp] {
	f := NewFuture[Resp]()
	go func() {
		ch := cctx.Channel()
		if ch == nil {
			f.SetError(fmt.Errorf("no channel bound for %s", g.method))
			return
		}

		if deadline, ok := cctx.Deadline(); ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithDeadline(ctx, deadline)
			defer cancel()
		}

		reply := g.newReply()
		if err := ch.Invoke(ctx, g.method, req, reply, cctx.CallOptions()...); err != nil {
			logging.Debugf(ctx, "%s failed: %s", g.method, err)
			f.SetError(err)
			return
		}
		f.SetResult(reply)
	}()
	return f
}
