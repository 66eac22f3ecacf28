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
	"time"

	"google.golang.org/grpc"
)

// CallContext carries the per-invocation call parameters threaded through
// every decorator layer down to the primitive callable.
//
// CallContext is an immutable value: the With* methods return modified
// copies, leaving the receiver untouched, so the context observed by the
// primitive reflects every composed override.
type CallContext struct {
	channel  grpc.ClientConnInterface
	deadline time.Time
	callOpts []grpc.CallOption
}

// WithChannel returns a CallContext with the channel handle replaced.
func (cc CallContext) WithChannel(ch grpc.ClientConnInterface) CallContext {
	cc.channel = ch
	return cc
}

// WithDeadline returns a CallContext with the per-call deadline replaced.
func (cc CallContext) WithDeadline(d time.Time) CallContext {
	cc.deadline = d
	return cc
}

// WithCallOptions returns a CallContext with the transport options replaced.
func (cc CallContext) WithCallOptions(opts ...grpc.CallOption) CallContext {
	cc.callOpts = opts
	return cc
}

// Channel returns the channel handle the primitive should issue the call on,
// or nil if none is bound.
func (cc CallContext) Channel() grpc.ClientConnInterface {
	return cc.channel
}

// Deadline returns the per-call deadline. ok is false when no deadline is
// set.
func (cc CallContext) Deadline() (deadline time.Time, ok bool) {
	return cc.deadline, !cc.deadline.IsZero()
}

// CallOptions returns the transport options for the call.
func (cc CallContext) CallOptions() []grpc.CallOption {
	return cc.callOpts
}
