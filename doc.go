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

// Package gax composes client-side behaviors around a unary RPC.
//
// The building block is UnaryCallable, an immutable value wrapping a
// primitive FutureCallable (typically a gRPC method invocation, see
// GRPCCallable). Decorator methods stack orthogonal behaviors on top of it:
//
//	callable := gax.Create(primitive).
//		Bind(conn).
//		RetryableOn(codes.Unavailable).
//		Retrying(retrySettings)
//
// Retrying re-issues attempts on retryable status codes under an overall
// deadline, PageStreaming presents a multi-page list method as one lazy
// element stream, and Bundling coalesces many small requests sharing a
// partition key into fewer underlying calls.
//
// Code that defers work (retry backoff, bundle delay thresholds) does so
// through the clock package, so installing a testclock into the Context makes
// every composed behavior deterministic under test.
package gax
