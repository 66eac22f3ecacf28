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
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFuture(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	Convey("Future", t, func() {
		Convey("delivers a result to a waiter", func() {
			f := NewFuture[int]()
			go f.SetResult(42)

			v, err := f.Get(ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 42)

			// Completion is sticky.
			v, err = f.Get(ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 42)
		})

		Convey("delivers an error to a waiter", func() {
			boom := plainError("boom")
			f := FailedFuture[int](boom)

			_, err := f.Get(ctx)
			So(err, ShouldEqual, boom)
		})

		Convey("ResolvedFuture is already done", func() {
			f := ResolvedFuture("done")
			select {
			case <-f.Done():
			default:
				t.Fatal("resolved future is not done")
			}
		})

		Convey("completing twice panics", func() {
			f := ResolvedFuture(1)
			So(func() { f.SetResult(2) }, ShouldPanic)
			So(func() { f.SetError(plainError("nope")) }, ShouldPanic)
		})

		Convey("Get honors Context cancellation", func() {
			f := NewFuture[int]()
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := f.Get(cctx)
			So(err, ShouldEqual, context.Canceled)
		})
	})
}
