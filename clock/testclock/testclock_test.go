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

package testclock

import (
	"context"
	"testing"
	"time"

	"go.chromium.org/gax/clock"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTestClock(t *testing.T) {
	t.Parallel()

	Convey("A testing clock instance", t, func() {
		ctx := context.Background()
		now := TestTimeLocal
		tc := New(now)

		Convey("returns the current time", func() {
			So(tc.Now(), ShouldEqual, now)
		})

		Convey("when advanced, updates the current time", func() {
			tc.Add(10 * time.Millisecond)
			So(tc.Now(), ShouldEqual, now.Add(10*time.Millisecond))
		})

		Convey("refuses to go backwards in time", func() {
			So(func() { tc.Set(now.Add(-time.Second)) }, ShouldPanic)
		})

		Convey("a timer fires when the clock crosses its threshold", func() {
			timer := tc.NewTimer(ctx)
			timer.Reset(time.Second)

			tc.Add(time.Second)
			result := <-timer.GetC()
			So(result.Incomplete(), ShouldBeFalse)
			So(result.Time, ShouldEqual, now.Add(time.Second))
		})

		Convey("a stopped timer never fires", func() {
			timer := tc.NewTimer(ctx)
			So(timer.Reset(time.Second), ShouldBeFalse)
			So(timer.Stop(), ShouldBeTrue)

			tc.Add(2 * time.Second)
			select {
			case <-timer.GetC():
				t.Fatal("stopped timer delivered a result")
			case <-time.After(10 * time.Millisecond):
			}
		})

		Convey("a canceled Context expires the timer immediately", func() {
			cctx, cancel := context.WithCancel(ctx)
			timer := tc.NewTimer(cctx)
			timer.Reset(time.Hour)

			cancel()
			result := <-timer.GetC()
			So(result.Incomplete(), ShouldBeTrue)
			So(result.Err, ShouldEqual, context.Canceled)
		})

		Convey("the timer callback observes every timer as it is set", func() {
			observed := make(chan time.Duration, 1)
			tc.SetTimerCallback(func(d time.Duration, _ clock.Timer) {
				observed <- d
				tc.Add(d)
			})

			result := tc.Sleep(ctx, 250*time.Millisecond)
			So(result.Incomplete(), ShouldBeFalse)
			So(<-observed, ShouldEqual, 250*time.Millisecond)
			So(tc.Now(), ShouldEqual, now.Add(250*time.Millisecond))
		})

		Convey("Reset rearms an already-fired timer on the same channel", func() {
			timer := tc.NewTimer(ctx)
			timer.Reset(time.Second)
			tc.Add(time.Second)
			So((<-timer.GetC()).Incomplete(), ShouldBeFalse)

			So(timer.Reset(time.Second), ShouldBeFalse)
			tc.Add(time.Second)
			result := <-timer.GetC()
			So(result.Incomplete(), ShouldBeFalse)
			So(result.Time, ShouldEqual, now.Add(2*time.Second))
		})
	})
}

func TestUseTime(t *testing.T) {
	t.Parallel()

	Convey("UseTime installs a test clock into the Context", t, func() {
		ctx, tc := UseTime(context.Background(), TestTimeUTC)
		So(clock.Get(ctx), ShouldEqual, tc)
		So(clock.Now(ctx), ShouldEqual, TestTimeUTC)

		tc.Add(time.Minute)
		So(clock.Now(ctx), ShouldEqual, TestTimeUTC.Add(time.Minute))
	})
}
