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

package logging

import (
	"context"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// memLogger records formatted messages per level.
type memLogger struct {
	lines []string
}

func (m *memLogger) Debugf(format string, args ...any)   { m.LogCall(Debug, format, args) }
func (m *memLogger) Infof(format string, args ...any)    { m.LogCall(Info, format, args) }
func (m *memLogger) Warningf(format string, args ...any) { m.LogCall(Warning, format, args) }
func (m *memLogger) Errorf(format string, args ...any)   { m.LogCall(Error, format, args) }

func (m *memLogger) LogCall(l Level, format string, args []any) {
	m.lines = append(m.lines, fmt.Sprintf("%s: %s", l, fmt.Sprintf(format, args...)))
}

func TestLogging(t *testing.T) {
	t.Parallel()

	Convey("Logging", t, func() {
		ctx := context.Background()

		Convey("defaults to the null logger", func() {
			So(Get(ctx), ShouldEqual, Null)
			// And discards quietly.
			Errorf(ctx, "into the void %d", 42)
		})

		Convey("routes shorthands to the installed logger", func() {
			ml := &memLogger{}
			lctx := Set(ctx, ml)

			Infof(lctx, "hello %s", "world")
			Errorf(lctx, "oops")
			So(ml.lines, ShouldResemble, []string{"info: hello world", "error: oops"})
		})

		Convey("filters below the Context's level", func() {
			ml := &memLogger{}
			lctx := Set(ctx, ml)

			Debugf(lctx, "dropped by the default level")
			So(ml.lines, ShouldBeEmpty)

			dctx := SetLevel(lctx, Debug)
			Debugf(dctx, "kept")
			So(ml.lines, ShouldResemble, []string{"debug: kept"})

			ectx := SetLevel(lctx, Error)
			Warningf(ectx, "dropped")
			Errorf(ectx, "kept too")
			So(ml.lines, ShouldResemble, []string{"debug: kept", "error: kept too"})
		})

		Convey("IsLogging reflects the Context's level", func() {
			So(IsLogging(ctx, Info), ShouldBeTrue)
			So(IsLogging(ctx, Debug), ShouldBeFalse)
			So(IsLogging(SetLevel(ctx, Error), Warning), ShouldBeFalse)
		})
	})
}
