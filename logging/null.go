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

// Null is a logger that silently discards all messages.
var Null Logger = nullLogger{}

type nullLogger struct{}

var _ Logger = nullLogger{}

func (nullLogger) Debugf(string, ...any)        {}
func (nullLogger) Infof(string, ...any)         {}
func (nullLogger) Warningf(string, ...any)      {}
func (nullLogger) Errorf(string, ...any)        {}
func (nullLogger) LogCall(Level, string, []any) {}
