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

package bundling

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Settings configures a bundling Factory.
type Settings struct {
	// Enabled turns bundling on. When false, the bundling decorator is a
	// pass-through: every request calls the underlying callable directly and
	// the Descriptor is never consulted.
	Enabled bool

	// ElementCountThreshold flushes a bundle once its accumulated element
	// count reaches the threshold. 0 disables the element-count trigger.
	ElementCountThreshold int

	// DelayThreshold flushes a bundle once its oldest request has waited this
	// long. 0 disables the delay trigger.
	DelayThreshold time.Duration

	// BlockingCallCountThreshold bounds the number of in-flight flushed
	// bundles; once saturated, submitters block until a flush completes.
	// 0 means unlimited: flushes never backpressure submitters.
	BlockingCallCountThreshold int

	// FlushRateLimit, if set, paces flush calls to the underlying callable.
	FlushRateLimit *rate.Limiter
}

// Validate returns an error if the settings are inconsistent.
func (s Settings) Validate() error {
	switch {
	case s.ElementCountThreshold < 0:
		return fmt.Errorf("element count threshold must be non-negative")
	case s.DelayThreshold < 0:
		return fmt.Errorf("delay threshold must be non-negative")
	case s.BlockingCallCountThreshold < 0:
		return fmt.Errorf("blocking call count threshold must be non-negative")
	case s.Enabled && s.ElementCountThreshold == 0 && s.DelayThreshold == 0:
		return fmt.Errorf("bundling needs at least one flush trigger")
	}
	return nil
}
