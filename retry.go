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
	"time"

	"google.golang.org/grpc/codes"

	"go.chromium.org/gax/clock"
	"go.chromium.org/gax/logging"
)

// DeadlineSleepDuration is the sentinel pause used between attempts that
// failed with codes.DeadlineExceeded: the computed backoff is skipped and the
// next attempt is scheduled without delay.
const DeadlineSleepDuration time.Duration = 0

// RetrySettings configures the retry decorator's backoff schedule and overall
// deadline.
//
// The retry delay grows by RetryDelayMultiplier after each attempt, capped at
// MaxRetryDelay; the per-attempt RPC timeout grows the same way. TotalTimeout
// bounds the total elapsed wall time across all attempts and sleeps.
type RetrySettings struct {
	InitialRetryDelay    time.Duration
	RetryDelayMultiplier float64
	MaxRetryDelay        time.Duration

	InitialRPCTimeout    time.Duration
	RPCTimeoutMultiplier float64
	MaxRPCTimeout        time.Duration

	TotalTimeout time.Duration
}

// Validate returns an error if the settings are inconsistent.
func (s RetrySettings) Validate() error {
	switch {
	case s.InitialRetryDelay < 0 || s.InitialRPCTimeout < 0 || s.TotalTimeout < 0:
		return fmt.Errorf("durations must be non-negative")
	case s.RetryDelayMultiplier < 1 || s.RPCTimeoutMultiplier < 1:
		return fmt.Errorf("multipliers must be >= 1")
	case s.InitialRetryDelay > s.MaxRetryDelay:
		return fmt.Errorf("initial retry delay %s exceeds max %s", s.InitialRetryDelay, s.MaxRetryDelay)
	case s.InitialRPCTimeout > s.MaxRPCTimeout:
		return fmt.Errorf("initial rpc timeout %s exceeds max %s", s.InitialRPCTimeout, s.MaxRPCTimeout)
	}
	return nil
}

// DefaultRetryableCodes returns the codes commonly safe to retry on unary
// calls.
func DefaultRetryableCodes() []codes.Code {
	return []codes.Code{codes.Unavailable, codes.DeadlineExceeded}
}

// retryingCallable re-issues the inner call on retryable failures under the
// configured deadline and backoff schedule.
type retryingCallable[Req, Resp any] struct {
	inner     FutureCallable[Req, Resp]
	settings  RetrySettings
	retryable map[codes.Code]struct{}
}

func (rc *retryingCallable[Req, Resp]) FutureCall(ctx context.Context, req Req, cctx CallContext) *Future[Resp] {
	f := NewFuture[Resp]()
	go rc.run(ctx, req, cctx, f)
	return f
}

func (rc *retryingCallable[Req, Resp]) run(ctx context.Context, req Req, cctx CallContext, f *Future[Resp]) {
	clk := clock.Get(ctx)

	delay := rc.settings.InitialRetryDelay
	timeout := rc.settings.InitialRPCTimeout
	totalDeadline := clk.Now().Add(rc.settings.TotalTimeout)

	for {
		attemptDeadline := clk.Now().Add(timeout)
		if attemptDeadline.After(totalDeadline) {
			attemptDeadline = totalDeadline
		}

		resp, err := callOnce(ctx, rc.inner, req, cctx.WithDeadline(attemptDeadline))
		if err == nil {
			f.SetResult(resp)
			return
		}

		code := errorCode(err)
		var sleep time.Duration
		switch {
		case code == codes.DeadlineExceeded:
			// The attempt already consumed its time slice; re-attempt without
			// additional backoff.
			sleep = DeadlineSleepDuration
		case rc.isRetryable(code):
			sleep = delay
		default:
			f.SetError(wrapError(err))
			return
		}

		if !clk.Now().Add(sleep).Before(totalDeadline) {
			f.SetError(wrapError(err))
			return
		}

		logging.Debugf(ctx, "retrying after %s failure in %s", code, sleep)
		if tr := clk.Sleep(ctx, sleep); tr.Incomplete() {
			f.SetError(wrapError(tr.Err))
			return
		}

		delay = capDuration(scaleDuration(delay, rc.settings.RetryDelayMultiplier), rc.settings.MaxRetryDelay)
		timeout = capDuration(scaleDuration(timeout, rc.settings.RPCTimeoutMultiplier), rc.settings.MaxRPCTimeout)
	}
}

func (rc *retryingCallable[Req, Resp]) isRetryable(code codes.Code) bool {
	_, ok := rc.retryable[code]
	return ok
}

func scaleDuration(d time.Duration, multiplier float64) time.Duration {
	return time.Duration(float64(d) * multiplier)
}

func capDuration(d, max time.Duration) time.Duration {
	if d > max {
		return max
	}
	return d
}
