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
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.chromium.org/gax/grpcutil"
)

// Error is the single failure type surfaced by a UnaryCallable.
//
// It carries the abstract status code of the underlying failure; failures
// with no recognized status classify as codes.Unknown (see grpcutil.Code).
// The underlying failure is available through errors.Unwrap.
type Error struct {
	code  codes.Code
	cause error
}

// StatusCode returns the abstract status code of the failure.
func (e *Error) StatusCode() codes.Code {
	return e.code
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return fmt.Sprintf("rpc failed with code %s", e.code)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// GRPCStatus lets the error participate in gRPC status interrogation
// (status.FromError, grpcutil.Code).
func (e *Error) GRPCStatus() *status.Status {
	if e.cause != nil {
		if s, ok := status.FromError(e.cause); ok {
			return s
		}
		return status.New(e.code, e.cause.Error())
	}
	return status.New(e.code, "")
}

// wrapError classifies err and wraps it into *Error.
//
// Already-wrapped errors pass through unchanged, so the classification
// performed by the innermost layer sticks.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return err
	}
	return &Error{code: grpcutil.Code(err), cause: err}
}

// errorCode returns the status code carried by err, classifying unrecognized
// failures as codes.Unknown.
func errorCode(err error) codes.Code {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode()
	}
	return grpcutil.Code(err)
}
