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

// Package grpcutil maps arbitrary errors into the abstract gRPC status code
// space. It is the only place the library interprets transport failures.
package grpcutil

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Errf builds a status error, exactly like status.Errorf. The alias exists
// because a function named "Errorf" taking a leading non-format argument
// trips go vet's printf checks at every call site.
var Errf = status.Errorf

// Message-less status errors, one per code this library routinely deals in.
//
// They read well as sentinel returns and as scripted failures in tests, where
// only the code matters.
var (
	Canceled           = Errf(codes.Canceled, "")
	Unknown            = Errf(codes.Unknown, "")
	InvalidArgument    = Errf(codes.InvalidArgument, "")
	DeadlineExceeded   = Errf(codes.DeadlineExceeded, "")
	NotFound           = Errf(codes.NotFound, "")
	PermissionDenied   = Errf(codes.PermissionDenied, "")
	ResourceExhausted  = Errf(codes.ResourceExhausted, "")
	FailedPrecondition = Errf(codes.FailedPrecondition, "")
	Aborted            = Errf(codes.Aborted, "")
	Unimplemented      = Errf(codes.Unimplemented, "")
	Internal           = Errf(codes.Internal, "")
	Unavailable        = Errf(codes.Unavailable, "")
)

// statusError is implemented by errors that carry a gRPC status, such as
// errors produced by status.Errorf and by gax.Error.
type statusError interface {
	GRPCStatus() *status.Status
}

// Code returns the gRPC code for a given error.
//
// The error's wrap chain is searched for an error carrying a gRPC status. An
// error carrying no recognized status (including nil chains of plain runtime
// errors) classifies as codes.Unknown.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	for ; err != nil; err = errors.Unwrap(err) {
		if se, ok := err.(statusError); ok {
			return se.GRPCStatus().Code()
		}
	}
	return codes.Unknown
}

// IsTransientCode returns true if the given gRPC code is commonly associated
// with a transient failure.
func IsTransientCode(code codes.Code) bool {
	switch code {
	case codes.Internal, codes.Unknown, codes.Unavailable:
		return true
	default:
		return false
	}
}
