// Copyright 2024-2026 The PackStream Authors
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

package packstream

import (
	"errors"
	"fmt"
)

// An Error is the error type returned by every operation in this package.
// It pairs a [Code] with an underlying Go error whose message carries enough
// context to be diagnostic: the offending marker byte, buffer offset, or
// value type. Callers can match on the code with [CodeOf] or reach the
// underlying error with the standard library's errors.As and errors.Is.
type Error struct {
	code Code
	err  error
}

// NewError annotates any Go error with a codec error code.
func NewError(c Code, underlying error) *Error {
	return &Error{code: c, err: underlying}
}

func (e *Error) Error() string {
	text := e.err.Error()
	if text == "" {
		return e.code.String()
	}
	return e.code.String() + ": " + text
}

// Unwrap allows errors.Is and errors.As access to the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the error's code.
func (e *Error) Code() Code {
	return e.code
}

// CodeOf returns the error's code if it is or wraps a *packstream.Error, and
// CodeInternal otherwise.
func CodeOf(err error) Code {
	if packErr, ok := asError(err); ok {
		return packErr.Code()
	}
	return CodeInternal
}

// errorf calls fmt.Errorf with the supplied template and arguments, then
// wraps the resulting error.
func errorf(c Code, template string, args ...any) *Error {
	return NewError(c, fmt.Errorf(template, args...))
}

// asError uses errors.As to unwrap any error and look for a packstream
// *Error.
func asError(err error) (*Error, bool) {
	var pe *Error
	ok := errors.As(err, &pe)
	return pe, ok
}

// hookError wraps a transform's own failure, leaving the transform's error
// reachable through the chain unchanged.
func hookError(err error) *Error {
	if packErr, ok := asError(err); ok {
		return packErr
	}
	return NewError(CodeHookFailure, err)
}
