// Copyright 2025 Supabase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rperrors defines the coded errors raised by the GPU plan
// rewriting layer. Every error carries a stable ID so operators can look up
// what went wrong and whether the expression fell back to CPU execution.
package rperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an error for the host engine's fallback logic.
type Code int

const (
	// CodeInternal is a bug in the rewriter or in the tree shape handed to
	// it by the host engine.
	CodeInternal Code = iota
	// CodeUnsupportedShape means the plan subtree has a shape the rewriter
	// does not recognize. The expression must fall back to CPU execution.
	CodeUnsupportedShape
	// CodeOutOfRange means a decimal type exceeds what any device kernel
	// can represent.
	CodeOutOfRange
)

// String returns the code's name.
func (c Code) String() string {
	switch c {
	case CodeInternal:
		return "INTERNAL"
	case CodeUnsupportedShape:
		return "UNSUPPORTED_SHAPE"
	case CodeOutOfRange:
		return "OUT_OF_RANGE"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Errors added to the list of variables below must be added to the Errors
// slice a little below in this same file. This enables auto-documentation of
// the error codes.
var (
	// RP13001 General Error
	RP13001 = errorWithCode("RP13001", CodeInternal, "[BUG] %s", "This error should not happen and is a bug in the plan rewriter.")

	// RP13002 Unsupported plan shape
	RP13002 = errorWithCode("RP13002", CodeUnsupportedShape, "unsupported plan shape: %s", "The host engine handed the rewriter an expression shape it does not recognize. The expression runs on CPU instead.")

	// RP13003 Unreadable literal value
	RP13003 = errorWithCode("RP13003", CodeUnsupportedShape, "literal value is not a readable decimal: %s", "A literal in the operand tree carries a value representation the rewriter cannot interpret as a decimal. The expression runs on CPU instead.")

	// RP13004 Decimal precision out of range
	RP13004 = errorWithCode("RP13004", CodeOutOfRange, "decimal type %s exceeds the device maximum precision of %d", "No device kernel can hold a decimal this wide. The expression runs on CPU instead.")

	// Errors is a list of errors that must match all the variables defined
	// above to enable auto-documentation of error codes.
	Errors = []func(args ...any) *RapidsError{
		RP13001,
		RP13002,
		RP13003,
		RP13004,
	}
)

// RapidsError is an error with a stable ID and a fallback classification.
type RapidsError struct {
	Err         error
	Description string
	ID          string
	Code        Code
}

func (o *RapidsError) Error() string {
	return o.Err.Error()
}

func (o *RapidsError) Cause() error {
	return o.Err
}

func (o *RapidsError) Unwrap() error {
	return o.Err
}

var _ error = (*RapidsError)(nil)

func errorWithCode(id string, code Code, short, long string) func(args ...any) *RapidsError {
	return func(args ...any) *RapidsError {
		s := short
		if len(args) != 0 {
			s = fmt.Sprintf(s, args...)
		}

		return &RapidsError{
			Err:         errors.New(id + ": " + s),
			Description: long,
			ID:          id,
			Code:        code,
		}
	}
}

// CodeOf returns the classification of err, or CodeInternal when err does
// not carry one.
func CodeOf(err error) Code {
	var re *RapidsError
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeInternal
}

// IsError reports whether err carries the given stable ID.
func IsError(err error, id string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), id)
}
