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

// Package sqltypes holds the fixed-point decimal type model shared by the
// plan rewriter and the kernel capability checks. A decimal type is a
// (precision, scale) pair; values are exact arbitrary-precision decimals.
package sqltypes

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Device decimal representations are bucketed by the number of digits the
// backing integer can hold.
const (
	// Decimal32MaxPrecision is the widest precision representable in a
	// 32-bit device decimal column.
	Decimal32MaxPrecision = 9
	// Decimal64MaxPrecision is the widest precision representable in a
	// 64-bit device decimal column.
	Decimal64MaxPrecision = 18
	// Decimal128MaxPrecision is the widest precision any device decimal
	// column can hold. Types beyond this cannot be offloaded at all.
	Decimal128MaxPrecision = 38
)

// DecimalType describes a fixed-point decimal column or literal type.
// Precision is the total number of significant digits, Scale the number of
// digits after the decimal point. Values are immutable; operations that
// change a type build a new one.
//
// Source data may carry a negative scale (trailing zeros folded into the
// exponent); NormalizeLiteral folds those into the precision because device
// decimal columns only support scale >= 0.
type DecimalType struct {
	Precision int
	Scale     int
}

// NewDecimalType creates a DecimalType with the given precision and scale.
func NewDecimalType(precision, scale int) DecimalType {
	return DecimalType{Precision: precision, Scale: scale}
}

// WholeDigits returns the number of digits before the decimal point.
func (t DecimalType) WholeDigits() int {
	return t.Precision - t.Scale
}

// Equal reports whether two decimal types have the same precision and scale.
func (t DecimalType) Equal(o DecimalType) bool {
	return t.Precision == o.Precision && t.Scale == o.Scale
}

// FitsInDevice reports whether the type is representable by any device
// decimal column. Types that fail this check must be flagged by the caller,
// never silently truncated.
func (t DecimalType) FitsInDevice() bool {
	return t.Precision <= Decimal128MaxPrecision && t.Scale >= 0
}

// String implements fmt.Stringer.
func (t DecimalType) String() string {
	return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
}

// NormalizeLiteral strips insignificant trailing fractional zeros from v and
// recomputes the tightest (precision, scale) pair describing the stripped
// value. The returned value is always numerically equal to v and the
// returned scale is always >= 0.
//
// A nil value (SQL NULL) and an exact zero both normalize to the sentinel
// type decimal(0,0); every other value keeps at least one significant digit.
// When stripping leaves the value with a negative scale (more trailing zeros
// than the decimal point position implies, e.g. 100 stored as 1e2), the
// negative scale is folded into the precision: decimal(1,-2) becomes
// decimal(3,0).
func NormalizeLiteral(v *apd.Decimal) (*apd.Decimal, DecimalType) {
	if v == nil {
		return nil, DecimalType{}
	}
	if v.IsZero() {
		return apd.New(0, 0), DecimalType{}
	}

	stripped := new(apd.Decimal)
	stripped.Reduce(v)

	precision := int(stripped.NumDigits())
	scale := int(-stripped.Exponent)
	if scale < 0 {
		// decimal(p,-s) holds the same values as decimal(p-s,0).
		precision -= scale
		scale = 0
	}
	return stripped, NewDecimalType(precision, scale)
}

// ParseDecimal parses a plain or scientific decimal string into an exact
// value. It rejects anything apd cannot represent losslessly.
func ParseDecimal(s string) (*apd.Decimal, error) {
	d, cond, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parsing decimal %q: %w", s, err)
	}
	if cond != 0 {
		return nil, fmt.Errorf("parsing decimal %q: inexact result (%s)", s, cond.String())
	}
	return d, nil
}
