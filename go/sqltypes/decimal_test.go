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

package sqltypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalType(t *testing.T) {
	dt := NewDecimalType(10, 4)
	assert.Equal(t, 6, dt.WholeDigits())
	assert.Equal(t, "decimal(10,4)", dt.String())
	assert.True(t, dt.Equal(NewDecimalType(10, 4)))
	assert.False(t, dt.Equal(NewDecimalType(10, 3)))
}

func TestDecimalTypeFitsInDevice(t *testing.T) {
	assert.True(t, NewDecimalType(38, 10).FitsInDevice())
	assert.False(t, NewDecimalType(39, 10).FitsInDevice())
	assert.False(t, NewDecimalType(5, -2).FitsInDevice())
}

func TestNormalizeLiteral(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantValue string
		wantType  DecimalType
	}{
		{
			name:      "trailing fractional zero",
			value:     "12.340",
			wantValue: "12.34",
			wantType:  NewDecimalType(4, 2),
		},
		{
			name:      "already minimal",
			value:     "12.34",
			wantValue: "12.34",
			wantType:  NewDecimalType(4, 2),
		},
		{
			name:      "negative scale folds into precision",
			value:     "100",
			wantValue: "100",
			wantType:  NewDecimalType(3, 0),
		},
		{
			name:      "large trailing zero integer",
			value:     "12300",
			wantValue: "12300",
			wantType:  NewDecimalType(5, 0),
		},
		{
			name:      "negative value",
			value:     "-1.200",
			wantValue: "-1.2",
			wantType:  NewDecimalType(2, 1),
		},
		{
			name:      "only fractional digits",
			value:     "0.00500",
			wantValue: "0.005",
			wantType:  NewDecimalType(1, 3),
		},
		{
			name:      "zero collapses to sentinel type",
			value:     "0.000",
			wantValue: "0",
			wantType:  NewDecimalType(0, 0),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in, err := ParseDecimal(tc.value)
			require.NoError(t, err)

			got, gotType := NormalizeLiteral(in)
			require.NotNil(t, got)
			assert.Equal(t, tc.wantType, gotType)
			assert.Equal(t, tc.wantValue, got.Text('f'))
			assert.GreaterOrEqual(t, gotType.Scale, 0)

			// The stripped value must stay numerically identical and the
			// original must not be touched.
			assert.Zero(t, got.Cmp(in), "normalized value changed magnitude: %s -> %s", in, got)
			orig, err := ParseDecimal(tc.value)
			require.NoError(t, err)
			assert.Zero(t, in.Cmp(orig), "input literal was mutated")
		})
	}
}

func TestNormalizeLiteralNull(t *testing.T) {
	got, gotType := NormalizeLiteral(nil)
	assert.Nil(t, got)
	assert.Equal(t, NewDecimalType(0, 0), gotType)
}

func TestNormalizeLiteralIdempotent(t *testing.T) {
	in, err := ParseDecimal("98.76000")
	require.NoError(t, err)

	once, onceType := NormalizeLiteral(in)
	twice, twiceType := NormalizeLiteral(once)
	assert.Equal(t, onceType, twiceType)
	assert.Zero(t, once.Cmp(twice))
}

func TestParseDecimalRejectsGarbage(t *testing.T) {
	_, err := ParseDecimal("not-a-number")
	require.Error(t, err)
}
