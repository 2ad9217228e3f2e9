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

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhztheplayer/spark-rapids/go/sqltypes"
)

const samplePlanYAML = `
kind: check_overflow
type: "23,6"
null_on_overflow: true
input:
  kind: multiply
  type: "23,6"
  left:
    kind: promote_precision
    input:
      kind: cast
      type: "16,4"
      input:
        kind: column
        name: price
        type: "12,4"
  right:
    kind: literal
    type: "5,3"
    value: "12.340"
`

func TestDecodeYAML(t *testing.T) {
	e, err := DecodeYAML([]byte(samplePlanYAML))
	require.NoError(t, err)

	co, ok := e.(*CheckOverflow)
	require.True(t, ok)
	assert.Equal(t, sqltypes.NewDecimalType(23, 6), co.Type)
	assert.True(t, co.NullOnOverflow)
	assert.Equal(t, T_Multiply, co.Input.NodeTag())

	promote, ok := co.Input.Left.(*PromotePrecision)
	require.True(t, ok)
	cast, ok := promote.Input.(*Cast)
	require.True(t, ok)
	assert.Equal(t, sqltypes.NewDecimalType(16, 4), cast.To)

	col, ok := cast.Input.(*ColumnRef)
	require.True(t, ok)
	assert.Equal(t, "price", col.Name)
	assert.Equal(t, sqltypes.NewDecimalType(12, 4), col.Type)

	lit, ok := co.Input.Right.(*Literal)
	require.True(t, ok)
	require.NotNil(t, lit.Value)
	assert.Equal(t, sqltypes.NewDecimalType(5, 3), lit.Type)
}

func TestDecodeYAMLNullLiteral(t *testing.T) {
	e, err := DecodeYAML([]byte("kind: literal\ntype: \"10,2\"\n"))
	require.NoError(t, err)
	lit := e.(*Literal)
	assert.Nil(t, lit.Value)
	assert.Equal(t, sqltypes.NewDecimalType(10, 2), lit.Type)
}

func TestDecodeYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown kind", "kind: window_frame\n"},
		{"bad type spec", "kind: literal\ntype: \"wide\"\n"},
		{"missing operand", "kind: multiply\ntype: \"10,2\"\nleft:\n  kind: column\n  name: a\n  type: \"4,2\"\n"},
		{"check overflow over non arithmetic", "kind: check_overflow\ntype: \"10,2\"\ninput:\n  kind: column\n  name: a\n  type: \"4,2\"\n"},
		{"bad literal value", "kind: literal\ntype: \"10,2\"\nvalue: twelve\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeYAML([]byte(tc.in))
			require.Error(t, err)
		})
	}
}
