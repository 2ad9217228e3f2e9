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
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zhztheplayer/spark-rapids/go/sqltypes"
)

// nodeSpec is the YAML description of one expression node, used by tooling
// to feed plan subtrees to the rewriter without a host engine attached.
type nodeSpec struct {
	Kind           string    `yaml:"kind"`
	Type           string    `yaml:"type,omitempty"`
	Name           string    `yaml:"name,omitempty"`
	Value          string    `yaml:"value,omitempty"`
	NullOnOverflow bool      `yaml:"null_on_overflow,omitempty"`
	Input          *nodeSpec `yaml:"input,omitempty"`
	Left           *nodeSpec `yaml:"left,omitempty"`
	Right          *nodeSpec `yaml:"right,omitempty"`
}

// DecodeYAML builds an expression tree from its YAML description.
//
// Each node has a kind (literal, column, cast, promote_precision, multiply,
// divide, check_overflow), a decimal type written "precision,scale", and
// kind-specific fields: literals carry value (omit for NULL), columns a
// name, casts and markers an input, arithmetic a left and right.
func DecodeYAML(data []byte) (Expr, error) {
	var spec nodeSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decoding plan yaml: %w", err)
	}
	return spec.build()
}

func parseTypeSpec(s string) (sqltypes.DecimalType, error) {
	prec, scale, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return sqltypes.DecimalType{}, fmt.Errorf("decimal type %q is not of the form \"precision,scale\"", s)
	}
	p, err := strconv.Atoi(strings.TrimSpace(prec))
	if err != nil {
		return sqltypes.DecimalType{}, fmt.Errorf("decimal type %q: bad precision: %w", s, err)
	}
	sc, err := strconv.Atoi(strings.TrimSpace(scale))
	if err != nil {
		return sqltypes.DecimalType{}, fmt.Errorf("decimal type %q: bad scale: %w", s, err)
	}
	return sqltypes.NewDecimalType(p, sc), nil
}

func (spec *nodeSpec) buildType() (sqltypes.DecimalType, error) {
	if spec.Type == "" {
		return sqltypes.DecimalType{}, fmt.Errorf("node kind %q requires a type", spec.Kind)
	}
	return parseTypeSpec(spec.Type)
}

func (spec *nodeSpec) buildChild(field string, child *nodeSpec) (Expr, error) {
	if child == nil {
		return nil, fmt.Errorf("node kind %q requires %q", spec.Kind, field)
	}
	return child.build()
}

func (spec *nodeSpec) build() (Expr, error) {
	switch spec.Kind {
	case "literal":
		typ, err := spec.buildType()
		if err != nil {
			return nil, err
		}
		if spec.Value == "" {
			return NewLiteral(nil, typ), nil
		}
		value, err := sqltypes.ParseDecimal(spec.Value)
		if err != nil {
			return nil, err
		}
		return NewLiteral(value, typ), nil

	case "column":
		if spec.Name == "" {
			return nil, fmt.Errorf("column node requires a name")
		}
		if spec.Type == "" {
			return NewOpaqueColumnRef(spec.Name), nil
		}
		typ, err := spec.buildType()
		if err != nil {
			return nil, err
		}
		return NewColumnRef(spec.Name, typ), nil

	case "cast":
		typ, err := spec.buildType()
		if err != nil {
			return nil, err
		}
		input, err := spec.buildChild("input", spec.Input)
		if err != nil {
			return nil, err
		}
		return NewCast(input, typ), nil

	case "promote_precision":
		input, err := spec.buildChild("input", spec.Input)
		if err != nil {
			return nil, err
		}
		return NewPromotePrecision(input), nil

	case "multiply", "divide":
		typ, err := spec.buildType()
		if err != nil {
			return nil, err
		}
		left, err := spec.buildChild("left", spec.Left)
		if err != nil {
			return nil, err
		}
		right, err := spec.buildChild("right", spec.Right)
		if err != nil {
			return nil, err
		}
		if spec.Kind == "divide" {
			return NewDivide(left, right, typ), nil
		}
		return NewMultiply(left, right, typ), nil

	case "check_overflow":
		typ, err := spec.buildType()
		if err != nil {
			return nil, err
		}
		input, err := spec.buildChild("input", spec.Input)
		if err != nil {
			return nil, err
		}
		arith, ok := input.(*BinaryArith)
		if !ok {
			return nil, fmt.Errorf("check_overflow input must be multiply or divide, got %q", spec.Input.Kind)
		}
		return NewCheckOverflow(arith, typ, spec.NullOnOverflow), nil

	default:
		return nil, fmt.Errorf("unknown node kind %q", spec.Kind)
	}
}
