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

// Package gpuoverrides rewrites checked decimal arithmetic so it fits the
// precision bounds of device kernels. The host engine's analyzer widens
// intermediate decimal types for safety; kernels are bounded at a fixed
// maximum precision, so an unnecessarily wide intermediate type either fails
// outright or runs slower. The rewriter inspects the operand tree of each
// overflow-checked arithmetic node, strips engine-inserted promotion
// markers, and recomputes the tightest decimal type that is still provably
// safe.
//
// Every function here is pure: it either returns its argument unchanged or
// a freshly built replacement. Nothing is memoized across invocations, so
// concurrent plan compilations never share state.
package gpuoverrides

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/zhztheplayer/spark-rapids/go/plan"
	"github.com/zhztheplayer/spark-rapids/go/rperrors"
	"github.com/zhztheplayer/spark-rapids/go/sqltypes"
)

// TightenCheckOverflow recomputes the tightest safe decimal types for the
// operands of a single overflow-checked arithmetic node. Operand literals
// are normalized, provably-redundant precision-promoted casts are removed,
// and remaining casts get the narrowest target type the rounding/overflow
// analysis allows. The input node is returned unchanged (pointer-identical)
// when no operand can be tightened.
//
// The transformation is deterministic and idempotent: tightening an
// already-tight node yields the identical types.
func TightenCheckOverflow(co *plan.CheckOverflow) (*plan.CheckOverflow, error) {
	if co == nil || co.Input == nil {
		return nil, rperrors.RP13001("overflow check without an arithmetic input")
	}
	arith := co.Input
	switch arith.NodeTag() {
	case plan.T_Multiply, plan.T_Divide:
	default:
		return nil, rperrors.RP13002(arith.NodeTag().String())
	}

	left, err := normalizeOperand(arith.Left)
	if err != nil {
		return nil, err
	}
	right, err := normalizeOperand(arith.Right)
	if err != nil {
		return nil, err
	}
	return co.WithInput(arith.WithOperands(left, right)), nil
}

// Tighten applies TightenCheckOverflow to every overflow-checked arithmetic
// node in the subtree rooted at e, innermost first. Subtrees without such
// nodes come back untouched.
func Tighten(e plan.Expr) (plan.Expr, error) {
	switch n := e.(type) {
	case *plan.CheckOverflow:
		if n.Input == nil {
			return nil, rperrors.RP13001("overflow check without an arithmetic input")
		}
		left, err := Tighten(n.Input.Left)
		if err != nil {
			return nil, err
		}
		right, err := Tighten(n.Input.Right)
		if err != nil {
			return nil, err
		}
		return TightenCheckOverflow(n.WithInput(n.Input.WithOperands(left, right)))
	case *plan.BinaryArith:
		left, err := Tighten(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := Tighten(n.Right)
		if err != nil {
			return nil, err
		}
		return n.WithOperands(left, right), nil
	case *plan.Cast:
		input, err := Tighten(n.Input)
		if err != nil {
			return nil, err
		}
		if input == n.Input {
			return n, nil
		}
		return plan.NewCast(input, n.To), nil
	case *plan.PromotePrecision:
		input, err := Tighten(n.Input)
		if err != nil {
			return nil, err
		}
		if input == n.Input {
			return n, nil
		}
		return plan.NewPromotePrecision(input), nil
	default:
		return e, nil
	}
}

// normalizeOperand tightens one operand of a checked arithmetic node.
// Literals get their declared type recomputed from the actual value;
// precision-promoted casts over decimal sources get the minimal-cast
// analysis. Any other shape is returned unchanged since no tightening is
// known to be safe for it.
func normalizeOperand(e plan.Expr) (plan.Expr, error) {
	switch n := e.(type) {
	case *plan.Literal:
		return normalizeLiteral(n)
	case *plan.PromotePrecision:
		return tightenPromotedCast(n)
	default:
		return e, nil
	}
}

func normalizeLiteral(lit *plan.Literal) (plan.Expr, error) {
	if lit.Value != nil && lit.Value.Form != apd.Finite {
		// The host engine never produces non-finite decimals. The tree is
		// malformed, so the whole invocation fails.
		return nil, rperrors.RP13003(lit.Value.String())
	}

	value, typ := sqltypes.NormalizeLiteral(lit.Value)
	if typ.Equal(lit.Type) {
		return lit, nil
	}
	return plan.NewLiteral(value, typ), nil
}

// tightenPromotedCast handles the PromotePrecision(Cast(child)) shape where
// child is itself decimal-typed. With
//
//	from = child's type, to = the cast target
//
// the minimal safe target keeps min(from.Scale, to.Scale) fractional digits
// and min(fromWhole, toWhole) whole digits. When the cast narrows the scale
// the source side gets one extra whole digit, because rounding to a narrower
// scale can carry into a new whole digit (9.99 cast to scale 1 rounds to
// 10.0).
func tightenPromotedCast(promote *plan.PromotePrecision) (plan.Expr, error) {
	cast, ok := promote.Input.(*plan.Cast)
	if !ok {
		return promote, nil
	}
	from, ok := cast.Input.DecimalResult()
	if !ok {
		return promote, nil
	}
	to := cast.To

	minScale := min(from.Scale, to.Scale)
	fromWhole := from.WholeDigits()
	toWhole := to.WholeDigits()

	var minWhole int
	if to.Scale < from.Scale {
		minWhole = min(fromWhole+1, toWhole)
	} else {
		minWhole = min(fromWhole, toWhole)
	}
	candidate := sqltypes.NewDecimalType(minWhole+minScale, minScale)

	switch {
	case candidate.Equal(from):
		// The cast is provably a no-op; drop it and the promotion marker.
		return cast.Input, nil
	case candidate.Equal(to):
		return promote, nil
	default:
		return plan.NewPromotePrecision(plan.NewCast(cast.Input, candidate)), nil
	}
}
