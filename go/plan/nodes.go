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

// Package plan defines the expression-tree shapes the GPU plan rewriter
// operates on: decimal literals, column references, casts, precision
// promotions, checked arithmetic. The host engine owns the full plan
// representation; this package models only the subtree shapes handed to the
// rewriter during GPU plan tagging.
//
// Nodes are immutable once built. Rewrites always construct replacement
// nodes; the host engine may share subtrees across the plan, so mutating one
// in place is never safe.
package plan

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/zhztheplayer/spark-rapids/go/sqltypes"
)

// NodeTag identifies the concrete type of an expression node.
type NodeTag int

const (
	T_Invalid NodeTag = iota
	T_Literal
	T_ColumnRef
	T_Cast
	T_PromotePrecision
	T_Multiply
	T_Divide
	T_CheckOverflow
)

// String returns the string representation of a NodeTag.
func (nt NodeTag) String() string {
	switch nt {
	case T_Invalid:
		return "T_Invalid"
	case T_Literal:
		return "T_Literal"
	case T_ColumnRef:
		return "T_ColumnRef"
	case T_Cast:
		return "T_Cast"
	case T_PromotePrecision:
		return "T_PromotePrecision"
	case T_Multiply:
		return "T_Multiply"
	case T_Divide:
		return "T_Divide"
	case T_CheckOverflow:
		return "T_CheckOverflow"
	default:
		return fmt.Sprintf("NodeTag(%d)", int(nt))
	}
}

// Expr is the base interface for all expression nodes handled by the
// rewriter.
type Expr interface {
	// NodeTag returns the type tag for this node.
	NodeTag() NodeTag

	// DecimalResult returns the node's decimal result type. The second
	// return is false for operands that are not decimal-typed; the
	// rewriter treats those as opaque.
	DecimalResult() (sqltypes.DecimalType, bool)

	// String returns a string representation of the node (for debugging).
	String() string
}

// BaseExpr provides the NodeTag implementation shared by all nodes.
// Concrete node types embed it.
type BaseExpr struct {
	Tag NodeTag
}

// NodeTag returns the node's type tag.
func (e *BaseExpr) NodeTag() NodeTag {
	return e.Tag
}

// Literal is a decimal constant. A nil Value is a SQL NULL of the given
// type.
type Literal struct {
	BaseExpr
	Value *apd.Decimal
	Type  sqltypes.DecimalType
}

// NewLiteral creates a decimal literal node.
func NewLiteral(value *apd.Decimal, typ sqltypes.DecimalType) *Literal {
	return &Literal{
		BaseExpr: BaseExpr{Tag: T_Literal},
		Value:    value,
		Type:     typ,
	}
}

// DecimalResult returns the literal's declared type.
func (l *Literal) DecimalResult() (sqltypes.DecimalType, bool) {
	return l.Type, true
}

// String returns a string representation of the literal.
func (l *Literal) String() string {
	if l.Value == nil {
		return fmt.Sprintf("Literal(NULL, %s)", l.Type)
	}
	return fmt.Sprintf("Literal(%s, %s)", l.Value.Text('f'), l.Type)
}

// ColumnRef is a reference to an input column. The rewriter never changes
// column references; they only contribute their type to the cast analysis.
type ColumnRef struct {
	BaseExpr
	Name string
	Type sqltypes.DecimalType

	// DecimalTyped is false when the referenced column carries some type
	// other than decimal. Such operands are opaque to the rewriter.
	DecimalTyped bool
}

// NewColumnRef creates a decimal-typed column reference.
func NewColumnRef(name string, typ sqltypes.DecimalType) *ColumnRef {
	return &ColumnRef{
		BaseExpr:     BaseExpr{Tag: T_ColumnRef},
		Name:         name,
		Type:         typ,
		DecimalTyped: true,
	}
}

// NewOpaqueColumnRef creates a column reference whose type is not decimal.
func NewOpaqueColumnRef(name string) *ColumnRef {
	return &ColumnRef{
		BaseExpr: BaseExpr{Tag: T_ColumnRef},
		Name:     name,
	}
}

// DecimalResult returns the column's decimal type, if it has one.
func (c *ColumnRef) DecimalResult() (sqltypes.DecimalType, bool) {
	return c.Type, c.DecimalTyped
}

// String returns a string representation of the column reference.
func (c *ColumnRef) String() string {
	if !c.DecimalTyped {
		return fmt.Sprintf("ColumnRef(%s)", c.Name)
	}
	return fmt.Sprintf("ColumnRef(%s, %s)", c.Name, c.Type)
}

// Cast converts its input to the target decimal type, rounding if the
// target scale is narrower.
type Cast struct {
	BaseExpr
	Input Expr
	To    sqltypes.DecimalType
}

// NewCast creates a cast-to-decimal node.
func NewCast(input Expr, to sqltypes.DecimalType) *Cast {
	return &Cast{
		BaseExpr: BaseExpr{Tag: T_Cast},
		Input:    input,
		To:       to,
	}
}

// DecimalResult returns the cast's target type.
func (c *Cast) DecimalResult() (sqltypes.DecimalType, bool) {
	return c.To, true
}

// String returns a string representation of the cast.
func (c *Cast) String() string {
	return fmt.Sprintf("Cast(%s as %s)", c.Input, c.To)
}

// PromotePrecision marks a subtree whose decimal type was widened by the
// host engine's analyzer for intermediate arithmetic safety. It is a pure
// marker: the result type is the input's.
type PromotePrecision struct {
	BaseExpr
	Input Expr
}

// NewPromotePrecision wraps an operand in a precision-promotion marker.
func NewPromotePrecision(input Expr) *PromotePrecision {
	return &PromotePrecision{
		BaseExpr: BaseExpr{Tag: T_PromotePrecision},
		Input:    input,
	}
}

// DecimalResult returns the promoted operand's type.
func (p *PromotePrecision) DecimalResult() (sqltypes.DecimalType, bool) {
	return p.Input.DecimalResult()
}

// String returns a string representation of the promotion marker.
func (p *PromotePrecision) String() string {
	return fmt.Sprintf("PromotePrecision(%s)", p.Input)
}

// BinaryArith is a two-operand arithmetic node. The tag distinguishes
// multiplication from division.
type BinaryArith struct {
	BaseExpr
	Left  Expr
	Right Expr
	Type  sqltypes.DecimalType
}

// NewMultiply creates a decimal multiplication node with the given result
// type.
func NewMultiply(left, right Expr, typ sqltypes.DecimalType) *BinaryArith {
	return &BinaryArith{
		BaseExpr: BaseExpr{Tag: T_Multiply},
		Left:     left,
		Right:    right,
		Type:     typ,
	}
}

// NewDivide creates a decimal division node with the given result type.
func NewDivide(left, right Expr, typ sqltypes.DecimalType) *BinaryArith {
	return &BinaryArith{
		BaseExpr: BaseExpr{Tag: T_Divide},
		Left:     left,
		Right:    right,
		Type:     typ,
	}
}

// WithOperands returns a copy of the node with the given operands. The
// receiver is returned unchanged when both operands are identical.
func (b *BinaryArith) WithOperands(left, right Expr) *BinaryArith {
	if left == b.Left && right == b.Right {
		return b
	}
	return &BinaryArith{
		BaseExpr: BaseExpr{Tag: b.Tag},
		Left:     left,
		Right:    right,
		Type:     b.Type,
	}
}

// DecimalResult returns the arithmetic result type.
func (b *BinaryArith) DecimalResult() (sqltypes.DecimalType, bool) {
	return b.Type, true
}

// String returns a string representation of the arithmetic node.
func (b *BinaryArith) String() string {
	op := "*"
	if b.Tag == T_Divide {
		op = "/"
	}
	return fmt.Sprintf("(%s %s %s):%s", b.Left, op, b.Right, b.Type)
}

// CheckOverflow asserts that the wrapped arithmetic result fits in the
// declared type. NullOnOverflow selects NULL-on-overflow semantics instead
// of a runtime error.
type CheckOverflow struct {
	BaseExpr
	Input          *BinaryArith
	Type           sqltypes.DecimalType
	NullOnOverflow bool
}

// NewCheckOverflow wraps an arithmetic node in an overflow check.
func NewCheckOverflow(input *BinaryArith, typ sqltypes.DecimalType, nullOnOverflow bool) *CheckOverflow {
	return &CheckOverflow{
		BaseExpr:       BaseExpr{Tag: T_CheckOverflow},
		Input:          input,
		Type:           typ,
		NullOnOverflow: nullOnOverflow,
	}
}

// WithInput returns a copy of the node wrapping the given arithmetic node.
// The receiver is returned unchanged when the input is identical.
func (c *CheckOverflow) WithInput(input *BinaryArith) *CheckOverflow {
	if input == c.Input {
		return c
	}
	return &CheckOverflow{
		BaseExpr:       BaseExpr{Tag: T_CheckOverflow},
		Input:          input,
		Type:           c.Type,
		NullOnOverflow: c.NullOnOverflow,
	}
}

// DecimalResult returns the declared overflow-check type.
func (c *CheckOverflow) DecimalResult() (sqltypes.DecimalType, bool) {
	return c.Type, true
}

// String returns a string representation of the overflow check.
func (c *CheckOverflow) String() string {
	return fmt.Sprintf("CheckOverflow(%s, %s)", c.Input, c.Type)
}
