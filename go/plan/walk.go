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

// Children returns the direct child expressions of e, in operand order.
// Leaf nodes return nil.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *Literal, *ColumnRef:
		return nil
	case *Cast:
		return []Expr{n.Input}
	case *PromotePrecision:
		return []Expr{n.Input}
	case *BinaryArith:
		return []Expr{n.Left, n.Right}
	case *CheckOverflow:
		return []Expr{n.Input}
	default:
		return nil
	}
}

// VisitFunc is invoked by Walk for each node. Returning false stops the
// descent into the node's children.
type VisitFunc func(Expr) bool

// Walk traverses the expression tree rooted at e in pre-order, calling
// visit for each node. If visit returns false for a node, its children are
// skipped.
func Walk(e Expr, visit VisitFunc) {
	if e == nil {
		return
	}
	if !visit(e) {
		return
	}
	for _, child := range Children(e) {
		Walk(child, visit)
	}
}

// Depth returns the height of the expression tree rooted at e. A leaf has
// depth 1.
func Depth(e Expr) int {
	if e == nil {
		return 0
	}
	max := 0
	for _, child := range Children(e) {
		if d := Depth(child); d > max {
			max = d
		}
	}
	return max + 1
}
