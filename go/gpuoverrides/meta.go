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

package gpuoverrides

import (
	"strings"

	"github.com/zhztheplayer/spark-rapids/go/plan"
)

// ExprMeta tracks the GPU-eligibility of one expression during a single
// tagging pass: the (possibly rewritten) expression and every reason found
// so far why it cannot run on the device. A meta is owned by one pass and
// never shared across queries.
type ExprMeta struct {
	expr    plan.Expr
	reasons []string
}

// NewExprMeta creates a meta for the given expression.
func NewExprMeta(e plan.Expr) *ExprMeta {
	return &ExprMeta{expr: e}
}

// Expr returns the current (possibly rewritten) expression.
func (m *ExprMeta) Expr() plan.Expr {
	return m.expr
}

// WillNotWorkOnGpu records a human-readable reason why the expression must
// fall back to CPU execution. Recording multiple reasons is fine; all are
// reported.
func (m *ExprMeta) WillNotWorkOnGpu(reason string) {
	m.reasons = append(m.reasons, reason)
}

// CanRunOnGpu reports whether no incompatibility has been recorded.
func (m *ExprMeta) CanRunOnGpu() bool {
	return len(m.reasons) == 0
}

// Reasons returns all recorded incompatibility reasons in the order they
// were found.
func (m *ExprMeta) Reasons() []string {
	return m.reasons
}

// ReasonText returns the recorded reasons joined for log or report output.
func (m *ExprMeta) ReasonText() string {
	return strings.Join(m.reasons, "; ")
}

func (m *ExprMeta) replaceExpr(e plan.Expr) {
	m.expr = e
}
