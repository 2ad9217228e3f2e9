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
	"fmt"
	"log/slog"

	"github.com/zhztheplayer/spark-rapids/go/kernels"
	"github.com/zhztheplayer/spark-rapids/go/plan"
	"github.com/zhztheplayer/spark-rapids/go/rperrors"
	"github.com/zhztheplayer/spark-rapids/go/shims"
	"github.com/zhztheplayer/spark-rapids/go/sqltypes"
)

// Settings is the per-pass configuration the tagging layer honors. It is a
// plain value so the rewriter stays free of configuration-registry state.
type Settings struct {
	// DecimalOverflowGuarantee enables the precision tightener for
	// overflow-checked arithmetic. When false, checked arithmetic keeps the
	// analyzer's widened types and is simply checked against kernel bounds.
	DecimalOverflowGuarantee bool
}

// TagContext carries the per-pass collaborators through the rule table.
type TagContext struct {
	Caps     shims.Capabilities
	Settings Settings
	Logger   *slog.Logger
}

// Rule decides GPU eligibility for one expression node kind.
type Rule struct {
	// Desc describes the node kind in fallback reports.
	Desc string
	// Tag inspects one node and records any incompatibility on the meta.
	Tag func(ctx TagContext, m *ExprMeta, e plan.Expr)
}

// expressionRules maps every node kind the GPU layer understands to its
// eligibility rule. Node kinds absent from the table fall back to CPU with
// a generic reason. Populated in init because tagDecimalResult looks its
// own rule back up for the description.
var expressionRules map[plan.NodeTag]*Rule

func init() {
	expressionRules = map[plan.NodeTag]*Rule{
		plan.T_Literal: {
			Desc: "decimal literal",
			Tag:  tagDecimalResult,
		},
		plan.T_ColumnRef: {
			Desc: "column reference",
			Tag: func(ctx TagContext, m *ExprMeta, e plan.Expr) {
				col := e.(*plan.ColumnRef)
				if !col.DecimalTyped {
					// Opaque columns are fine as long as nothing above them
					// needs their decimal type; there is nothing to check.
					return
				}
				checkDeviceSupport(ctx, m, "column reference", col.Type)
			},
		},
		plan.T_Cast: {
			Desc: "cast to decimal",
			Tag: func(ctx TagContext, m *ExprMeta, e plan.Expr) {
				cast := e.(*plan.Cast)
				checkDeviceSupport(ctx, m, "cast target", cast.To)
			},
		},
		plan.T_PromotePrecision: {
			Desc: "precision promotion marker",
			// Pure marker; its operand is checked on its own.
			Tag: func(TagContext, *ExprMeta, plan.Expr) {},
		},
		plan.T_Multiply: {
			Desc: "decimal multiplication",
			Tag:  tagDecimalResult,
		},
		plan.T_Divide: {
			Desc: "decimal division",
			Tag:  tagDecimalResult,
		},
		plan.T_CheckOverflow: {
			Desc: "overflow-checked arithmetic",
			Tag:  tagDecimalResult,
		},
	}
}

func tagDecimalResult(ctx TagContext, m *ExprMeta, e plan.Expr) {
	typ, ok := e.DecimalResult()
	if !ok {
		m.WillNotWorkOnGpu(fmt.Sprintf("%s is not decimal-typed", e.NodeTag()))
		return
	}
	rule := expressionRules[e.NodeTag()]
	checkDeviceSupport(ctx, m, rule.Desc, typ)
}

func checkDeviceSupport(ctx TagContext, m *ExprMeta, what string, typ sqltypes.DecimalType) {
	if !kernels.SupportsDecimal(typ, ctx.Caps) {
		err := rperrors.RP13004(typ, ctx.Caps.MaxDecimalPrecision)
		m.WillNotWorkOnGpu(fmt.Sprintf("no GPU kernel for %s (release line %s): %s",
			what, ctx.Caps.ReleaseLine, err.Error()))
	}
}

// TagExpr runs one GPU plan-tagging pass over the expression tree rooted at
// root: it tightens overflow-checked decimal arithmetic (when enabled) and
// checks every node against the device kernel capabilities. The returned
// meta holds the rewritten tree and, if the expression cannot be offloaded,
// the reasons why.
//
// A rewrite failure is a plan-shape bug, not a user error: the expression is
// marked for CPU fallback and the original tree is kept.
func TagExpr(root plan.Expr, ctx TagContext) *ExprMeta {
	meta := NewExprMeta(root)
	if ctx.Logger == nil {
		ctx.Logger = slog.Default()
	}

	if ctx.Settings.DecimalOverflowGuarantee {
		tightened, err := Tighten(root)
		if err != nil {
			ctx.Logger.Warn("decimal precision rewrite failed, expression falls back to CPU",
				"expr", root.String(),
				"err", err)
			meta.WillNotWorkOnGpu(err.Error())
		} else {
			meta.replaceExpr(tightened)
		}
	}

	plan.Walk(meta.Expr(), func(e plan.Expr) bool {
		rule, ok := expressionRules[e.NodeTag()]
		if !ok {
			m := fmt.Sprintf("no GPU implementation for %s", e.NodeTag())
			meta.WillNotWorkOnGpu(m)
			return false
		}
		rule.Tag(ctx, meta, e)
		return true
	})

	if meta.CanRunOnGpu() {
		ctx.Logger.Debug("expression tagged for GPU execution", "expr", meta.Expr().String())
	}
	return meta
}
