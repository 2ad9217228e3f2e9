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

package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zhztheplayer/spark-rapids/go/gpuoverrides"
	"github.com/zhztheplayer/spark-rapids/go/plan"
)

type tightenReport struct {
	Expression  string   `yaml:"expression"`
	Rewritten   string   `yaml:"rewritten"`
	CanRunOnGpu bool     `yaml:"can_run_on_gpu"`
	Reasons     []string `yaml:"reasons,omitempty"`
}

func (rc *RapidsCtl) tightenCommand() *cobra.Command {
	var planFile string

	cmd := &cobra.Command{
		Use:   "tighten",
		Short: "Run the decimal precision rewriter against a plan subtree",
		Long: `Decodes an expression subtree from a YAML plan description, tags it for
GPU execution with the configured engine capabilities, and reports the
rewritten subtree together with any reasons the subtree cannot run on
the GPU.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(planFile)
			if err != nil {
				return fmt.Errorf("failed to read plan file: %w", err)
			}
			root, err := plan.DecodeYAML(data)
			if err != nil {
				return err
			}

			caps, err := rc.conf.Capabilities()
			if err != nil {
				return err
			}
			meta := gpuoverrides.TagExpr(root, gpuoverrides.TagContext{
				Caps:     caps,
				Settings: rc.conf.Settings(),
				Logger:   rc.logger.Get(),
			})

			report := tightenReport{
				Expression:  root.String(),
				Rewritten:   meta.Expr().String(),
				CanRunOnGpu: meta.CanRunOnGpu(),
				Reasons:     meta.Reasons(),
			}
			out, err := yaml.Marshal(report)
			if err != nil {
				return fmt.Errorf("failed to marshal result: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "Path to the YAML plan description (required)")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}
