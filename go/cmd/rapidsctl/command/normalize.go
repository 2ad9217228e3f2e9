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

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zhztheplayer/spark-rapids/go/sqltypes"
)

func (rc *RapidsCtl) normalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <literal>",
		Short: "Normalize a decimal literal to its tightest precision and scale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := sqltypes.ParseDecimal(args[0])
			if err != nil {
				return err
			}
			norm, typ := sqltypes.NormalizeLiteral(v)

			report := struct {
				Value string `yaml:"value"`
				Type  string `yaml:"type"`
			}{
				Value: norm.Text('f'),
				Type:  typ.String(),
			}
			out, err := yaml.Marshal(report)
			if err != nil {
				return fmt.Errorf("failed to marshal result: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
