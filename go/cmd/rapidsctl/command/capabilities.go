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

	"github.com/zhztheplayer/spark-rapids/go/shims"
)

func (rc *RapidsCtl) capabilitiesCommand() *cobra.Command {
	var allLines bool

	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Show the capability record selected for the configured engine version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if allLines {
				out, err := yaml.Marshal(shims.ReleaseLines())
				if err != nil {
					return fmt.Errorf("failed to marshal release lines: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			}

			caps, err := rc.conf.Capabilities()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(caps)
			if err != nil {
				return fmt.Errorf("failed to marshal capabilities: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&allLines, "all", false, "List every known release line instead of the selected record")
	return cmd
}
