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

// Package command implements the rapidsctl CLI: operator tooling for
// inspecting engine capability records and for running the decimal
// precision rewriter against plan descriptions offline.
package command

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zhztheplayer/spark-rapids/go/rapidsconf"
)

// RapidsCtl holds the configuration for rapidsctl commands.
type RapidsCtl struct {
	reg    *rapidsconf.Registry
	vc     *rapidsconf.ViperConfig
	conf   *rapidsconf.Conf
	logger *rapidsconf.Logger

	cancelWatch context.CancelFunc
}

// GetRootCommand creates and returns the root command for rapidsctl with
// all subcommands.
func GetRootCommand() *cobra.Command {
	reg := rapidsconf.NewRegistry()
	rc := &RapidsCtl{
		reg:    reg,
		vc:     rapidsconf.NewViperConfig(reg),
		conf:   rapidsconf.NewConf(reg),
		logger: rapidsconf.NewLogger(reg),
	}

	root := &cobra.Command{
		Use:   "rapidsctl",
		Short: "Inspect and exercise the GPU decimal plan rewriter",
		Long: `rapidsctl is the operator companion for the GPU plan layer.

It probes which capabilities a host engine release gets, normalizes decimal
literals, and runs the decimal precision rewriter against a plan subtree
described in YAML, the same rewrite that runs during GPU plan tagging.

Configuration is searched for in a file named 'rapids' with a supported
extension (.yaml, .yml, .json, .toml) along --config-path, or taken from
--config-file directly.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Silence usage for application errors, but allow it for flag
			// errors. This runs after flag parsing, so flag errors still
			// show usage.
			cmd.SilenceUsage = true

			cancel, err := rc.vc.LoadConfig(rc.reg)
			if err != nil {
				return err
			}
			rc.cancelWatch = cancel

			rc.logger.Setup()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rc.cancelWatch != nil {
				rc.cancelWatch()
			}
		},
	}

	pf := root.PersistentFlags()
	rc.vc.RegisterFlags(pf)
	rc.conf.RegisterFlags(pf)
	rc.logger.RegisterFlags(pf)

	root.AddCommand(rc.capabilitiesCommand())
	root.AddCommand(rc.normalizeCommand())
	root.AddCommand(rc.tightenCommand())

	return root
}
