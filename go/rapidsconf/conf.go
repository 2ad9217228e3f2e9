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

package rapidsconf

import (
	"github.com/spf13/pflag"

	"github.com/zhztheplayer/spark-rapids/go/gpuoverrides"
	"github.com/zhztheplayer/spark-rapids/go/shims"
)

// Conf holds the GPU plan layer's own settings. The decimal settings are
// dynamic so a watched config file can flip them without restarting;
// everything probed at startup (engine version) is static.
type Conf struct {
	engineVersion            Value[string]
	decimalOverflowGuarantee Value[bool]
	udfCompiledOnGpu         Value[bool]
}

// NewConf registers the plugin's settings in the registry.
func NewConf(reg *Registry) *Conf {
	return &Conf{
		engineVersion: Configure(reg, "sql.engine-version", Options[string]{
			Default:  "3.2.0",
			EnvVars:  []string{"RAPIDS_ENGINE_VERSION"},
			FlagName: "engine-version",
		}),
		decimalOverflowGuarantee: Configure(reg, "decimal.overflow-guarantee", Options[bool]{
			Default:  true,
			EnvVars:  []string{"RAPIDS_DECIMAL_OVERFLOW_GUARANTEE"},
			FlagName: "decimal-overflow-guarantee",
			Dynamic:  true,
		}),
		udfCompiledOnGpu: Configure(reg, "udf.compiled-on-gpu", Options[bool]{
			Default:  false,
			EnvVars:  []string{"RAPIDS_UDF_COMPILED_ON_GPU"},
			FlagName: "udf-compiled-on-gpu",
			Dynamic:  true,
		}),
	}
}

// RegisterFlags installs the plugin's flags. It must be called before
// parsing flags.
func (c *Conf) RegisterFlags(fs *pflag.FlagSet) {
	fs.String("engine-version", c.engineVersion.Default(), "Host engine version to probe capabilities for (e.g. 3.2.1).")
	fs.Bool("decimal-overflow-guarantee", c.decimalOverflowGuarantee.Default(), "Tighten decimal types under overflow-checked arithmetic so they fit device kernels.")
	fs.Bool("udf-compiled-on-gpu", c.udfCompiledOnGpu.Default(), "Assume user-defined functions have device-compiled implementations.")

	BindFlags(fs, c.engineVersion, c.decimalOverflowGuarantee, c.udfCompiledOnGpu)
}

// EngineVersion returns the configured host engine version string.
func (c *Conf) EngineVersion() string {
	return c.engineVersion.Get()
}

// Capabilities probes the shim capability record for the configured engine
// version.
func (c *Conf) Capabilities() (shims.Capabilities, error) {
	return shims.ForVersion(c.engineVersion.Get())
}

// Settings materializes the per-pass settings handed to the tagging layer.
func (c *Conf) Settings() gpuoverrides.Settings {
	return gpuoverrides.Settings{
		DecimalOverflowGuarantee: c.decimalOverflowGuarantee.Get(),
	}
}

// UDFCompiledOnGpu reports whether user-defined functions may be assumed to
// have device implementations.
func (c *Conf) UDFCompiledOnGpu() bool {
	return c.udfCompiledOnGpu.Get()
}
