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

// Package shims selects per-host-engine-release behavior. Each supported
// release line maps to a plain Capabilities record chosen once at startup by
// a version probe and passed explicitly through call sites. There is no
// runtime dispatch beyond that single lookup.
package shims

import (
	"fmt"

	"github.com/coreos/go-semver/semver"

	"github.com/zhztheplayer/spark-rapids/go/sqltypes"
)

// Capabilities describes the behavior of one host-engine release line that
// the GPU plan layer must honor.
type Capabilities struct {
	// ReleaseLine names the engine release this record was probed for.
	ReleaseLine string

	// MaxDecimalPrecision is the widest decimal precision kernels may
	// receive on this release line.
	MaxDecimalPrecision int

	// SupportsDecimal128 is false on release lines whose kernels only ship
	// 64-bit decimal columns.
	SupportsDecimal128 bool

	// AllowNegativeScale mirrors the engine's negative-scale configuration
	// flag. Every shipped release line fixes it to false; the field exists
	// so a future record can flip it without touching call sites.
	AllowNegativeScale bool

	// NullOnOverflowDefault is true when the engine defaults to producing
	// NULL instead of an error when a checked arithmetic result overflows.
	NullOnOverflowDefault bool
}

// capability records, newest release line last. ForVersion picks the last
// record whose minimum version is <= the probed version.
var capabilityTable = []struct {
	min  semver.Version
	caps Capabilities
}{
	{
		min: semver.Version{Major: 3, Minor: 0},
		caps: Capabilities{
			ReleaseLine:           "3.0",
			MaxDecimalPrecision:   sqltypes.Decimal64MaxPrecision,
			SupportsDecimal128:    false,
			NullOnOverflowDefault: true,
		},
	},
	{
		min: semver.Version{Major: 3, Minor: 1},
		caps: Capabilities{
			ReleaseLine:           "3.1",
			MaxDecimalPrecision:   sqltypes.Decimal128MaxPrecision,
			SupportsDecimal128:    true,
			NullOnOverflowDefault: true,
		},
	},
	{
		min: semver.Version{Major: 3, Minor: 2},
		caps: Capabilities{
			ReleaseLine:           "3.2",
			MaxDecimalPrecision:   sqltypes.Decimal128MaxPrecision,
			SupportsDecimal128:    true,
			NullOnOverflowDefault: false,
		},
	},
}

// ForVersion probes the capability record for an engine version string such
// as "3.2.1" or "3.1.1-vendor.4". Versions older than the oldest supported
// release line are an error; newer versions get the newest record.
func ForVersion(version string) (Capabilities, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return Capabilities{}, fmt.Errorf("unparseable engine version %q: %w", version, err)
	}

	var (
		found bool
		caps  Capabilities
	)
	for _, rec := range capabilityTable {
		if rec.min.Compare(*v) <= 0 {
			found = true
			caps = rec.caps
		}
	}
	if !found {
		return Capabilities{}, fmt.Errorf("engine version %q is older than the oldest supported release line %s", version, capabilityTable[0].caps.ReleaseLine)
	}
	return caps, nil
}

// ReleaseLines returns the names of all supported release lines, oldest
// first.
func ReleaseLines() []string {
	lines := make([]string, 0, len(capabilityTable))
	for _, rec := range capabilityTable {
		lines = append(lines, rec.caps.ReleaseLine)
	}
	return lines
}
