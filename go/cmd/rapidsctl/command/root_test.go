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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// runRapidsctl executes a fresh root command and captures its stdout.
func runRapidsctl(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := GetRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config-file-not-found-handling", "ignore"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCapabilitiesCommand(t *testing.T) {
	out, err := runRapidsctl(t, "capabilities")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "3.2", got["releaseline"])
	assert.Equal(t, 38, got["maxdecimalprecision"])

	out, err = runRapidsctl(t, "capabilities", "--engine-version", "3.0.1")
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "3.0", got["releaseline"])
	assert.Equal(t, 18, got["maxdecimalprecision"])
}

func TestCapabilitiesCommandAllLines(t *testing.T) {
	out, err := runRapidsctl(t, "capabilities", "--all")
	require.NoError(t, err)

	var lines []string
	require.NoError(t, yaml.Unmarshal([]byte(out), &lines))
	assert.Equal(t, []string{"3.0", "3.1", "3.2"}, lines)
}

func TestCapabilitiesCommandBadVersion(t *testing.T) {
	_, err := runRapidsctl(t, "capabilities", "--engine-version", "not-a-version")
	assert.Error(t, err)
}

func TestNormalizeCommand(t *testing.T) {
	out, err := runRapidsctl(t, "normalize", "12.340")
	require.NoError(t, err)

	var got struct {
		Value string `yaml:"value"`
		Type  string `yaml:"type"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "12.34", got.Value)
	assert.Equal(t, "decimal(4,2)", got.Type)
}

func TestNormalizeCommandRejectsGarbage(t *testing.T) {
	_, err := runRapidsctl(t, "normalize", "not-a-decimal")
	assert.Error(t, err)
}

func TestTightenCommand(t *testing.T) {
	planYAML := `kind: check_overflow
type: 21,6
null_on_overflow: true
input:
  kind: multiply
  type: 21,6
  left:
    kind: promote_precision
    input:
      kind: cast
      type: 12,2
      input:
        kind: column
        name: price
        type: 8,2
  right:
    kind: literal
    type: 5,3
    value: "12.340"
`
	planFile := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(planFile, []byte(planYAML), 0o644))

	out, err := runRapidsctl(t, "tighten", "--plan", planFile)
	require.NoError(t, err)

	var report tightenReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.True(t, report.CanRunOnGpu)
	assert.Empty(t, report.Reasons)
	// The cast widens without rescaling, so the rewrite drops it and the
	// promotion, and the literal collapses to its reduced form.
	assert.NotContains(t, report.Rewritten, "PromotePrecision")
	assert.Contains(t, report.Rewritten, "Literal(12.34, decimal(4,2))")
}

func TestTightenCommandTooWideForOldEngine(t *testing.T) {
	planYAML := `kind: check_overflow
type: 30,6
null_on_overflow: true
input:
  kind: multiply
  type: 30,6
  left:
    kind: column
    name: a
    type: 20,4
  right:
    kind: column
    name: b
    type: 10,2
`
	planFile := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(planFile, []byte(planYAML), 0o644))

	out, err := runRapidsctl(t, "tighten", "--plan", planFile, "--engine-version", "3.0.1")
	require.NoError(t, err)

	var report tightenReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.False(t, report.CanRunOnGpu)
	assert.NotEmpty(t, report.Reasons)
}

func TestTightenCommandMissingPlanFile(t *testing.T) {
	_, err := runRapidsctl(t, "tighten", "--plan", "/nonexistent/plan.yaml")
	assert.Error(t, err)
}
