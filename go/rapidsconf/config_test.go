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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGetConfigHandlingValue(t *testing.T) {
	v := viper.New()
	v.SetDefault("default", ExitOnConfigFileNotFound)
	v.SetConfigType("yaml")

	cfg := `
foo: 2
bar: "2" # not valid, defaults to "ignore" (0)
baz: error
`
	err := v.ReadConfig(strings.NewReader(cfg))
	require.NoError(t, err)

	assert.Equal(t, ErrorOnConfigFileNotFound, getHandlingValue(v, "foo"), "failed to get int value")
	assert.Equal(t, IgnoreConfigFileNotFound, getHandlingValue(v, "bar"), "failed to get int-like string value")
	assert.Equal(t, ErrorOnConfigFileNotFound, getHandlingValue(v, "baz"), "failed to get string value")
	assert.Equal(t, IgnoreConfigFileNotFound, getHandlingValue(v, "notset"), "failed to get value on unset key")
	assert.Equal(t, ExitOnConfigFileNotFound, getHandlingValue(v, "default"), "failed to get value on default key")
}

func TestLoadConfigNotFound(t *testing.T) {
	t.Run("ignore", func(t *testing.T) {
		reg := NewRegistryWithFs(afero.NewMemMapFs())
		vc := NewViperConfig(reg)
		vc.configFile.Set("notfound.yaml")
		vc.configFileNotFoundHandling.Set(IgnoreConfigFileNotFound)
		cancel, err := vc.LoadConfig(reg)
		require.NoError(t, err)
		cancel()
	})

	t.Run("warn", func(t *testing.T) {
		reg := NewRegistryWithFs(afero.NewMemMapFs())
		vc := NewViperConfig(reg)
		vc.configFile.Set("notfound.yaml")
		vc.configFileNotFoundHandling.Set(WarnOnConfigFileNotFound)
		cancel, err := vc.LoadConfig(reg)
		require.NoError(t, err)
		cancel()
	})

	t.Run("error", func(t *testing.T) {
		reg := NewRegistryWithFs(afero.NewMemMapFs())
		vc := NewViperConfig(reg)
		vc.configFile.Set("notfound.yaml")
		vc.configFileNotFoundHandling.Set(ErrorOnConfigFileNotFound)
		_, err := vc.LoadConfig(reg)
		require.Error(t, err)
	})

	t.Run("error from config name", func(t *testing.T) {
		reg := NewRegistryWithFs(afero.NewMemMapFs())
		vc := NewViperConfig(reg)
		vc.configFile.Set("")
		vc.configName.Set("notfound")
		vc.configFileNotFoundHandling.Set(ErrorOnConfigFileNotFound)
		_, err := vc.LoadConfig(reg)
		require.Error(t, err)
	})
}

func TestLoadConfigFromMemFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/rapids/rapids.yaml", []byte("sql:\n  engine-version: 3.1.1\n"), 0o644))

	reg := NewRegistryWithFs(fs)
	conf := NewConf(reg)
	vc := NewViperConfig(reg)
	vc.configFile.Set("/etc/rapids/rapids.yaml")

	cancel, err := vc.LoadConfig(reg)
	require.NoError(t, err)
	defer cancel()

	assert.Equal(t, "3.1.1", conf.EngineVersion())
}

func TestDynamicReload(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rapids.yaml")
	require.NoError(t, os.WriteFile(file, []byte("decimal:\n  overflow-guarantee: true\n"), 0o644))

	reg := NewRegistry()
	conf := NewConf(reg)
	vc := NewViperConfig(reg)
	vc.configFile.Set(file)

	reloaded := make(chan struct{}, 1)
	NotifyConfigReload(reg, reloaded)

	cancel, err := vc.LoadConfig(reg)
	require.NoError(t, err)
	defer cancel()

	assert.True(t, conf.Settings().DecimalOverflowGuarantee)

	require.NoError(t, os.WriteFile(file, []byte("decimal:\n  overflow-guarantee: false\n"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("config reload notification never arrived")
	}
	assert.False(t, conf.Settings().DecimalOverflowGuarantee)
}

func TestCombinedSeesDynamicReload(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rapids.yaml")
	require.NoError(t, os.WriteFile(file, []byte("decimal:\n  overflow-guarantee: true\n"), 0o644))

	reg := NewRegistry()
	NewConf(reg)
	vc := NewViperConfig(reg)
	vc.configFile.Set(file)

	reloaded := make(chan struct{}, 1)
	NotifyConfigReload(reg, reloaded)

	cancel, err := vc.LoadConfig(reg)
	require.NoError(t, err)
	defer cancel()

	// Snapshot concurrently with the reload; the dynamic read must be
	// serialized against the watcher.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			_ = reg.Combined()
		}
	}()

	require.NoError(t, os.WriteFile(file, []byte("decimal:\n  overflow-guarantee: false\n"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("config reload notification never arrived")
	}
	<-done

	assert.False(t, reg.Combined().GetBool("decimal.overflow-guarantee"))
}
