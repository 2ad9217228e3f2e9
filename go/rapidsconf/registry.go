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

// Package rapidsconf is the configuration surface of the GPU plan layer: a
// viper-backed registry of typed values fed by flags, environment variables,
// and an optional config file, plus the plugin's own settings and logging
// setup. Each binary creates its own isolated registry; there is no global
// configuration state.
package rapidsconf

import (
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Registry holds the static and dynamic viper instances for one binary.
//
// Static values never change after LoadConfig is called. Dynamic values are
// updated when the loaded config file changes on disk.
type Registry struct {
	// static is the registry for static config variables. They keep their
	// loaded values for the lifetime of the process.
	static *viper.Viper

	// dynamic wraps a second viper behind a lock and a file watcher;
	// variables registered to it pick up config file changes.
	dynamic *dynamicViper

	// fs is the filesystem config files are read from. Tests substitute an
	// in-memory filesystem.
	fs afero.Fs

	// watchable is false when fs is not the operating system filesystem;
	// fsnotify can only watch real files, so dynamic reloading is skipped
	// for substitute filesystems.
	watchable bool
}

// NewRegistry creates an isolated configuration registry reading from the
// operating system filesystem.
func NewRegistry() *Registry {
	return NewRegistryWithFs(afero.NewOsFs())
}

// NewRegistryWithFs creates an isolated registry reading config files from
// the given filesystem.
func NewRegistryWithFs(fs afero.Fs) *Registry {
	static := viper.New()
	static.SetFs(fs)

	live := viper.New()
	live.SetFs(fs)

	_, isOsFs := fs.(*afero.OsFs)
	return &Registry{
		static:    static,
		dynamic:   newDynamicViper(live),
		fs:        fs,
		watchable: isOsFs,
	}
}

// Combined returns a viper instance merging the static and dynamic
// registries, for debug handlers and config dumps. The dynamic snapshot is
// taken under the watcher's lock.
func (reg *Registry) Combined() *viper.Viper {
	reg.dynamic.mu.RLock()
	dynamicSettings := reg.dynamic.live.AllSettings()
	reg.dynamic.mu.RUnlock()

	v := viper.New()
	_ = v.MergeConfigMap(reg.static.AllSettings())
	_ = v.MergeConfigMap(dynamicSettings)

	v.SetConfigFile(reg.static.ConfigFileUsed())
	return v
}
