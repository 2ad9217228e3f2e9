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
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Value is a viper-backed configuration value of type T. Static values are
// fixed once LoadConfig returns; dynamic values follow the watched config
// file for the lifetime of the process.
type Value[T any] interface {
	Binder

	// Key returns the variable's key in the config registry.
	Key() string
	// Get returns the current value.
	Get() T
	// Default returns the configured default.
	Default() T
	// Set overrides the current value in the registry.
	Set(v T)
	// Flag returns the name of the bound command-line flag, or "".
	Flag() string
}

// Binder is the type-parameter-free part of Value used by BindFlags.
type Binder interface {
	bindFlag(fs *pflag.FlagSet)
}

// Options configures a Value during registration.
type Options[T any] struct {
	// Default is the value returned when no flag, env var, or config file
	// entry sets the key.
	Default T
	// FlagName binds the key to a command-line flag of that name.
	FlagName string
	// EnvVars binds the key to environment variables, first match wins.
	EnvVars []string
	// Dynamic registers the key in the dynamic registry so it follows
	// config file changes.
	Dynamic bool
	// GetFunc overrides the default mapstructure-based decoding of the
	// underlying viper value.
	GetFunc func(v *viper.Viper, key string) T
}

type value[T any] struct {
	key      string
	flagName string
	def      T
	v        *viper.Viper
	dynamic  *dynamicViper
	getFunc  func(v *viper.Viper, key string) T
}

// Configure registers a configuration value in the registry and returns a
// handle for reading it. It must be called before LoadConfig.
func Configure[T any](reg *Registry, key string, opts Options[T]) Value[T] {
	val := &value[T]{
		key:      key,
		flagName: opts.FlagName,
		def:      opts.Default,
		v:        reg.static,
		getFunc:  opts.GetFunc,
	}
	if opts.Dynamic {
		val.dynamic = reg.dynamic
		val.v = reg.dynamic.live
	}

	val.v.SetDefault(key, opts.Default)
	if len(opts.EnvVars) > 0 {
		vars := append([]string{key}, opts.EnvVars...)
		if err := val.v.BindEnv(vars...); err != nil {
			slog.Warn("failed to bind environment variables", "key", key, "err", err)
		}
	}
	return val
}

// Key implements Value.
func (val *value[T]) Key() string { return val.key }

// Default implements Value.
func (val *value[T]) Default() T { return val.def }

// Flag implements Value.
func (val *value[T]) Flag() string { return val.flagName }

// Set implements Value.
func (val *value[T]) Set(v T) {
	if val.dynamic != nil {
		val.dynamic.mu.Lock()
		defer val.dynamic.mu.Unlock()
	}
	val.v.Set(val.key, v)
}

// Get implements Value. Dynamic values read under the watcher's lock.
func (val *value[T]) Get() T {
	if val.dynamic != nil {
		val.dynamic.mu.RLock()
		defer val.dynamic.mu.RUnlock()
	}
	if val.getFunc != nil {
		return val.getFunc(val.v, val.key)
	}

	var out T
	raw := val.v.Get(val.key)
	if raw == nil {
		return val.def
	}
	if err := mapstructure.WeakDecode(raw, &out); err != nil {
		slog.Warn(fmt.Sprintf("failed to decode config key %s: %s; using default", val.key, err))
		return val.def
	}
	return out
}

// BindFlags binds each value to the flag named by its FlagName in fs.
// Values without a flag name are skipped. It panics if a named flag was not
// defined, since that is a programming error in flag registration.
func BindFlags(fs *pflag.FlagSet, values ...Binder) {
	for _, val := range values {
		val.bindFlag(fs)
	}
}

func (val *value[T]) bindFlag(fs *pflag.FlagSet) {
	if val.flagName == "" {
		return
	}
	flag := fs.Lookup(val.flagName)
	if flag == nil {
		panic(fmt.Sprintf("flag %q bound to config key %q is not defined", val.flagName, val.key))
	}
	if err := val.v.BindPFlag(val.key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %q to config key %q: %s", val.flagName, val.key, err))
	}
}
