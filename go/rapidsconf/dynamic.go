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
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// dynamicViper serializes access to a viper instance whose backing config
// file is watched for changes. Values registered as Dynamic read through it
// under the lock.
type dynamicViper struct {
	mu   sync.RWMutex
	live *viper.Viper

	watching    bool
	subscribers []chan<- struct{}
}

func newDynamicViper(live *viper.Viper) *dynamicViper {
	return &dynamicViper{live: live}
}

// Notify adds a subscription the watcher will attempt to notify after each
// successful reload. Notifications are sent non-blocking, like
// signal.Notify. Must be called before Watch; it panics afterwards.
func (dv *dynamicViper) Notify(ch chan<- struct{}) {
	dv.mu.Lock()
	defer dv.mu.Unlock()
	if dv.watching {
		panic("rapidsconf: Notify called after the config watcher started")
	}
	dv.subscribers = append(dv.subscribers, ch)
}

// load reads file into the live registry without watching it.
func (dv *dynamicViper) load(file string) error {
	dv.mu.Lock()
	defer dv.mu.Unlock()
	dv.live.SetConfigFile(file)
	if err := dv.live.ReadInConfig(); err != nil {
		return fmt.Errorf("loading dynamic config %s: %w", file, err)
	}
	return nil
}

// Watch loads file into the live registry and starts following changes to
// it. The returned cancel function stops the watcher; it is safe to call
// more than once.
func (dv *dynamicViper) Watch(file string) (context.CancelFunc, error) {
	dv.mu.Lock()
	defer dv.mu.Unlock()
	if dv.watching {
		return nil, fmt.Errorf("config file %s is already being watched", dv.live.ConfigFileUsed())
	}

	dv.live.SetConfigFile(file)
	if err := dv.live.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("loading dynamic config %s: %w", file, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting config watcher: %w", err)
	}
	// Watch the directory, not the file: editors and config writers often
	// replace the file by rename, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}

	dv.watching = true
	done := make(chan struct{})
	go dv.watch(watcher, file, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			watcher.Close()
		})
	}, nil
}

func (dv *dynamicViper) watch(watcher *fsnotify.Watcher, file string, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(file) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			dv.reload(file)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "file", file, "err", err)
		}
	}
}

func (dv *dynamicViper) reload(file string) {
	dv.mu.Lock()
	err := dv.live.ReadInConfig()
	subscribers := dv.subscribers
	dv.mu.Unlock()

	if err != nil {
		slog.Warn("failed to reload config file; keeping previous values", "file", file, "err", err)
		return
	}

	for _, ch := range subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
