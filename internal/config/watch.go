// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of filesystem events an editor save
// produces into a single reload.
const reloadDelay = 200 * time.Millisecond

// Watcher reloads the config file when it changes on disk and hands the
// fresh config to a callback. Used for live theme switching while the
// TUI is running.
type Watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching path. onChange is called from a background
// goroutine with every successfully reloaded config; a config that fails
// to parse or validate is skipped and the previous one stays in effect.
func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors typically replace the
	// file by rename, which drops a watch placed on the file itself.
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{fs: fs, done: make(chan struct{})}
	go w.loop(path, onChange)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) loop(path string, onChange func(*Config)) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
				timerC = timer.C
			} else {
				timer.Reset(reloadDelay)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			cfg, err := LoadFromPath(path)
			if err != nil {
				continue
			}
			onChange(cfg)
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}
