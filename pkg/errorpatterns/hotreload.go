// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package errorpatterns

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// HotReloadConfig configures a HotReloader (grounded on the teacher's
// pkg/patterns/hotreload.go HotReloadConfig).
type HotReloadConfig struct {
	Enabled    bool
	DebounceMs int
	Logger     *zap.Logger
	// OnReload is called after every reload attempt; err is nil on success.
	OnReload func(err error)
}

// HotReloader watches the registry's pattern sources and debounces
// filesystem events into a single Reload call, so rapid-fire writes (an
// editor saving + renaming) only trigger one validation pass.
type HotReloader struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	config   HotReloadConfig
	logger   *zap.Logger

	debounce   *time.Timer
	debounceMu sync.Mutex

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHotReloader creates a watcher over the registry's pattern directories.
// dirs should contain every directory holding a pattern source file.
func NewHotReloader(registry *Registry, dirs []string, config HotReloadConfig) (*HotReloader, error) {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.DebounceMs == 0 {
		config.DebounceMs = 500
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating pattern file watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching pattern directory %s: %w", dir, err)
		}
	}

	return &HotReloader{
		registry: registry,
		watcher:  watcher,
		config:   config,
		logger:   config.Logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (hr *HotReloader) Start() {
	if !hr.config.Enabled {
		hr.logger.Info("pattern hot-reload disabled")
		close(hr.doneCh)
		return
	}
	go hr.run()
}

func (hr *HotReloader) run() {
	defer close(hr.doneCh)
	for {
		select {
		case <-hr.stopCh:
			return
		case event, ok := <-hr.watcher.Events:
			if !ok {
				return
			}
			hr.scheduleReload(event)
		case err, ok := <-hr.watcher.Errors:
			if !ok {
				return
			}
			hr.logger.Warn("pattern watcher error", zap.Error(err))
		}
	}
}

func (hr *HotReloader) scheduleReload(event fsnotify.Event) {
	hr.debounceMu.Lock()
	defer hr.debounceMu.Unlock()

	if hr.debounce != nil {
		hr.debounce.Stop()
	}
	hr.debounce = time.AfterFunc(time.Duration(hr.config.DebounceMs)*time.Millisecond, func() {
		err := hr.registry.Reload()
		if err != nil {
			hr.logger.Error("pattern reload failed; keeping previous snapshot", zap.String("event", event.Name), zap.Error(err))
		} else {
			hr.logger.Info("pattern registry reloaded", zap.String("event", event.Name))
		}
		if hr.config.OnReload != nil {
			hr.config.OnReload(err)
		}
	})
}

// Stop halts the watcher and waits for its goroutine to exit.
func (hr *HotReloader) Stop() {
	close(hr.stopCh)
	hr.watcher.Close()
	<-hr.doneCh
}
