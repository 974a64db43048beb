package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const (
	watchDebounce = 100 * time.Millisecond
	pollInterval  = 5 * time.Second
)

// Watch starts hot reload for the config file. It prefers fsnotify
// events on the containing directory (editors replace files, so
// watching the file itself misses renames) and falls back to mtime
// polling when fsnotify is unavailable.
func (m *Manager) Watch(ctx context.Context) {
	if m.configPath == "" {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.watchCancel = cancel

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.WithError(err).Warn("fsnotify unavailable, polling config file instead")
		go m.pollLoop(ctx)
		return
	}
	if err := watcher.Add(filepath.Dir(m.configPath)); err != nil {
		watcher.Close()
		log.WithError(err).Warn("cannot watch config directory, polling instead")
		go m.pollLoop(ctx)
		return
	}
	go m.watchLoop(ctx, watcher)
}

// StopWatch stops a running watcher, if any.
func (m *Manager) StopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
	}
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var debounce *time.Timer
	target := filepath.Clean(m.configPath)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Editors fire several events per save, coalesce them.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				if err := m.Reload("file-watch"); err != nil {
					log.WithError(err).Warn("config reload after file change failed")
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("config watcher error")
		}
	}
}

func (m *Manager) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(m.configPath)
			if err != nil {
				continue
			}
			m.mu.RLock()
			changed := info.ModTime().After(m.lastMod)
			m.mu.RUnlock()
			if changed {
				if err := m.Reload("poll"); err != nil {
					log.WithError(err).Warn("config reload after mtime change failed")
				}
			}
		}
	}
}
