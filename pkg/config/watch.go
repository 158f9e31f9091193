package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch watches the config file for changes and reloads the global
// configuration whenever it is written. The optional onReload callback is
// invoked after each successful reload. Watch blocks until the watcher fails
// or the stop channel is closed.
//
// The parent directory is watched rather than the file itself so that
// rename-based editors and Kubernetes ConfigMap symlink swaps are picked up.
func Watch(stop <-chan struct{}, onReload func(*WarehouseConfig)) error {
	cfg := Get()
	configFile := cfg.ConfigFilePath()
	configDir := filepath.Dir(configFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", configDir, err)
	}

	log.Printf("Watching %s for configuration changes", configFile)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(configFile) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if err := Reload(); err != nil {
				log.Printf("Failed to reload configuration: %v", err)
				continue
			}

			log.Printf("Configuration reloaded from %s", configFile)
			if onReload != nil {
				onReload(Get())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Config watcher error: %v", err)
		case <-stop:
			return nil
		}
	}
}
