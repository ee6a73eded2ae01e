package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle batches the burst of events an editor produces when saving.
const settle = 100 * time.Millisecond

// Watch calls fn with the reloaded configuration each time the file at
// path changes. Files that fail to load are logged and skipped. Watch
// returns when ctx is done.
func Watch(ctx context.Context, path string, fn func(c *Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer w.Close()
	path = filepath.Clean(path)
	// Watch the directory; editors often replace the file.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			c, err := Load(path)
			if err != nil {
				log.Printf("config: reload: %v", err)
				continue
			}
			log.Printf("config: reloaded %s", path)
			fn(c)
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != path {
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("config: watch: %v", err)
		}
	}
}
