package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) { changes <- cfg }, nil)
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case cfg := <-changes:
			if cfg.Log.Level != "debug" {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("watch returned error: %v", err)
			}
			return
		case <-ticker.C:
			if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}
