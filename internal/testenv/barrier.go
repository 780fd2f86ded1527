package testenv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ConfigBarrier snapshots the files papertriage writes in the real data
// directory so a test run can prove it left them alone.
type ConfigBarrier struct {
	dir   string
	files map[string]fileState
}

type fileState struct {
	exists bool
	size   int64
	mtime  time.Time
}

// watchedFiles are written by `config set` and the TUI debug log.
var watchedFiles = []string{"config.toml", "debug.log"}

// DefaultProdDataDir returns ~/.papertriage, ignoring PAPERTRIAGE_DATA_DIR.
func DefaultProdDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".papertriage")
}

// NewConfigBarrier records the current state of dir. Resolve dir before
// PAPERTRIAGE_DATA_DIR is overridden.
func NewConfigBarrier(dir string) *ConfigBarrier {
	b := &ConfigBarrier{dir: dir, files: make(map[string]fileState)}
	for _, name := range watchedFiles {
		b.files[name] = stat(filepath.Join(dir, name))
	}
	return b
}

// Check returns a non-empty report when any watched file was created,
// modified or deleted since the barrier was made.
func (b *ConfigBarrier) Check() string {
	var violations []string
	for _, name := range watchedFiles {
		before := b.files[name]
		after := stat(filepath.Join(b.dir, name))
		switch {
		case !before.exists && after.exists:
			violations = append(violations, fmt.Sprintf("test created %s in %s", name, b.dir))
		case before.exists && !after.exists:
			violations = append(violations, fmt.Sprintf("test deleted %s from %s", name, b.dir))
		case before.exists && (before.size != after.size || !before.mtime.Equal(after.mtime)):
			violations = append(violations, fmt.Sprintf("test modified %s in %s (size %d→%d)",
				name, b.dir, before.size, after.size))
		}
	}
	if len(violations) == 0 {
		return ""
	}
	return "DATA DIR BARRIER FAILED:\n  " + strings.Join(violations, "\n  ")
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, size: info.Size(), mtime: info.ModTime()}
}
