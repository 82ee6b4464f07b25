package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Manager hands out per-channel media directories and answers the
// existence check fetch workers use for duplicate detection.
type Manager struct {
	baseDir string
	mu      sync.Mutex
	created map[string]string
}

// NewManager creates a storage manager rooted at baseDir. Directories are
// created lazily, one per harvested channel.
func NewManager(baseDir string) *Manager {
	return &Manager{
		baseDir: baseDir,
		created: make(map[string]string),
	}
}

// ChannelDir returns the media directory for a channel, creating it on
// first use.
func (m *Manager) ChannelDir(title string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir, ok := m.created[title]; ok {
		return dir, nil
	}

	dir := filepath.Join(m.baseDir, sanitizeName(title))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create channel directory: %w", err)
	}

	m.created[title] = dir
	return dir, nil
}

// Exists reports whether a file is already present at path. Concurrent
// fetch tasks write under distinct names, so this check is the only
// locking duplicate detection needs.
func (m *Manager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// BaseDir returns the root media directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// sanitizeName makes a channel title safe for use as a directory name.
func sanitizeName(title string) string {
	replacer := strings.NewReplacer(
		string(os.PathSeparator), "_",
		"/", "_",
		"\x00", "_",
	)
	name := strings.TrimSpace(replacer.Replace(title))
	if name == "" {
		name = "channel"
	}
	return name
}
