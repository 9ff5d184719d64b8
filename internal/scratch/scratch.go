// Package scratch hands out per-job working directories.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Manager owns a root directory below which every job gets "job_<id>".
type Manager struct {
	root  string
	mutex sync.Mutex
	inUse map[uint32]bool
}

// New creates a manager rooted at root, made absolute so that paths handed
// to child processes do not depend on their working directory.
func New(root string) *Manager {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Manager{
		root:  root,
		inUse: make(map[uint32]bool),
	}
}

// Prepare removes whatever is left of the job's directory and recreates it
// empty. A directory stays reserved until Close.
func (m *Manager) Prepare(jobID uint32) (*Dir, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.inUse[jobID] {
		return nil, fmt.Errorf("scratch dir of job %d is in use", jobID)
	}

	path := filepath.Join(m.root, "job_"+strconv.FormatUint(uint64(jobID), 10))
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("failed to clean %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	m.inUse[jobID] = true
	return &Dir{id: jobID, path: path, manager: m}, nil
}

func (m *Manager) release(jobID uint32) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.inUse, jobID)
}

type Dir struct {
	id      uint32
	path    string
	manager *Manager
}

// Path returns the absolute location of name inside the directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, name)
}

func (d *Dir) Root() string {
	return d.path
}

func (d *Dir) AddFile(name string, content []byte) error {
	return os.WriteFile(d.Path(name), content, 0644)
}

// Close erases the directory and frees the job id for the next Prepare.
func (d *Dir) Close() error {
	defer d.manager.release(d.id)
	return os.RemoveAll(d.path)
}
