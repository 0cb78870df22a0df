package util

import (
	"sync"
)

// InodeTable hands out inode numbers that stay stable per name for the
// lifetime of the table. Inode 1 is reserved for the root.
type InodeTable struct {
	mu      sync.Mutex
	highest uint64
	byName  map[string]uint64
}

func NewInodeTable() *InodeTable {
	return &InodeTable{highest: 1, byName: make(map[string]uint64)}
}

// Get returns the inode for name, allocating one on first use.
func (t *InodeTable) Get(name string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ino, ok := t.byName[name]; ok {
		return ino
	}
	t.highest++
	t.byName[name] = t.highest
	return t.highest
}

// Forget drops the inode for name. A later Get allocates a new number.
func (t *InodeTable) Forget(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byName, name)
}

func (t *InodeTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byName)
}
