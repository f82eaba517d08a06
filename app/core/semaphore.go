package core

import (
	"sync"
)

// RunGate serializes AI pipeline runs per project. A project can have one
// generation or chat turn in flight at a time; everything else answers
// "busy" instead of queueing.
type RunGate struct {
	mu   sync.Mutex
	busy map[string]bool
}

func NewRunGate() *RunGate {
	return &RunGate{
		busy: make(map[string]bool),
	}
}

func (g *RunGate) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.busy[key] {
		return false
	}
	g.busy[key] = true
	return true
}

func (g *RunGate) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.busy, key)
}
