package capi

import (
	"sync"
	"sync/atomic"

	"awmkit/internal/audio"
)

// handleTable owns *audio.Orchestrator values across the ABI boundary.
// Handles are small integers rather than raw pointers: a host cannot
// dereference one into memory corruption, and destroy is safe to call
// twice (spec §4.9, §9 "Dynamic handle ownership across the ABI").
type handleTable struct {
	mu   sync.RWMutex
	next int64
	live map[int64]*audio.Orchestrator
}

var orchestrators = &handleTable{live: make(map[int64]*audio.Orchestrator)}

// NewOrchestratorHandle constructs an audio orchestrator and returns a
// handle for it. Never zero, so zero is reserved as the "no handle" value.
func NewOrchestratorHandle(enginePath, ffmpegPath string, disablePipeIO bool) int64 {
	o := audio.NewOrchestrator(enginePath, ffmpegPath, disablePipeIO, nil)

	id := atomic.AddInt64(&orchestrators.next, 1)
	orchestrators.mu.Lock()
	orchestrators.live[id] = o
	orchestrators.mu.Unlock()
	return id
}

// Orchestrator resolves a handle to its live orchestrator, or nil if the
// handle is zero, unknown, or already destroyed.
func Orchestrator(handle int64) *audio.Orchestrator {
	orchestrators.mu.RLock()
	defer orchestrators.mu.RUnlock()
	return orchestrators.live[handle]
}

// DestroyOrchestratorHandle releases a handle. Calling it again with the
// same (or a zero) handle is a defined-safe no-op.
func DestroyOrchestratorHandle(handle int64) {
	if handle == 0 {
		return
	}
	orchestrators.mu.Lock()
	delete(orchestrators.live, handle)
	orchestrators.mu.Unlock()
}
