//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// On regular Go edge handlers run on their own goroutines (gpiocdev event
// handlers, tests), so the critical section is a process-wide mutex instead
// of an interrupt mask. It is not reentrant.
var critical sync.Mutex

// disableInterrupts enters the critical section shared with edge handlers
func disableInterrupts() State {
	critical.Lock()
	return 0
}

// restoreInterrupts leaves the critical section
func restoreInterrupts(state State) {
	critical.Unlock()
}
