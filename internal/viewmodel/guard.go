package viewmodel

import "sync"

// VoteGuard holds the local voting lock. An attempt locks voting whether
// or not it was confirmed; nothing unlocks it again.
type VoteGuard struct {
	mu        sync.Mutex
	attempted bool
	confirmed bool
}

// MarkAttempted records a submitted vote regardless of its outcome.
func (g *VoteGuard) MarkAttempted() {
	g.mu.Lock()
	g.attempted = true
	g.mu.Unlock()
}

// MarkConfirmed records a vote that was mined successfully.
func (g *VoteGuard) MarkConfirmed() {
	g.mu.Lock()
	g.attempted = true
	g.confirmed = true
	g.mu.Unlock()
}

func (g *VoteGuard) Attempted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempted
}

func (g *VoteGuard) Confirmed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.confirmed
}
