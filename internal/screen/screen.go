// Package screen selects which feature screen is mounted.
package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dapp-portal/internal/logger"
)

// Screen is one of the selectable views.
type Screen int

const (
	None Screen = iota
	Greet
	Pets
)

func (s Screen) String() string {
	switch s {
	case Greet:
		return "greet"
	case Pets:
		return "pets"
	default:
		return "none"
	}
}

// ErrTransition is returned for moves between two feature screens. The
// menu is always passed through.
var ErrTransition = errors.New("invalid screen transition")

// Mount is a started feature screen.
type Mount interface {
	Start(ctx context.Context) error
	Stop()
}

// Builder creates a fresh mount for s. It is called on every selection.
type Builder func(s Screen) (Mount, error)

// Selector is the None | Greet | Pets state machine. Leaving a screen
// stops its mount; selecting it again builds a new one.
type Selector struct {
	ctx   context.Context
	build Builder
	log   *logger.Logger

	mu      sync.Mutex
	current Screen
	mount   Mount
}

// NewSelector starts at None. Mounts are started with ctx.
func NewSelector(ctx context.Context, build Builder, log *logger.Logger) *Selector {
	if log == nil {
		log = logger.Discard()
	}
	return &Selector{ctx: ctx, build: build, log: log.With("[screen]")}
}

// Current returns the active screen.
func (s *Selector) Current() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Mounted returns the active mount, nil on None.
func (s *Selector) Mounted() Mount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mount
}

// Select moves to screen to. Selecting the active screen keeps its mount.
// A mount that fails to build or start leaves the selector at None.
func (s *Selector) Select(to Screen) (Mount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if to == s.current {
		return s.mount, nil
	}
	if s.current != None && to != None {
		return s.mount, fmt.Errorf("%s -> %s: %w", s.current, to, ErrTransition)
	}

	if s.mount != nil {
		s.mount.Stop()
		s.log.Printf("unmounted %s", s.current)
	}
	s.current, s.mount = None, nil
	if to == None {
		return nil, nil
	}

	m, err := s.build(to)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", to, err)
	}
	if err := m.Start(s.ctx); err != nil {
		m.Stop()
		return nil, fmt.Errorf("start %s: %w", to, err)
	}
	s.current, s.mount = to, m
	s.log.Printf("mounted %s", to)
	return m, nil
}

// Close unmounts the active screen.
func (s *Selector) Close() {
	_, _ = s.Select(None)
}
