// Package viewmodel keeps the local state of the Greet and PetVote screens
// in sync with their contracts: one bulk read per mount, one live event
// subscription, and a mining-gated transaction submitter.
package viewmodel

import "errors"

// Phase is the lifecycle state of one screen mount.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// ErrStarted is returned when a mount is started twice. Re-selecting a
// screen builds a new synchronizer instead.
var ErrStarted = errors.New("synchronizer already started")

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(msg string)
}

type nopAlerter struct{}

func (nopAlerter) Alert(string) {}
