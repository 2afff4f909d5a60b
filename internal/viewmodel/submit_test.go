package viewmodel

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	qt "github.com/frankban/quicktest"
)

func TestSubmitterMiningFlag(t *testing.T) {
	c := qt.New(t)
	f := newChain(1)
	f.sendGate = make(chan struct{})
	flips := 0
	s := NewSubmitter("wave", f, nil, nil, func() { flips++ })

	var in Input
	in.Set("hello")
	c.Assert(s.CanSubmit(&in), qt.IsTrue)

	done := make(chan error, 1)
	go func() {
		done <- s.Submit(context.Background(), &in, func(ctx context.Context, v string) (*types.Transaction, error) {
			return f.send(ctx, v)
		}, nil)
	}()

	waitUntil(c, "mining", s.Mining)
	c.Assert(s.CanSubmit(&in), qt.IsFalse)
	err := s.Submit(context.Background(), &in, func(context.Context, string) (*types.Transaction, error) {
		c.Fatal("re-entrant submission reached the contract")
		return nil, nil
	}, nil)
	c.Assert(err, qt.ErrorIs, ErrBusy)

	close(f.sendGate)
	c.Assert(<-done, qt.IsNil)
	c.Assert(s.Mining(), qt.IsFalse)
	c.Assert(in.Value(), qt.Equals, "")
	c.Assert(flips, qt.Equals, 2)
	c.Assert(f.sentArgs(), qt.DeepEquals, [][]string{{"hello"}})
}

func TestSubmitterRejectsEmptyInput(t *testing.T) {
	c := qt.New(t)
	alerts := new(alertLog)
	s := NewSubmitter("wave", newChain(1), alerts, nil, nil)

	var in Input
	c.Assert(s.CanSubmit(&in), qt.IsFalse)
	c.Assert(s.Submit(context.Background(), &in, nil, nil), qt.ErrorIs, ErrEmptyInput)
	c.Assert(s.Mining(), qt.IsFalse)
	c.Assert(alerts.messages(), qt.HasLen, 0)
}

func TestSubmitterFailureAlertsAndResets(t *testing.T) {
	c := qt.New(t)
	f := newChain(1)
	f.sendErr = errCancelled
	alerts := new(alertLog)
	s := NewSubmitter("vote", f, alerts, nil, nil)

	var in Input
	in.Set("because")
	finallyRan := false
	err := s.Submit(context.Background(), &in, func(ctx context.Context, v string) (*types.Transaction, error) {
		return f.send(ctx, v)
	}, func() {
		// the flag is still raised while finally runs
		finallyRan = s.Mining()
	})
	c.Assert(err, qt.ErrorIs, errCancelled)
	c.Assert(finallyRan, qt.IsTrue)
	c.Assert(alerts.messages(), qt.DeepEquals, []string{TxFailedAlert})
	c.Assert(s.Mining(), qt.IsFalse)
	c.Assert(in.Value(), qt.Equals, "")
}

func TestSubmitterRevertedReceipt(t *testing.T) {
	c := qt.New(t)
	f := newChain(1)
	f.status = types.ReceiptStatusFailed
	alerts := new(alertLog)
	s := NewSubmitter("wave", f, alerts, nil, nil)

	var in Input
	in.Set("hi")
	err := s.Submit(context.Background(), &in, func(ctx context.Context, v string) (*types.Transaction, error) {
		return f.send(ctx, v)
	}, nil)
	c.Assert(err, qt.ErrorIs, ErrReverted)
	c.Assert(alerts.messages(), qt.DeepEquals, []string{TxFailedAlert})
	c.Assert(in.Value(), qt.Equals, "")
}

func TestVoteGuard(t *testing.T) {
	c := qt.New(t)
	var g VoteGuard
	c.Assert(g.Attempted(), qt.IsFalse)
	g.MarkAttempted()
	c.Assert(g.Attempted(), qt.IsTrue)
	c.Assert(g.Confirmed(), qt.IsFalse)
	g.MarkConfirmed()
	c.Assert(g.Confirmed(), qt.IsTrue)
}

func TestPhaseString(t *testing.T) {
	c := qt.New(t)
	c.Assert(PhaseUninitialized.String(), qt.Equals, "uninitialized")
	c.Assert(PhaseLoading.String(), qt.Equals, "loading")
	c.Assert(PhaseReady.String(), qt.Equals, "ready")
	c.Assert(PhaseFailed.String(), qt.Equals, "failed")
}
