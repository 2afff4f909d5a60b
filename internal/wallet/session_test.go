package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
)

type fakeProvider struct {
	present bool
	silent  []common.Address
	prompt  []common.Address
	err     error
	modes   []Mode
}

func (f *fakeProvider) Present() bool { return f.present }

func (f *fakeProvider) RequestAccounts(_ context.Context, mode Mode) ([]common.Address, error) {
	f.modes = append(f.modes, mode)
	if mode == ModeSilent {
		return f.silent, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.prompt, nil
}

func (f *fakeProvider) Transactor(acc common.Address, _ *big.Int) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: acc}, nil
}

type alerts []string

func (a *alerts) Alert(msg string) { *a = append(*a, msg) }

var (
	accX = common.HexToAddress("0x000000000000000000000000000000000000000a")
	accY = common.HexToAddress("0x000000000000000000000000000000000000000b")
)

func TestWalletAbsent(t *testing.T) {
	c := qt.New(t)
	var shown alerts
	m := NewManager(nil, &shown, nil)

	_, ok := m.Init(context.Background())
	c.Assert(ok, qt.IsFalse)
	c.Assert(m.Detected(), qt.IsTrue)
	c.Assert(m.Present(), qt.IsFalse)
	_, ok = m.Account()
	c.Assert(ok, qt.IsFalse)
	c.Assert(shown, qt.HasLen, 0)
}

func TestInitAdoptsAuthorizedAccount(t *testing.T) {
	c := qt.New(t)
	p := &fakeProvider{present: true, silent: []common.Address{accX, accY}}
	m := NewManager(p, nil, nil)

	acc, ok := m.Init(context.Background())
	c.Assert(ok, qt.IsTrue)
	c.Assert(acc, qt.Equals, accX)
	c.Assert(p.modes, qt.DeepEquals, []Mode{ModeSilent})

	signer, err := m.Signer(big.NewInt(1))
	c.Assert(err, qt.IsNil)
	c.Assert(signer.From, qt.Equals, accX)
}

func TestConnectAfterNoAuthorizedAccount(t *testing.T) {
	c := qt.New(t)
	p := &fakeProvider{present: true, prompt: []common.Address{accX}}
	m := NewManager(p, nil, nil)

	_, ok := m.Init(context.Background())
	c.Assert(ok, qt.IsFalse)
	c.Assert(m.Present(), qt.IsTrue)
	_, err := m.Signer(big.NewInt(1))
	c.Assert(err, qt.ErrorIs, ErrNoAccounts)

	acc, ok := m.RequestConnection(context.Background())
	c.Assert(ok, qt.IsTrue)
	c.Assert(acc, qt.Equals, accX)
	cur, ok := m.Account()
	c.Assert(ok, qt.IsTrue)
	c.Assert(cur, qt.Equals, accX)
}

func TestConnectFailureAlertsAndKeepsState(t *testing.T) {
	c := qt.New(t)
	var shown alerts
	p := &fakeProvider{present: true, silent: []common.Address{accY}, err: ErrRejected}
	m := NewManager(p, &shown, nil)
	m.Init(context.Background())

	_, ok := m.RequestConnection(context.Background())
	c.Assert(ok, qt.IsFalse)
	c.Assert([]string(shown), qt.DeepEquals, []string{ConnectFailedAlert})

	cur, ok := m.Account()
	c.Assert(ok, qt.IsTrue)
	c.Assert(cur, qt.Equals, accY)

	// the user may retry
	p.err = nil
	p.prompt = []common.Address{accX}
	acc, ok := m.RequestConnection(context.Background())
	c.Assert(ok, qt.IsTrue)
	c.Assert(acc, qt.Equals, accX)
	c.Assert(shown, qt.HasLen, 1)
}

func TestConnectEmptyResultKeepsState(t *testing.T) {
	c := qt.New(t)
	var shown alerts
	m := NewManager(&fakeProvider{present: true}, &shown, nil)

	_, ok := m.RequestConnection(context.Background())
	c.Assert(ok, qt.IsFalse)
	_, ok = m.Account()
	c.Assert(ok, qt.IsFalse)
	c.Assert(shown, qt.HasLen, 0)
}

func TestNoProvider(t *testing.T) {
	c := qt.New(t)
	var p NoProvider
	c.Assert(p.Present(), qt.IsFalse)
	_, err := p.RequestAccounts(context.Background(), ModePrompt)
	c.Assert(errors.Is(err, ErrNoWallet), qt.IsTrue)
	_, err = p.Transactor(accX, big.NewInt(1))
	c.Assert(err, qt.ErrorIs, ErrNoWallet)
	c.Assert(ModePrompt.String(), qt.Equals, "prompt")
}
