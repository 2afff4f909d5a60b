package viewmodel

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"dapp-portal/internal/contracts"
	"dapp-portal/internal/logger"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
)

const waitTimeout = 2 * time.Second

var errCancelled = errors.New("user rejected transaction")

// chain is the part of a fake contract shared by both screens.
type chain struct {
	mu      sync.Mutex
	head    uint64
	fail    string
	calls   []string
	pinned  []*big.Int
	gate    chan struct{}
	watches int

	subscribed   chan struct{}
	unsubscribed chan struct{}
	unsubOnce    sync.Once
	subErr       chan error

	sendErr  error
	sendGate chan struct{}
	status   uint64
	sent     [][]string
	nonce    uint64
}

func newChain(head uint64) *chain {
	return &chain{
		head:         head,
		subscribed:   make(chan struct{}),
		unsubscribed: make(chan struct{}),
		subErr:       make(chan error, 1),
		status:       types.ReceiptStatusSuccessful,
	}
}

func (f *chain) Head(ctx context.Context) (uint64, error) {
	if err := f.record("head", nil); err != nil {
		return 0, err
	}
	return f.head, nil
}

func (f *chain) CallOpts(ctx context.Context, block uint64, pinned bool) *bind.CallOpts {
	opts := &bind.CallOpts{Context: ctx}
	if pinned {
		opts.BlockNumber = new(big.Int).SetUint64(block)
	}
	return opts
}

// record notes a call and fails it when it matches f.fail.
func (f *chain) record(method string, opts *bind.CallOpts) error {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	if opts != nil {
		f.pinned = append(f.pinned, opts.BlockNumber)
	}
	fail := f.fail == method
	f.mu.Unlock()
	if fail {
		return errors.New(method + ": execution reverted")
	}
	return nil
}

func (f *chain) wait() {
	if f.gate != nil {
		<-f.gate
	}
}

func (f *chain) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *chain) subscription() event.Subscription {
	f.mu.Lock()
	f.watches++
	first := f.watches == 1
	f.mu.Unlock()
	if first {
		close(f.subscribed)
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		select {
		case <-quit:
			f.unsubOnce.Do(func() { close(f.unsubscribed) })
			return nil
		case err := <-f.subErr:
			return err
		}
	})
}

func (f *chain) send(ctx context.Context, args ...string) (*types.Transaction, error) {
	if f.sendGate != nil {
		<-f.sendGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, args)
	f.nonce++
	return types.NewTx(&types.LegacyTx{Nonce: f.nonce, Gas: 300000}), nil
}

func (f *chain) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return &types.Receipt{Status: f.status, TxHash: tx.Hash()}, nil
}

func (f *chain) sentArgs() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.sent...)
}

type fakeGreet struct {
	*chain
	total *big.Int
	waves []contracts.Wave
	sink  chan<- *contracts.WavePortalNewWave
}

func (f *fakeGreet) GetTotalWaves(opts *bind.CallOpts) (*big.Int, error) {
	if err := f.record("getTotalWaves", opts); err != nil {
		return nil, err
	}
	return f.total, nil
}

func (f *fakeGreet) GetAllWaves(opts *bind.CallOpts) ([]contracts.Wave, error) {
	f.wait()
	if err := f.record("getAllWaves", opts); err != nil {
		return nil, err
	}
	return f.waves, nil
}

func (f *fakeGreet) WatchNewWave(opts *bind.WatchOpts, sink chan<- *contracts.WavePortalNewWave) (event.Subscription, error) {
	f.mu.Lock()
	f.sink = sink
	f.mu.Unlock()
	if err := f.record("watch", nil); err != nil {
		return nil, err
	}
	return f.subscription(), nil
}

func (f *fakeGreet) Wave(ctx context.Context, message string) (*types.Transaction, error) {
	return f.send(ctx, message)
}

func (f *fakeGreet) emit(ev *contracts.WavePortalNewWave) {
	f.mu.Lock()
	sink := f.sink
	f.mu.Unlock()
	sink <- ev
}

type fakePets struct {
	*chain
	options []contracts.Option
	history []contracts.Vote
	voted   bool
	sink    chan<- *contracts.PetVoteNewVote
}

func (f *fakePets) GetOptions(opts *bind.CallOpts) ([]contracts.Option, error) {
	if err := f.record("getOptions", opts); err != nil {
		return nil, err
	}
	return f.options, nil
}

func (f *fakePets) GetVoteHistory(opts *bind.CallOpts) ([]contracts.Vote, error) {
	f.wait()
	if err := f.record("getVoteHistory", opts); err != nil {
		return nil, err
	}
	return f.history, nil
}

func (f *fakePets) AlreadyVoted(opts *bind.CallOpts) (bool, error) {
	if err := f.record("alreadyVoted", opts); err != nil {
		return false, err
	}
	return f.voted, nil
}

func (f *fakePets) WatchNewVote(opts *bind.WatchOpts, sink chan<- *contracts.PetVoteNewVote) (event.Subscription, error) {
	f.mu.Lock()
	f.sink = sink
	f.mu.Unlock()
	if err := f.record("watch", nil); err != nil {
		return nil, err
	}
	return f.subscription(), nil
}

func (f *fakePets) Vote(ctx context.Context, pet, reason string) (*types.Transaction, error) {
	return f.send(ctx, pet, reason)
}

func (f *fakePets) emit(ev *contracts.PetVoteNewVote) {
	f.mu.Lock()
	sink := f.sink
	f.mu.Unlock()
	sink <- ev
}

func rawLog(block uint64, tx byte, index uint) types.Log {
	return types.Log{
		BlockNumber: block,
		TxHash:      common.BytesToHash([]byte{tx}),
		Index:       index,
	}
}

func addr(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

func newWave(block uint64, tx byte, from byte, msg string) *contracts.WavePortalNewWave {
	return &contracts.WavePortalNewWave{
		From:      addr(from),
		Timestamp: big.NewInt(1700000000 + int64(block)),
		Message:   msg,
		Raw:       rawLog(block, tx, 0),
	}
}

func newVote(block uint64, tx byte, from byte, pet, reason string) *contracts.PetVoteNewVote {
	return &contracts.PetVoteNewVote{
		From:      addr(from),
		Timestamp: big.NewInt(1700000000 + int64(block)),
		Reason:    reason,
		PetName:   pet,
		Raw:       rawLog(block, tx, 0),
	}
}

// waitUntil polls cond until it holds or the test times out.
func waitUntil(c *qt.C, what string, cond func() bool) {
	c.Helper()
	deadline := time.Now().Add(waitTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			c.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitClosed(c *qt.C, what string, ch <-chan struct{}) {
	c.Helper()
	select {
	case <-ch:
	case <-time.After(waitTimeout):
		c.Fatalf("timed out waiting for %s", what)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Contains(s string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(b.buf.String(), s)
}

func debugLogger() (*logger.Logger, *syncBuffer) {
	buf := new(syncBuffer)
	return logger.NewWithWriter(true, buf), buf
}

type alertLog struct {
	mu  sync.Mutex
	got []string
}

func (a *alertLog) Alert(msg string) {
	a.mu.Lock()
	a.got = append(a.got, msg)
	a.mu.Unlock()
}

func (a *alertLog) messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.got...)
}

type recorded struct {
	mount uuid.UUID
	tx    common.Hash
}

type memRecorder struct {
	mu    sync.Mutex
	waves []recorded
	votes []recorded
}

func (r *memRecorder) RecordWave(mount uuid.UUID, ev *contracts.WavePortalNewWave) error {
	r.mu.Lock()
	r.waves = append(r.waves, recorded{mount, ev.Raw.TxHash})
	r.mu.Unlock()
	return nil
}

func (r *memRecorder) RecordVote(mount uuid.UUID, ev *contracts.PetVoteNewVote) error {
	r.mu.Lock()
	r.votes = append(r.votes, recorded{mount, ev.Raw.TxHash})
	r.mu.Unlock()
	return nil
}

func (r *memRecorder) count() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waves), len(r.votes)
}
