package viewmodel

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"dapp-portal/internal/contracts"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
)

// GreetSource is the WavePortal surface the Greet screen uses.
type GreetSource interface {
	Head(ctx context.Context) (uint64, error)
	CallOpts(ctx context.Context, block uint64, pinned bool) *bind.CallOpts
	GetTotalWaves(opts *bind.CallOpts) (*big.Int, error)
	GetAllWaves(opts *bind.CallOpts) ([]contracts.Wave, error)
	WatchNewWave(opts *bind.WatchOpts, sink chan<- *contracts.WavePortalNewWave) (event.Subscription, error)
	Wave(ctx context.Context, message string) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// WaveRecord is one greeting as displayed.
type WaveRecord struct {
	Address   common.Address
	Timestamp time.Time
	Message   string
}

// GreetView is a copy of the Greet screen state.
type GreetView struct {
	Phase   Phase
	Err     error
	Live    bool
	LiveErr error
	MountID uuid.UUID
	Count   int
	Waves   []WaveRecord
	Mining  bool
}

type greetState struct {
	count int
	waves []WaveRecord
}

// Greet synchronizes one mount of the Greet screen.
type Greet struct {
	src     GreetSource
	eng     *engine[greetState, *contracts.WavePortalNewWave]
	sub     *Submitter
	Message Input
}

// NewGreet prepares a mount over src. Nothing happens until Start.
func NewGreet(src GreetSource, opts Options) *Greet {
	opts = opts.withDefaults()
	g := &Greet{src: src}
	eng := newEngine[greetState, *contracts.WavePortalNewWave]("greet", opts)
	eng.watch = src.WatchNewWave
	eng.head = src.Head
	eng.load = g.load
	eng.apply = applyWave
	eng.raw = func(ev *contracts.WavePortalNewWave) types.Log { return ev.Raw }
	if opts.Recorder != nil {
		eng.record = func(ev *contracts.WavePortalNewWave) error {
			return opts.Recorder.RecordWave(eng.id, ev)
		}
	}
	g.eng = eng
	g.sub = NewSubmitter("wave", src, opts.Alert, eng.log, eng.notify)
	return g
}

// Start begins loading and subscribes to NewWave.
func (g *Greet) Start(ctx context.Context) error { return g.eng.start(ctx) }

// Stop releases the subscription. Reads still in flight are discarded.
func (g *Greet) Stop() { g.eng.stop() }

// Changes signals after every state change. Signals coalesce.
func (g *Greet) Changes() <-chan struct{} { return g.eng.changes }

// MountID identifies this mount in logs and the archive.
func (g *Greet) MountID() uuid.UUID { return g.eng.id }

// CanSubmit reports whether the hello button is enabled.
func (g *Greet) CanSubmit() bool { return g.sub.CanSubmit(&g.Message) }

// Submit waves with the current message and blocks until settled.
func (g *Greet) Submit(ctx context.Context) error {
	return g.sub.Submit(ctx, &g.Message, g.src.Wave, nil)
}

func (g *Greet) View() GreetView {
	e := g.eng
	e.mu.Lock()
	st := e.statusLocked()
	v := GreetView{
		Phase:   st.Phase,
		Err:     st.Err,
		Live:    st.Live,
		LiveErr: st.LiveErr,
		MountID: e.id,
		Count:   e.state.count,
		Waves:   append([]WaveRecord(nil), e.state.waves...),
	}
	e.mu.Unlock()
	v.Mining = g.sub.Mining()
	return v
}

// load reads the counter, then the list, both pinned at block.
func (g *Greet) load(ctx context.Context, block uint64) (greetState, error) {
	opts := g.src.CallOpts(ctx, block, true)
	total, err := g.src.GetTotalWaves(opts)
	if err != nil {
		return greetState{}, err
	}
	count, err := contracts.ToInt(total)
	if err != nil {
		return greetState{}, fmt.Errorf("total waves: %w", err)
	}
	all, err := g.src.GetAllWaves(opts)
	if err != nil {
		return greetState{}, err
	}
	waves := make([]WaveRecord, 0, len(all))
	for i, w := range all {
		ts, err := contracts.ToTime(w.Timestamp)
		if err != nil {
			return greetState{}, fmt.Errorf("wave %d timestamp: %w", i, err)
		}
		waves = append(waves, WaveRecord{Address: w.Waver, Timestamp: ts, Message: w.Message})
	}
	return greetState{count: count, waves: waves}, nil
}

func applyWave(st *greetState, ev *contracts.WavePortalNewWave) error {
	ts, err := contracts.ToTime(ev.Timestamp)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	st.waves = append(st.waves, WaveRecord{Address: ev.From, Timestamp: ts, Message: ev.Message})
	st.count++
	return nil
}
