package viewmodel

import (
	"context"
	"fmt"
	"sync"

	"dapp-portal/internal/contracts"
	"dapp-portal/internal/logger"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
)

const defaultBuffer = 64

// Recorder archives merged live events. Errors are logged, never surfaced.
type Recorder interface {
	RecordWave(mountID uuid.UUID, ev *contracts.WavePortalNewWave) error
	RecordVote(mountID uuid.UUID, ev *contracts.PetVoteNewVote) error
}

// Options carries the ambient dependencies of a screen mount.
type Options struct {
	Log      *logger.Logger
	Alert    Alerter
	Recorder Recorder
	// Buffer is the capacity of the live event channel.
	Buffer int
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = logger.Discard()
	}
	if o.Alert == nil {
		o.Alert = nopAlerter{}
	}
	if o.Buffer <= 0 {
		o.Buffer = defaultBuffer
	}
	return o
}

// eventKey identifies a log across the snapshot and live paths.
type eventKey struct {
	tx    common.Hash
	index uint
}

// engine runs the per-mount protocol shared by both screens: subscribe,
// read the head block, bulk read pinned at that block, then merge every
// event mined after it exactly once.
type engine[V any, E any] struct {
	name string
	id   uuid.UUID
	log  *logger.Logger

	watch  func(*bind.WatchOpts, chan<- E) (event.Subscription, error)
	head   func(context.Context) (uint64, error)
	load   func(context.Context, uint64) (V, error)
	apply  func(*V, E) error
	raw    func(E) types.Log
	record func(E) error
	buffer int

	mu       sync.Mutex
	state    V
	phase    Phase
	err      error
	liveErr  error
	snapshot uint64
	pending  []E
	seen     map[eventKey]struct{}
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	sub      event.Subscription

	changes chan struct{}
}

func newEngine[V any, E any](name string, opts Options) *engine[V, E] {
	id := uuid.New()
	return &engine[V, E]{
		name:    name,
		id:      id,
		log:     opts.Log.With("[" + name + "]").With("[" + id.String()[:8] + "]"),
		buffer:  opts.Buffer,
		seen:    make(map[eventKey]struct{}),
		changes: make(chan struct{}, 1),
	}
}

func (e *engine[V, E]) start(parent context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return fmt.Errorf("%s: %w", e.name, ErrStarted)
	}
	e.started = true
	ctx, cancel := context.WithCancel(parent)
	e.cancel = cancel
	e.phase = PhaseLoading
	e.mu.Unlock()

	e.notify()
	go e.run(ctx)
	return nil
}

func (e *engine[V, E]) run(ctx context.Context) {
	sink := make(chan E, e.buffer)
	sub, err := e.watch(&bind.WatchOpts{Context: ctx}, sink)
	if err != nil {
		e.fail(err)
		return
	}
	if !e.attach(sub) {
		sub.Unsubscribe()
		return
	}
	go e.pump(ctx, sink, sub)

	head, err := e.head(ctx)
	if err != nil {
		e.fail(err)
		return
	}
	e.log.Printf("loading snapshot at block %d", head)
	v, err := e.load(ctx, head)
	if err != nil {
		e.fail(err)
		return
	}
	e.settle(v, head)
}

func (e *engine[V, E]) attach(sub event.Subscription) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return false
	}
	e.sub = sub
	return true
}

func (e *engine[V, E]) pump(ctx context.Context, sink <-chan E, sub event.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sink:
			e.handle(ev)
		case err, ok := <-sub.Err():
			if ok && err != nil {
				e.lose(sub, err)
			}
			return
		}
	}
}

func (e *engine[V, E]) handle(ev E) {
	l := e.raw(ev)
	if l.Removed {
		e.log.Printf("ignoring removed log tx=%s", l.TxHash.Hex())
		return
	}

	e.mu.Lock()
	switch {
	case e.stopped || e.phase == PhaseFailed:
		e.mu.Unlock()
		return
	case e.phase != PhaseReady:
		e.pending = append(e.pending, ev)
		e.mu.Unlock()
		return
	}
	merged := e.mergeLocked(ev)
	e.mu.Unlock()

	if merged {
		e.notify()
		e.archive(ev)
	}
}

// mergeLocked applies ev unless the snapshot already contains it or it was
// merged before. e.mu must be held.
func (e *engine[V, E]) mergeLocked(ev E) bool {
	l := e.raw(ev)
	if l.BlockNumber <= e.snapshot {
		e.log.Printf("skip tx=%s at block %d, covered by snapshot", l.TxHash.Hex(), l.BlockNumber)
		return false
	}
	k := eventKey{tx: l.TxHash, index: l.Index}
	if _, dup := e.seen[k]; dup {
		e.log.Printf("skip duplicate tx=%s index=%d", l.TxHash.Hex(), l.Index)
		return false
	}
	e.seen[k] = struct{}{}
	return e.safeApply(ev, l)
}

func (e *engine[V, E]) safeApply(ev E, l types.Log) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("dropped event tx=%s: panic: %v", l.TxHash.Hex(), r)
			ok = false
		}
	}()
	if err := e.apply(&e.state, ev); err != nil {
		e.log.Errorf("dropped event tx=%s: %v", l.TxHash.Hex(), err)
		return false
	}
	return true
}

func (e *engine[V, E]) settle(v V, head uint64) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		e.log.Printf("discarding snapshot read after teardown")
		return
	}
	e.state = v
	e.snapshot = head
	e.phase = PhaseReady
	var merged []E
	for _, ev := range e.pending {
		if e.mergeLocked(ev) {
			merged = append(merged, ev)
		}
	}
	e.pending = nil
	e.mu.Unlock()

	e.log.Printf("ready, %d buffered events merged", len(merged))
	e.notify()
	for _, ev := range merged {
		e.archive(ev)
	}
}

func (e *engine[V, E]) fail(err error) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.phase = PhaseFailed
	e.err = err
	e.pending = nil
	sub := e.sub
	e.sub = nil
	e.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	e.log.Errorf("%s load failed: %v", e.name, err)
	e.notify()
}

func (e *engine[V, E]) lose(sub event.Subscription, err error) {
	e.mu.Lock()
	if e.stopped || e.sub != sub {
		e.mu.Unlock()
		return
	}
	e.liveErr = err
	e.sub = nil
	e.mu.Unlock()

	e.log.Errorf("%s live updates lost: %v", e.name, err)
	e.notify()
}

func (e *engine[V, E]) stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	sub, cancel := e.sub, e.cancel
	e.sub = nil
	e.pending = nil
	e.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	e.log.Printf("stopped")
}

func (e *engine[V, E]) archive(ev E) {
	if e.record == nil {
		return
	}
	if err := e.record(ev); err != nil {
		e.log.Errorf("archive: %v", err)
	}
}

func (e *engine[V, E]) notify() {
	select {
	case e.changes <- struct{}{}:
	default:
	}
}

// status is the shared part of every screen view.
type status struct {
	Phase   Phase
	Err     error
	Live    bool
	LiveErr error
}

func (e *engine[V, E]) statusLocked() status {
	return status{
		Phase:   e.phase,
		Err:     e.err,
		Live:    e.sub != nil,
		LiveErr: e.liveErr,
	}
}
