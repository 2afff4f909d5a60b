package contracts

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"dapp-portal/internal/logger"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// ErrNoSigner is returned when a contract is bound without a transactor.
var ErrNoSigner = errors.New("no signer available")

// Backend is everything a bound contract needs from the node: reads, writes,
// log subscriptions, receipts and the head block number.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Factory builds contract handles against one backend.
type Factory struct {
	backend  Backend
	gasLimit uint64
	timeout  time.Duration
	log      *logger.Logger
}

// NewFactory returns a factory attaching gasLimit to every write and
// bounding every read with timeout.
func NewFactory(backend Backend, gasLimit uint64, timeout time.Duration, log *logger.Logger) *Factory {
	if log == nil {
		log = logger.Discard()
	}
	return &Factory{backend: backend, gasLimit: gasLimit, timeout: timeout, log: log}
}

// Bind constructs a handle for the contract at address. No network call is
// made; the only failure is a missing signer.
func (f *Factory) Bind(address common.Address, schema *Schema, signer *bind.TransactOpts) (*Handle, error) {
	if signer == nil || signer.Signer == nil {
		return nil, fmt.Errorf("bind %s: %w", schema.Name, ErrNoSigner)
	}
	return &Handle{
		name:     schema.Name,
		address:  address,
		contract: bind.NewBoundContract(address, schema.ABI, f.backend, f.backend, f.backend),
		backend:  f.backend,
		signer:   signer,
		gasLimit: f.gasLimit,
		timeout:  f.timeout,
		log:      f.log.With("[" + schema.Name + "]"),
	}, nil
}

// Handle is an immutable binding of {backend, signer, address, schema}.
type Handle struct {
	name     string
	address  common.Address
	contract *bind.BoundContract
	backend  Backend
	signer   *bind.TransactOpts
	gasLimit uint64
	timeout  time.Duration
	log      *logger.Logger
}

// Name returns the contract name from the schema.
func (h *Handle) Name() string { return h.name }

// Address returns the deployed contract address.
func (h *Handle) Address() common.Address { return h.address }

// From returns the account that signs writes and is used as caller for reads.
func (h *Handle) From() common.Address { return h.signer.From }

// GasLimit returns the gas-limit hint attached to writes.
func (h *Handle) GasLimit() uint64 { return h.gasLimit }

// Head returns the current block number.
func (h *Handle) Head(ctx context.Context) (uint64, error) {
	ctx, cancel := h.withTimeout(ctx)
	defer cancel()
	n, err := h.backend.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s head block: %w", h.name, err)
	}
	return n, nil
}

// CallOpts returns read options pinned at block (nil means latest). The
// caller address is the signer so that msg.sender reads work.
func (h *Handle) CallOpts(ctx context.Context, block uint64, pinned bool) *bind.CallOpts {
	opts := &bind.CallOpts{Context: ctx, From: h.signer.From}
	if pinned {
		opts.BlockNumber = new(big.Int).SetUint64(block)
	}
	return opts
}

// WaitMined blocks until tx is included and returns its receipt.
func (h *Handle) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, h.backend, tx)
}

func (h *Handle) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func (h *Handle) call(opts *bind.CallOpts, method string, params ...interface{}) ([]interface{}, error) {
	if opts == nil {
		opts = &bind.CallOpts{From: h.signer.From}
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := h.withTimeout(parent)
	defer cancel()
	scoped := *opts
	scoped.Context = ctx

	var out []interface{}
	if err := h.contract.Call(&scoped, &out, method, params...); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", h.name, method, err)
	}
	return out, nil
}

func (h *Handle) transact(ctx context.Context, method string, params ...interface{}) (*types.Transaction, error) {
	opts := *h.signer
	opts.Context = ctx
	opts.GasLimit = h.gasLimit
	tx, err := h.contract.Transact(&opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", h.name, method, err)
	}
	h.log.Printf("Mining... %s tx=%s", method, tx.Hash().Hex())
	return tx, nil
}

// watchEvent subscribes to name and forwards decoded events to sink. Logs
// that fail to decode are logged and skipped.
func watchEvent[E any](h *Handle, opts *bind.WatchOpts, name string, sink chan<- *E, decode func(types.Log) (*E, error)) (event.Subscription, error) {
	logs, sub, err := h.contract.WatchLogs(opts, name)
	if err != nil {
		return nil, fmt.Errorf("watch %s.%s: %w", h.name, name, err)
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case l := <-logs:
				ev, err := decode(l)
				if err != nil {
					h.log.Errorf("drop %s log tx=%s: %v", name, l.TxHash.Hex(), err)
					continue
				}
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// Lazy builds a value at most once. Screens keep one per mount so the
// binding is never re-derived while mounted, even if the account changes.
type Lazy[T any] struct {
	once  sync.Once
	build func() (T, error)
	v     T
	err   error
}

// NewLazy returns a memo around build.
func NewLazy[T any](build func() (T, error)) *Lazy[T] {
	return &Lazy[T]{build: build}
}

// Get runs build on first use and returns the cached result afterwards.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.v, l.err = l.build()
	})
	return l.v, l.err
}
