package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dapp-portal/internal/logger"

	"github.com/ethereum/go-ethereum/core/types"
)

// TxFailedAlert is shown for every failed or cancelled transaction.
const TxFailedAlert = "Oops, something happened, did you cancel the transaction?"

var (
	// ErrBusy is returned when a submission is already mining.
	ErrBusy = errors.New("transaction already mining")
	// ErrEmptyInput is returned when the form input is empty.
	ErrEmptyInput = errors.New("input is empty")
	// ErrReverted is returned for a mined transaction with failed status.
	ErrReverted = errors.New("transaction reverted")
)

// Input is a form field shared between the UI and a submitter.
type Input struct {
	mu    sync.Mutex
	value string
}

func (i *Input) Set(v string) {
	i.mu.Lock()
	i.value = v
	i.mu.Unlock()
}

func (i *Input) Value() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.value
}

func (i *Input) Clear() { i.Set("") }

// Miner waits for a transaction to be included.
type Miner interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// SendFunc issues the write call for the given form input.
type SendFunc func(ctx context.Context, input string) (*types.Transaction, error)

// Submitter owns the mining flag of one screen.
type Submitter struct {
	name   string
	miner  Miner
	alert  Alerter
	log    *logger.Logger
	notify func()

	mu     sync.Mutex
	mining bool
}

// NewSubmitter returns a submitter that waits on miner and reports
// failures through alert. notify is called whenever the flag flips.
func NewSubmitter(name string, miner Miner, alert Alerter, log *logger.Logger, notify func()) *Submitter {
	if alert == nil {
		alert = nopAlerter{}
	}
	if log == nil {
		log = logger.Discard()
	}
	if notify == nil {
		notify = func() {}
	}
	return &Submitter{name: name, miner: miner, alert: alert, log: log, notify: notify}
}

// Mining reports whether a submission is between send and settle.
func (s *Submitter) Mining() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mining
}

// CanSubmit mirrors the disabled state of the submit control.
func (s *Submitter) CanSubmit(input *Input) bool {
	return !s.Mining() && input.Value() != ""
}

// Submit sends the current input and waits for it to be mined. Every
// failure raises TxFailedAlert. Whatever the outcome, finally runs, the
// mining flag drops and the input is cleared, in that order.
func (s *Submitter) Submit(ctx context.Context, input *Input, send SendFunc, finally func()) error {
	value := input.Value()
	if value == "" {
		return ErrEmptyInput
	}
	s.mu.Lock()
	if s.mining {
		s.mu.Unlock()
		return ErrBusy
	}
	s.mining = true
	s.mu.Unlock()
	s.notify()

	defer func() {
		if finally != nil {
			finally()
		}
		s.mu.Lock()
		s.mining = false
		s.mu.Unlock()
		input.Clear()
		s.notify()
	}()

	if err := s.mine(ctx, value, send); err != nil {
		s.log.Errorf("%s submit failed: %v", s.name, err)
		s.alert.Alert(TxFailedAlert)
		return err
	}
	return nil
}

func (s *Submitter) mine(ctx context.Context, value string, send SendFunc) error {
	tx, err := send(ctx, value)
	if err != nil {
		return err
	}
	s.log.Printf("Mining... %s", tx.Hash().Hex())
	receipt, err := s.miner.WaitMined(ctx, tx)
	if err != nil {
		return fmt.Errorf("wait mined %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("tx %s: %w", tx.Hash().Hex(), ErrReverted)
	}
	s.log.Printf("Mined -- %s", tx.Hash().Hex())
	return nil
}
