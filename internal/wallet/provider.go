// Package wallet tracks the single account the portal acts for and the
// providers that can supply it.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoWallet is returned by providers that are not present.
	ErrNoWallet = errors.New("no wallet available")
	// ErrNoAccounts is returned when the wallet holds no usable account.
	ErrNoAccounts = errors.New("no accounts in wallet")
	// ErrRejected is returned when the user (or the wallet) refuses access.
	ErrRejected = errors.New("connection rejected")
)

// Mode selects how accounts are requested.
type Mode int

const (
	// ModeSilent returns already-authorized accounts without asking.
	ModeSilent Mode = iota
	// ModePrompt asks for permission and may unlock an account.
	ModePrompt
)

func (m Mode) String() string {
	if m == ModePrompt {
		return "prompt"
	}
	return "silent"
}

// Provider is a wallet capability injected into the Manager.
type Provider interface {
	Present() bool
	RequestAccounts(ctx context.Context, mode Mode) ([]common.Address, error)
	Transactor(account common.Address, chainID *big.Int) (*bind.TransactOpts, error)
}

// NoProvider models a missing wallet.
type NoProvider struct{}

func (NoProvider) Present() bool { return false }

func (NoProvider) RequestAccounts(context.Context, Mode) ([]common.Address, error) {
	return nil, ErrNoWallet
}

func (NoProvider) Transactor(common.Address, *big.Int) (*bind.TransactOpts, error) {
	return nil, ErrNoWallet
}
