package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ConfirmFunc approves or refuses exposing addr to the portal.
type ConfirmFunc func(addr common.Address) error

// KeyProvider serves a single raw private key. It is authorized up front
// or after the first successful prompt.
type KeyProvider struct {
	key     *ecdsa.PrivateKey
	address common.Address
	confirm ConfirmFunc

	mu         sync.Mutex
	authorized bool
}

// NewKeyProvider parses a hex encoded secp256k1 key.
func NewKeyProvider(hexKey string, authorized bool, confirm ConfirmFunc) (*KeyProvider, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &KeyProvider{
		key:        key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
		confirm:    confirm,
		authorized: authorized,
	}, nil
}

// Address returns the address derived from the key.
func (p *KeyProvider) Address() common.Address {
	return p.address
}

func (p *KeyProvider) Present() bool {
	return p.key != nil
}

func (p *KeyProvider) RequestAccounts(ctx context.Context, mode Mode) ([]common.Address, error) {
	if !p.Present() {
		return nil, ErrNoWallet
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if mode == ModeSilent {
		if !p.authorized {
			return nil, nil
		}
		return []common.Address{p.address}, nil
	}
	if p.confirm != nil {
		if err := p.confirm(p.address); err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrRejected)
		}
	}
	p.authorized = true
	return []common.Address{p.address}, nil
}

func (p *KeyProvider) Transactor(account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	if !p.Present() {
		return nil, ErrNoWallet
	}
	if account != p.address {
		return nil, fmt.Errorf("account %s: %w", account.Hex(), ErrNoAccounts)
	}
	return bind.NewKeyedTransactorWithChainID(p.key, chainID)
}
