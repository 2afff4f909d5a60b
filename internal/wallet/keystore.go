package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
)

// PassphraseFunc returns the passphrase for acc, or an error to refuse.
type PassphraseFunc func(acc accounts.Account) (string, error)

// StaticPassphrase always answers with pass.
func StaticPassphrase(pass string) PassphraseFunc {
	return func(accounts.Account) (string, error) { return pass, nil }
}

// KeystoreProvider serves accounts from an encrypted key directory. Unlocked
// accounts count as authorized; prompting unlocks one.
type KeystoreProvider struct {
	ks         *keystore.KeyStore
	preferred  common.Address
	passphrase PassphraseFunc
}

// NewKeystoreProvider opens dir with standard scrypt parameters.
func NewKeystoreProvider(dir, preferred string, passphrase PassphraseFunc) *KeystoreProvider {
	ks := keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)
	return NewKeystoreProviderFrom(ks, preferred, passphrase)
}

// NewKeystoreProviderFrom wraps an already opened keystore.
func NewKeystoreProviderFrom(ks *keystore.KeyStore, preferred string, passphrase PassphraseFunc) *KeystoreProvider {
	p := &KeystoreProvider{ks: ks, passphrase: passphrase}
	if preferred != "" && common.IsHexAddress(preferred) {
		p.preferred = common.HexToAddress(preferred)
	}
	return p
}

func (p *KeystoreProvider) Present() bool {
	return p.ks != nil
}

func (p *KeystoreProvider) RequestAccounts(ctx context.Context, mode Mode) ([]common.Address, error) {
	if !p.Present() {
		return nil, ErrNoWallet
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mode == ModeSilent {
		return p.unlocked(), nil
	}

	acc, err := p.pick()
	if err != nil {
		return nil, err
	}
	if p.passphrase == nil {
		return nil, fmt.Errorf("unlock %s: no passphrase source: %w", acc.Address.Hex(), ErrRejected)
	}
	pass, err := p.passphrase(acc)
	if err != nil {
		return nil, fmt.Errorf("unlock %s: %v: %w", acc.Address.Hex(), err, ErrRejected)
	}
	if err := p.ks.Unlock(acc, pass); err != nil {
		return nil, fmt.Errorf("unlock %s: %v: %w", acc.Address.Hex(), err, ErrRejected)
	}
	return []common.Address{acc.Address}, nil
}

func (p *KeystoreProvider) Transactor(account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	if !p.Present() {
		return nil, ErrNoWallet
	}
	if !p.ks.HasAddress(account) {
		return nil, fmt.Errorf("account %s: %w", account.Hex(), ErrNoAccounts)
	}
	return bind.NewKeyStoreTransactorWithChainID(p.ks, accounts.Account{Address: account}, chainID)
}

// unlocked returns unlocked accounts, preferred first.
func (p *KeystoreProvider) unlocked() []common.Address {
	var out []common.Address
	for _, w := range p.ks.Wallets() {
		status, _ := w.Status()
		if !strings.EqualFold(status, "Unlocked") {
			continue
		}
		for _, acc := range w.Accounts() {
			if acc.Address == p.preferred {
				out = append([]common.Address{acc.Address}, out...)
				continue
			}
			out = append(out, acc.Address)
		}
	}
	return out
}

func (p *KeystoreProvider) pick() (accounts.Account, error) {
	all := p.ks.Accounts()
	if len(all) == 0 {
		return accounts.Account{}, ErrNoAccounts
	}
	if p.preferred == (common.Address{}) {
		return all[0], nil
	}
	for _, acc := range all {
		if acc.Address == p.preferred {
			return acc, nil
		}
	}
	return accounts.Account{}, fmt.Errorf("account %s: %w", p.preferred.Hex(), ErrNoAccounts)
}
