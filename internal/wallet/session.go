package wallet

import (
	"context"
	"math/big"
	"sync"

	"dapp-portal/internal/logger"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ConnectFailedAlert is shown for every failed connection attempt.
const ConnectFailedAlert = "Something happened, try again!"

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(msg string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(msg string)

func (f AlertFunc) Alert(msg string) { f(msg) }

// Manager owns the current account. It is set by detection or an explicit
// connect and never cleared for the life of the process.
type Manager struct {
	provider Provider
	alert    Alerter
	log      *logger.Logger

	mu        sync.RWMutex
	present   bool
	detected  bool
	account   common.Address
	connected bool
}

// NewManager builds a session manager around provider. A nil provider is
// treated as an absent wallet.
func NewManager(provider Provider, alert Alerter, log *logger.Logger) *Manager {
	if provider == nil {
		provider = NoProvider{}
	}
	if alert == nil {
		alert = AlertFunc(func(string) {})
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{provider: provider, alert: alert, log: log.With("[wallet]")}
}

// Init runs detection followed by the silent account lookup.
func (m *Manager) Init(ctx context.Context) (common.Address, bool) {
	if !m.DetectWallet() {
		m.log.Printf("No wallet detected")
		return common.Address{}, false
	}
	return m.AuthorizedAccount(ctx)
}

// DetectWallet reports whether a wallet provider is present.
func (m *Manager) DetectWallet() bool {
	present := m.provider.Present()
	m.mu.Lock()
	m.present = present
	m.detected = true
	m.mu.Unlock()
	return present
}

// Present returns the last detection result.
func (m *Manager) Present() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.present
}

// Detected reports whether DetectWallet has run.
func (m *Manager) Detected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.detected
}

// AuthorizedAccount asks for already permitted accounts without prompting
// and adopts the first one.
func (m *Manager) AuthorizedAccount(ctx context.Context) (common.Address, bool) {
	accs, err := m.provider.RequestAccounts(ctx, ModeSilent)
	if err != nil {
		m.log.Printf("silent account lookup failed: %v", err)
		return common.Address{}, false
	}
	if len(accs) == 0 {
		m.log.Printf("No authorized account found")
		return common.Address{}, false
	}
	m.log.Printf("Found an authorized account: %s", accs[0].Hex())
	m.set(accs[0])
	return accs[0], true
}

// RequestConnection prompts for an account. Any failure raises the generic
// alert and leaves the current account untouched.
func (m *Manager) RequestConnection(ctx context.Context) (common.Address, bool) {
	accs, err := m.provider.RequestAccounts(ctx, ModePrompt)
	if err != nil {
		m.log.Errorf("connect failed: %v", err)
		m.alert.Alert(ConnectFailedAlert)
		return common.Address{}, false
	}
	if len(accs) == 0 {
		m.log.Printf("connect returned no account")
		return common.Address{}, false
	}
	m.log.Printf("Connected %s", accs[0].Hex())
	m.set(accs[0])
	return accs[0], true
}

// Account returns the current account, if any.
func (m *Manager) Account() (common.Address, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.account, m.connected
}

// Signer returns a transactor for the current account.
func (m *Manager) Signer(chainID *big.Int) (*bind.TransactOpts, error) {
	acc, ok := m.Account()
	if !ok {
		return nil, ErrNoAccounts
	}
	return m.provider.Transactor(acc, chainID)
}

func (m *Manager) set(acc common.Address) {
	m.mu.Lock()
	m.account = acc
	m.connected = true
	m.mu.Unlock()
}
