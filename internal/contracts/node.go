package contracts

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	// DefaultMaxDialRetries is the number of attempts to reach the node.
	DefaultMaxDialRetries = 5
	dialRetryDelay        = time.Second
)

// Dial connects to the node at uri, retrying up to DefaultMaxDialRetries times.
func Dial(ctx context.Context, uri string) (client *ethclient.Client, err error) {
	for i := 0; i < DefaultMaxDialRetries; i++ {
		if client, err = ethclient.DialContext(ctx, uri); err == nil {
			return client, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dialRetryDelay):
		}
	}
	return nil, fmt.Errorf("error dialing web3 provider uri '%s': %w", uri, err)
}

// ChainIDReader is the subset of the node client used to discover the chain.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// ResolveChainID returns configured when non-zero, otherwise asks the node.
func ResolveChainID(ctx context.Context, node ChainIDReader, configured uint64) (*big.Int, error) {
	if configured != 0 {
		return new(big.Int).SetUint64(configured), nil
	}
	id, err := node.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting the chainID from the web3 provider: %w", err)
	}
	return id, nil
}
