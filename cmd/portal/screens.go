package main

import (
	"fmt"
	"math/big"

	"dapp-portal/internal/config"
	"dapp-portal/internal/contracts"
	"dapp-portal/internal/screen"
	"dapp-portal/internal/viewmodel"
	"dapp-portal/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
)

// screenBuilder binds a fresh contract handle for every mount, signed by the
// account connected at mount time.
type screenBuilder struct {
	cfg     config.Config
	chainID *big.Int
	wallet  *wallet.Manager
	factory *contracts.Factory
	greet   *contracts.Schema
	pets    *contracts.Schema
	opts    viewmodel.Options
}

func (b screenBuilder) bind(address string, schema *contracts.Schema) *contracts.Lazy[*contracts.Handle] {
	return contracts.NewLazy(func() (*contracts.Handle, error) {
		if !common.IsHexAddress(address) {
			return nil, fmt.Errorf("invalid %s contract address %q", schema.Name, address)
		}
		signer, err := b.wallet.Signer(b.chainID)
		if err != nil {
			return nil, err
		}
		return b.factory.Bind(common.HexToAddress(address), schema, signer)
	})
}

// Build implements screen.Builder.
func (b screenBuilder) Build(s screen.Screen) (screen.Mount, error) {
	switch s {
	case screen.Greet:
		h, err := b.bind(b.cfg.GreetAddress, b.greet).Get()
		if err != nil {
			return nil, err
		}
		return viewmodel.NewGreet(contracts.NewWavePortal(h), b.opts), nil
	case screen.Pets:
		h, err := b.bind(b.cfg.PetAddress, b.pets).Get()
		if err != nil {
			return nil, err
		}
		return viewmodel.NewPets(contracts.NewPetVote(h), b.opts), nil
	}
	return nil, fmt.Errorf("no mount for screen %s", s)
}
