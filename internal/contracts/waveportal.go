package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// WavePortalName is the schema name of the greeting contract.
const WavePortalName = "WavePortal"

const (
	methodGetTotalWaves = "getTotalWaves"
	methodGetAllWaves   = "getAllWaves"
	methodWave          = "wave"
	eventNewWave        = "NewWave"
)

// Wave mirrors the WavePortal.Wave tuple.
type Wave struct {
	Waver     common.Address
	Message   string
	Timestamp *big.Int
}

// WavePortalNewWave is a decoded NewWave log.
type WavePortalNewWave struct {
	From      common.Address
	Timestamp *big.Int
	Message   string
	Raw       types.Log
}

// WavePortal is the typed view over a WavePortal handle.
type WavePortal struct {
	*Handle
}

// NewWavePortal wraps h, which must be bound with the WavePortal schema.
func NewWavePortal(h *Handle) *WavePortal {
	return &WavePortal{Handle: h}
}

// GetTotalWaves reads the wave counter.
func (w *WavePortal) GetTotalWaves(opts *bind.CallOpts) (*big.Int, error) {
	out, err := w.call(opts, methodGetTotalWaves)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// GetAllWaves reads the full wave list in contract order.
func (w *WavePortal) GetAllWaves(opts *bind.CallOpts) ([]Wave, error) {
	out, err := w.call(opts, methodGetAllWaves)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]Wave)).(*[]Wave), nil
}

// Wave sends a greeting.
func (w *WavePortal) Wave(ctx context.Context, message string) (*types.Transaction, error) {
	return w.transact(ctx, methodWave, message)
}

// WatchNewWave streams NewWave events to sink until the subscription ends.
func (w *WavePortal) WatchNewWave(opts *bind.WatchOpts, sink chan<- *WavePortalNewWave) (event.Subscription, error) {
	return watchEvent(w.Handle, opts, eventNewWave, sink, func(l types.Log) (*WavePortalNewWave, error) {
		ev := new(WavePortalNewWave)
		if err := w.contract.UnpackLog(ev, eventNewWave, l); err != nil {
			return nil, err
		}
		ev.Raw = l
		return ev, nil
	})
}
