package contracts

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	qt "github.com/frankban/quicktest"
)

func TestWavePortalReads(t *testing.T) {
	c := qt.New(t)
	schema, err := WavePortalSchema("")
	c.Assert(err, qt.IsNil)
	backend := newFakeBackend(schema)
	alice := common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	backend.results[methodGetTotalWaves] = []interface{}{big.NewInt(2)}
	backend.results[methodGetAllWaves] = []interface{}{[]Wave{
		{Waver: alice, Message: "gm", Timestamp: big.NewInt(1700000000)},
		{Waver: alice, Message: "gn", Timestamp: big.NewInt(1700000060)},
	}}
	wp := NewWavePortal(bindTest(c, schema, backend))

	opts := wp.CallOpts(context.Background(), 12, true)
	total, err := wp.GetTotalWaves(opts)
	c.Assert(err, qt.IsNil)
	c.Assert(total.Int64(), qt.Equals, int64(2))

	waves, err := wp.GetAllWaves(opts)
	c.Assert(err, qt.IsNil)
	c.Assert(waves, qt.HasLen, 2)
	c.Assert(waves[0].Waver, qt.Equals, alice)
	c.Assert(waves[1].Message, qt.Equals, "gn")
	c.Assert(waves[1].Timestamp.Int64(), qt.Equals, int64(1700000060))

	// both reads went out pinned, from the signer
	c.Assert(backend.blocks, qt.HasLen, 2)
	for i, b := range backend.blocks {
		c.Assert(b.Uint64(), qt.Equals, uint64(12))
		c.Assert(backend.calls[i].From, qt.Equals, wp.From())
	}
}

func TestWavePortalReadFailure(t *testing.T) {
	c := qt.New(t)
	schema, err := WavePortalSchema("")
	c.Assert(err, qt.IsNil)
	backend := newFakeBackend(schema)
	boom := errors.New("boom")
	backend.failing[methodGetTotalWaves] = boom
	wp := NewWavePortal(bindTest(c, schema, backend))

	_, err = wp.GetTotalWaves(nil)
	c.Assert(err, qt.ErrorIs, boom)
	c.Assert(err, qt.ErrorMatches, "WavePortal.getTotalWaves: boom")
}

func TestWavePortalWaveUsesGasLimit(t *testing.T) {
	c := qt.New(t)
	schema, err := WavePortalSchema("")
	c.Assert(err, qt.IsNil)
	backend := newFakeBackend(schema)
	wp := NewWavePortal(bindTest(c, schema, backend))

	tx, err := wp.Wave(context.Background(), "hello there")
	c.Assert(err, qt.IsNil)
	c.Assert(tx.Gas(), qt.Equals, uint64(testGasLimit))
	c.Assert(*tx.To(), qt.Equals, wp.Address())

	sent := backend.sentTxs()
	c.Assert(sent, qt.HasLen, 1)
	args, err := schema.ABI.Methods[methodWave].Inputs.Unpack(sent[0].Data()[4:])
	c.Assert(err, qt.IsNil)
	c.Assert(args, qt.DeepEquals, []interface{}{"hello there"})
}

func newWaveLog(c *qt.C, schema *Schema, from common.Address, ts int64, msg string, block uint64, idx uint) types.Log {
	ev := schema.ABI.Events[eventNewWave]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(ts), msg)
	c.Assert(err, qt.IsNil)
	return types.Log{
		Topics:      []common.Hash{ev.ID, common.BytesToHash(from.Bytes())},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BigToHash(big.NewInt(int64(block*1000) + int64(idx))),
		Index:       idx,
	}
}

func TestWatchNewWave(t *testing.T) {
	c := qt.New(t)
	schema, err := WavePortalSchema("")
	c.Assert(err, qt.IsNil)
	backend := newFakeBackend(schema)
	wp := NewWavePortal(bindTest(c, schema, backend))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := uint64(8)
	sink := make(chan *WavePortalNewWave, 4)
	sub, err := wp.WatchNewWave(&bind.WatchOpts{Context: ctx, Start: &start}, sink)
	c.Assert(err, qt.IsNil)
	defer sub.Unsubscribe()
	c.Assert(backend.query.FromBlock.Uint64(), qt.Equals, start)

	bob := common.HexToAddress("0x0000000000000000000000000000000000000b0b")

	// a log with the wrong signature is dropped, the stream continues
	bad := newWaveLog(c, schema, bob, 1, "x", 9, 0)
	bad.Topics[0] = common.HexToHash("0x01")
	backend.push(bad)
	backend.push(newWaveLog(c, schema, bob, 1700000000, "hey", 9, 1))

	select {
	case ev := <-sink:
		c.Assert(ev.From, qt.Equals, bob)
		c.Assert(ev.Message, qt.Equals, "hey")
		c.Assert(ev.Timestamp.Int64(), qt.Equals, int64(1700000000))
		c.Assert(ev.Raw.BlockNumber, qt.Equals, uint64(9))
		c.Assert(ev.Raw.Index, qt.Equals, uint(1))
	case <-ctx.Done():
		c.Fatal("timed out waiting for NewWave")
	}
}
