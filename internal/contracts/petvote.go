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

// PetVoteName is the schema name of the pet voting contract.
const PetVoteName = "PetVote"

const (
	methodGetOptions     = "getOptions"
	methodGetVoteHistory = "getVoteHistory"
	methodAlreadyVoted   = "alreadyVoted"
	methodVote           = "vote"
	eventNewVote         = "NewVote"
)

// Option mirrors the PetVote.Option tuple.
type Option struct {
	PetName   string
	VoteCount *big.Int
}

// Vote mirrors the PetVote.Vote tuple.
type Vote struct {
	Voter  common.Address
	Reason string
	Vote   string
}

// PetVoteNewVote is a decoded NewVote log.
type PetVoteNewVote struct {
	From      common.Address
	Timestamp *big.Int
	Reason    string
	PetName   string
	Raw       types.Log
}

// PetVote is the typed view over a PetVote handle.
type PetVote struct {
	*Handle
}

// NewPetVote wraps h, which must be bound with the PetVote schema.
func NewPetVote(h *Handle) *PetVote {
	return &PetVote{Handle: h}
}

// GetOptions reads the pet options with their tallies.
func (p *PetVote) GetOptions(opts *bind.CallOpts) ([]Option, error) {
	out, err := p.call(opts, methodGetOptions)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]Option)).(*[]Option), nil
}

// GetVoteHistory reads every vote cast so far.
func (p *PetVote) GetVoteHistory(opts *bind.CallOpts) ([]Vote, error) {
	out, err := p.call(opts, methodGetVoteHistory)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]Vote)).(*[]Vote), nil
}

// AlreadyVoted reports whether opts.From has voted.
func (p *PetVote) AlreadyVoted(opts *bind.CallOpts) (bool, error) {
	out, err := p.call(opts, methodAlreadyVoted)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// Vote casts a vote for pet with the given reason.
func (p *PetVote) Vote(ctx context.Context, pet, reason string) (*types.Transaction, error) {
	return p.transact(ctx, methodVote, pet, reason)
}

// WatchNewVote streams NewVote events to sink until the subscription ends.
func (p *PetVote) WatchNewVote(opts *bind.WatchOpts, sink chan<- *PetVoteNewVote) (event.Subscription, error) {
	return watchEvent(p.Handle, opts, eventNewVote, sink, func(l types.Log) (*PetVoteNewVote, error) {
		ev := new(PetVoteNewVote)
		if err := p.contract.UnpackLog(ev, eventNewVote, l); err != nil {
			return nil, err
		}
		ev.Raw = l
		return ev, nil
	})
}
