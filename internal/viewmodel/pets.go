package viewmodel

import (
	"context"
	"errors"
	"fmt"

	"dapp-portal/internal/contracts"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
)

// ErrAlreadyVoted is returned once the account has voted or tried to.
var ErrAlreadyVoted = errors.New("already voted")

// PetSource is the PetVote surface the Pets screen uses.
type PetSource interface {
	Head(ctx context.Context) (uint64, error)
	CallOpts(ctx context.Context, block uint64, pinned bool) *bind.CallOpts
	GetOptions(opts *bind.CallOpts) ([]contracts.Option, error)
	GetVoteHistory(opts *bind.CallOpts) ([]contracts.Vote, error)
	AlreadyVoted(opts *bind.CallOpts) (bool, error)
	WatchNewVote(opts *bind.WatchOpts, sink chan<- *contracts.PetVoteNewVote) (event.Subscription, error)
	Vote(ctx context.Context, pet, reason string) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// VoteOption is a pet with its tally.
type VoteOption struct {
	Pet   string
	Votes int
}

// VoteRecord is one cast vote as displayed.
type VoteRecord struct {
	Address common.Address
	Pet     string
	Reason  string
}

// PetsView is a copy of the Pets screen state.
type PetsView struct {
	Phase        Phase
	Err          error
	Live         bool
	LiveErr      error
	MountID      uuid.UUID
	Options      []VoteOption
	Votes        []VoteRecord
	AlreadyVoted bool
	Mining       bool
}

type petsState struct {
	options []VoteOption
	votes   []VoteRecord
	voted   bool
}

// Pets synchronizes one mount of the PetVote screen.
type Pets struct {
	src    PetSource
	eng    *engine[petsState, *contracts.PetVoteNewVote]
	sub    *Submitter
	guard  VoteGuard
	Reason Input
}

// NewPets prepares a mount over src. Nothing happens until Start.
func NewPets(src PetSource, opts Options) *Pets {
	opts = opts.withDefaults()
	p := &Pets{src: src}
	eng := newEngine[petsState, *contracts.PetVoteNewVote]("pets", opts)
	eng.watch = src.WatchNewVote
	eng.head = src.Head
	eng.load = p.load
	eng.apply = applyVote
	eng.raw = func(ev *contracts.PetVoteNewVote) types.Log { return ev.Raw }
	if opts.Recorder != nil {
		eng.record = func(ev *contracts.PetVoteNewVote) error {
			return opts.Recorder.RecordVote(eng.id, ev)
		}
	}
	p.eng = eng
	p.sub = NewSubmitter("vote", src, opts.Alert, eng.log, eng.notify)
	return p
}

// Start begins loading and subscribes to NewVote.
func (p *Pets) Start(ctx context.Context) error { return p.eng.start(ctx) }

// Stop releases the subscription. Reads still in flight are discarded.
func (p *Pets) Stop() { p.eng.stop() }

// Changes signals after every state change. Signals coalesce.
func (p *Pets) Changes() <-chan struct{} { return p.eng.changes }

// MountID identifies this mount in logs and the archive.
func (p *Pets) MountID() uuid.UUID { return p.eng.id }

// Guard exposes the local voting lock.
func (p *Pets) Guard() *VoteGuard { return &p.guard }

// AlreadyVoted combines the remote flag with local attempts.
func (p *Pets) AlreadyVoted() bool {
	p.eng.mu.Lock()
	remote := p.eng.state.voted
	p.eng.mu.Unlock()
	return remote || p.guard.Attempted()
}

// CanVote reports whether the vote buttons are enabled.
func (p *Pets) CanVote() bool {
	return !p.AlreadyVoted() && p.sub.CanSubmit(&p.Reason)
}

// Vote casts a vote for pet with the current reason and blocks until
// settled. The attempt locks voting even when it fails.
func (p *Pets) Vote(ctx context.Context, pet string) error {
	if p.AlreadyVoted() {
		return ErrAlreadyVoted
	}
	send := func(ctx context.Context, reason string) (*types.Transaction, error) {
		return p.src.Vote(ctx, pet, reason)
	}
	if err := p.sub.Submit(ctx, &p.Reason, send, p.guard.MarkAttempted); err != nil {
		return err
	}
	p.guard.MarkConfirmed()
	return nil
}

func (p *Pets) View() PetsView {
	e := p.eng
	e.mu.Lock()
	st := e.statusLocked()
	v := PetsView{
		Phase:        st.Phase,
		Err:          st.Err,
		Live:         st.Live,
		LiveErr:      st.LiveErr,
		MountID:      e.id,
		Options:      append([]VoteOption(nil), e.state.options...),
		Votes:        append([]VoteRecord(nil), e.state.votes...),
		AlreadyVoted: e.state.voted,
	}
	e.mu.Unlock()
	v.AlreadyVoted = v.AlreadyVoted || p.guard.Attempted()
	v.Mining = p.sub.Mining()
	return v
}

// load reads options, history and the voted flag in that order, pinned
// at block.
func (p *Pets) load(ctx context.Context, block uint64) (petsState, error) {
	opts := p.src.CallOpts(ctx, block, true)
	raw, err := p.src.GetOptions(opts)
	if err != nil {
		return petsState{}, err
	}
	options := make([]VoteOption, 0, len(raw))
	for _, o := range raw {
		n, err := contracts.ToInt(o.VoteCount)
		if err != nil {
			return petsState{}, fmt.Errorf("%s vote count: %w", o.PetName, err)
		}
		options = append(options, VoteOption{Pet: o.PetName, Votes: n})
	}
	history, err := p.src.GetVoteHistory(opts)
	if err != nil {
		return petsState{}, err
	}
	votes := make([]VoteRecord, 0, len(history))
	for _, h := range history {
		votes = append(votes, VoteRecord{Address: h.Voter, Pet: h.Vote, Reason: h.Reason})
	}
	voted, err := p.src.AlreadyVoted(opts)
	if err != nil {
		return petsState{}, err
	}
	return petsState{options: options, votes: votes, voted: voted}, nil
}

func applyVote(st *petsState, ev *contracts.PetVoteNewVote) error {
	st.votes = append(st.votes, VoteRecord{Address: ev.From, Pet: ev.PetName, Reason: ev.Reason})
	for i := range st.options {
		if st.options[i].Pet == ev.PetName {
			st.options[i].Votes++
			break
		}
	}
	return nil
}
