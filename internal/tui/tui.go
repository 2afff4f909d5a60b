// Package tui is the terminal front-end: wallet connection, the screen menu
// and the Greet and PetVote screens.
package tui

import (
	"context"
	"errors"

	"dapp-portal/internal/logger"
	"dapp-portal/internal/screen"
	"dapp-portal/internal/viewmodel"
	"dapp-portal/internal/wallet"

	tea "github.com/charmbracelet/bubbletea"
)

// alertBuffer bounds queued alerts. All alerts of one flow carry the same
// text, so dropping extras loses nothing.
const alertBuffer = 8

// AlertQueue delivers blocking alerts from any goroutine to the UI.
type AlertQueue struct {
	ch chan string
}

func NewAlertQueue() *AlertQueue {
	return &AlertQueue{ch: make(chan string, alertBuffer)}
}

func (q *AlertQueue) Alert(msg string) {
	select {
	case q.ch <- msg:
	default:
	}
}

// Options wires the model to the rest of the portal.
type Options struct {
	Wallet   *wallet.Manager
	Selector *screen.Selector
	Alerts   *AlertQueue
	Chain    string
	Log      *logger.Logger
}

type walletReadyMsg struct{}

type connectedMsg struct{ ok bool }

type alertMsg struct{ text string }

// changedMsg reports a state change of mount.
type changedMsg struct{ mount screen.Mount }

type submittedMsg struct{ err error }

// changer is implemented by both feature screens.
type changer interface {
	Changes() <-chan struct{}
}

// Model holds the TUI state
type Model struct {
	ctx      context.Context
	wallet   *wallet.Manager
	selector *screen.Selector
	alerts   *AlertQueue
	chain    string
	log      *logger.Logger

	width      int
	height     int
	alert      string
	connecting bool
	selected   int
	scroll     int
	done       chan struct{}
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Alerts == nil {
		opts.Alerts = NewAlertQueue()
	}
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	return Model{
		ctx:      ctx,
		wallet:   opts.Wallet,
		selector: opts.Selector,
		alerts:   opts.Alerts,
		chain:    opts.Chain,
		log:      opts.Log.With("[tui]"),
	}
}

// Init runs wallet detection and starts listening for alerts.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initWallet(), waitAlert(m.alerts))
}

func (m Model) initWallet() tea.Cmd {
	ctx, w := m.ctx, m.wallet
	return func() tea.Msg {
		w.Init(ctx)
		return walletReadyMsg{}
	}
}

func (m Model) connect() tea.Cmd {
	ctx, w := m.ctx, m.wallet
	return func() tea.Msg {
		_, ok := w.RequestConnection(ctx)
		return connectedMsg{ok: ok}
	}
}

func waitAlert(q *AlertQueue) tea.Cmd {
	return func() tea.Msg {
		return alertMsg{text: <-q.ch}
	}
}

func waitChange(mount screen.Mount, done <-chan struct{}) tea.Cmd {
	c, ok := mount.(changer)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-c.Changes():
			return changedMsg{mount: mount}
		case <-done:
			return nil
		}
	}
}

func (m Model) connected() bool {
	_, ok := m.wallet.Account()
	return ok
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case walletReadyMsg:
		return m, nil

	case connectedMsg:
		m.connecting = false
		return m, nil

	case alertMsg:
		m.alert = msg.text
		return m, waitAlert(m.alerts)

	case changedMsg:
		if msg.mount != m.selector.Mounted() {
			return m, nil
		}
		return m, waitChange(msg.mount, m.done)

	case submittedMsg:
		if msg.err != nil && !errors.Is(msg.err, viewmodel.ErrBusy) {
			m.log.Printf("submission ended: %v", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.alert != "" {
		// the alert blocks everything else until acknowledged
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			m.alert = ""
		}
		return m, nil
	}
	if !m.wallet.Detected() {
		return m, nil
	}

	switch {
	case !m.wallet.Present():
		if msg.String() == "q" {
			return m.quit()
		}
		return m, nil
	case !m.connected():
		switch msg.String() {
		case "q":
			return m.quit()
		case "c", "enter":
			if m.connecting {
				return m, nil
			}
			m.connecting = true
			return m, m.connect()
		}
		return m, nil
	}

	switch mounted := m.selector.Mounted().(type) {
	case *viewmodel.Greet:
		return m.greetKey(mounted, msg)
	case *viewmodel.Pets:
		return m.petsKey(mounted, msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "g":
		return m.open(screen.Greet)
	case "p":
		return m.open(screen.Pets)
	}
	return m, nil
}

func (m Model) open(s screen.Screen) (tea.Model, tea.Cmd) {
	mount, err := m.selector.Select(s)
	if err != nil {
		m.log.Errorf("open %s: %v", s, err)
		m.alert = "Could not open " + s.String() + ": " + err.Error()
		return m, nil
	}
	m.done = make(chan struct{})
	m.selected, m.scroll = 0, 0
	return m, waitChange(mount, m.done)
}

func (m Model) back() (tea.Model, tea.Cmd) {
	if _, err := m.selector.Select(screen.None); err != nil {
		m.log.Errorf("back: %v", err)
	}
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.selector.Close()
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	return m, tea.Quit
}

// edit applies a text editing key to in.
func edit(in *viewmodel.Input, msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		in.Set(in.Value() + string(msg.Runes))
	case tea.KeySpace:
		in.Set(in.Value() + " ")
	case tea.KeyBackspace:
		r := []rune(in.Value())
		if len(r) > 0 {
			in.Set(string(r[:len(r)-1]))
		}
	}
}

func (m Model) greetKey(g *viewmodel.Greet, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.back()
	case tea.KeyEnter:
		if !g.CanSubmit() {
			return m, nil
		}
		ctx := m.ctx
		return m, func() tea.Msg { return submittedMsg{err: g.Submit(ctx)} }
	case tea.KeyUp, tea.KeyPgUp:
		if m.scroll > 0 {
			m.scroll--
		}
		return m, nil
	case tea.KeyDown, tea.KeyPgDown:
		m.scroll++
		return m, nil
	}
	edit(&g.Message, msg)
	return m, nil
}

func (m Model) petsKey(p *viewmodel.Pets, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := p.View().Options
	switch msg.Type {
	case tea.KeyEsc:
		return m.back()
	case tea.KeyTab, tea.KeyRight:
		if len(options) > 0 {
			m.selected = (m.selected + 1) % len(options)
		}
		return m, nil
	case tea.KeyShiftTab, tea.KeyLeft:
		if len(options) > 0 {
			m.selected = (m.selected - 1 + len(options)) % len(options)
		}
		return m, nil
	case tea.KeyUp, tea.KeyPgUp:
		if m.scroll > 0 {
			m.scroll--
		}
		return m, nil
	case tea.KeyDown, tea.KeyPgDown:
		m.scroll++
		return m, nil
	case tea.KeyEnter:
		if !p.CanVote() || m.selected >= len(options) {
			return m, nil
		}
		ctx, pet := m.ctx, options[m.selected].Pet
		return m, func() tea.Msg { return submittedMsg{err: p.Vote(ctx, pet)} }
	}
	if !p.AlreadyVoted() {
		edit(&p.Reason, msg)
	}
	return m, nil
}

// Run starts the TUI program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.selector.Close()
	}
	return err
}
