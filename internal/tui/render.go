package tui

import (
	"fmt"
	"strings"
	"time"

	"dapp-portal/internal/viewmodel"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const maxCardWidth = 96

var (
	boldStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(1, 3)
)

func padToWidth(s string, width int) string {
	current := runewidth.StringWidth(s)
	if current >= width {
		return s
	}
	return s + strings.Repeat(" ", width-current)
}

// truncate cuts s to width display cells, marking the cut with "...".
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

func formatInfoLine(text string, width int) string {
	if width < 2 {
		return padToWidth(text, width)
	}
	return "│" + padToWidth(truncate(text, width-2), width-2) + "│"
}

// card draws lines inside a box width cells wide.
func card(lines []string, width int) string {
	if width < 4 {
		width = 4
	}
	out := make([]string, 0, len(lines)+2)
	out = append(out, "┌"+strings.Repeat("─", width-2)+"┐")
	for _, l := range lines {
		out = append(out, formatInfoLine(" "+l, width))
	}
	out = append(out, "└"+strings.Repeat("─", width-2)+"┘")
	return strings.Join(out, "\n")
}

func key(k, label string) string {
	return keyStyle.Render("["+k+"]") + " " + label
}

func button(k, label string, enabled bool) string {
	if !enabled {
		return faintStyle.Render("[" + k + "] " + label)
	}
	return key(k, label)
}

func (m Model) cardWidth() int {
	w := m.width
	if w > maxCardWidth {
		w = maxCardWidth
	}
	return w
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || !m.wallet.Detected() {
		return "Loading..."
	}
	if m.alert != "" {
		box := alertStyle.Render(m.alert + "\n\n" + key("enter", "OK"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	var body string
	switch {
	case !m.wallet.Present():
		body = "It seems you do not have a wallet configured!\n" +
			faintStyle.Render("Set KEYSTORE_DIR or PRIVATE_KEY and restart.")
	case !m.connected():
		label := "Connect your Wallet"
		if m.connecting {
			label = "Connecting..."
		}
		body = "👋 Hello, you need to connect a wallet to continue\n\n" + button("c", label, !m.connecting)
	default:
		body = m.renderModules()
	}

	footer := faintStyle.Render("ctrl+c quit")
	return m.clip(lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, "", footer))
}

func (m Model) renderHeader() string {
	acc := "not connected"
	if a, ok := m.wallet.Account(); ok {
		acc = a.Hex()
	}
	title := boldStyle.Render("dapp portal")
	info := fmt.Sprintf("account: %s  chain: %s", acc, m.chain)
	w := m.cardWidth()
	return title + "\n" + truncate(info, w) + "\n" + strings.Repeat("─", w)
}

func (m Model) renderModules() string {
	switch mounted := m.selector.Mounted().(type) {
	case *viewmodel.Greet:
		return m.renderGreet(mounted)
	case *viewmodel.Pets:
		return m.renderPets(mounted)
	default:
		return "👋 Welcome! I decided to have my cake and eat it too, that means\n" +
			"there are 2 contracts available 😀.\n\n" +
			key("g", "Greet!") + "   " + key("p", "Pets!")
	}
}

func renderStatus(phase viewmodel.Phase, err, liveErr error) string {
	switch {
	case phase == viewmodel.PhaseFailed:
		return errStyle.Render(fmt.Sprintf("could not load: %v", err))
	case liveErr != nil:
		return errStyle.Render(fmt.Sprintf("live updates lost: %v", liveErr))
	case phase != viewmodel.PhaseReady:
		return faintStyle.Render("loading...")
	}
	return ""
}

func (m Model) renderGreet(g *viewmodel.Greet) string {
	v := g.View()
	w := m.cardWidth()
	lines := []string{
		"Good! manners are important, just kidding!",
		"",
		boldStyle.Render(fmt.Sprintf("%d have said hello so far! o(*￣▽￣*)ブ", v.Count)),
	}
	if s := renderStatus(v.Phase, v.Err, v.LiveErr); s != "" {
		lines = append(lines, s)
	}
	lines = append(lines,
		"",
		"Hope you are enjoying the course!, how is it going on your end?",
		card([]string{"> " + g.Message.Value() + "_"}, w),
	)
	if v.Mining {
		lines = append(lines, faintStyle.Render("Mining..."))
	} else {
		lines = append(lines, button("enter", "Say Hello! 👋", g.CanSubmit()))
	}
	lines = append(lines, key("esc", "X"), "")

	cards := make([]string, 0, len(v.Waves))
	for _, wave := range v.Waves {
		cards = append(cards, card([]string{
			"Address: " + wave.Address.Hex(),
			"Time: " + wave.Timestamp.Format(time.RFC1123),
			"Message: " + wave.Message,
		}, w))
	}
	lines = append(lines, m.scrolled(cards)...)
	return strings.Join(lines, "\n")
}

func (m Model) renderPets(p *viewmodel.Pets) string {
	v := p.View()
	w := m.cardWidth()
	lines := []string{"I like trains 🚂 just kidding!", ""}
	if s := renderStatus(v.Phase, v.Err, v.LiveErr); s != "" {
		lines = append(lines, s)
	}
	if v.AlreadyVoted {
		lines = append(lines, boldStyle.Render("Thanks for participating! only one vote per person"))
	} else {
		lines = append(lines,
			"🐱 🐶 Time to get serious, which pet is the best!? 🐦 🐢 🐟",
			card([]string{"> " + p.Reason.Value() + "_"}, w),
		)
	}
	lines = append(lines, "")

	for i, o := range v.Options {
		marker := "  "
		if i == m.selected && !v.AlreadyVoted {
			marker = "▶ "
		}
		row := marker + truncate(viewmodel.PetLabel(o.Pet), w-20) + "  " + fmt.Sprintf("%d votes!", o.Votes)
		lines = append(lines, row)
	}
	if !v.AlreadyVoted && len(v.Options) > 0 {
		vote := button("enter", "Vote!", p.CanVote())
		if v.Mining {
			vote = faintStyle.Render("Mining...")
		}
		lines = append(lines, "", key("tab", "next pet")+"   "+vote)
	}
	lines = append(lines, key("esc", "X"), "")

	cards := make([]string, 0, len(v.Votes))
	for _, vote := range v.Votes {
		cards = append(cards, card([]string{
			"Address: " + vote.Address.Hex(),
			"Vote: " + vote.Pet,
			"Reason: " + vote.Reason,
		}, w))
	}
	lines = append(lines, m.scrolled(cards)...)
	return strings.Join(lines, "\n")
}

func (m Model) scrolled(cards []string) []string {
	if m.scroll >= len(cards) {
		if len(cards) == 0 {
			return nil
		}
		return cards[len(cards)-1:]
	}
	return cards[m.scroll:]
}

// clip keeps the output within the terminal height.
func (m Model) clip(s string) string {
	if m.height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= m.height {
		return s
	}
	return strings.Join(lines[:m.height], "\n")
}
