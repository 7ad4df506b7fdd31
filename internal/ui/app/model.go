package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dinod/internal/modules/session/dto"
	"dinod/internal/ui/theme"
)

const refreshInterval = 2 * time.Second

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	Status(ctx context.Context) (dto.StatusOutput, error)
	Feed(ctx context.Context) (dto.ActionOutput, error)
	Pet(ctx context.Context) (dto.ActionOutput, error)
	Break(ctx context.Context) (dto.ActionOutput, error)
	SyncNow(ctx context.Context) (int, error)
	RulesReload(ctx context.Context) error
}

// ─── async messages ───────────────────────────────────────────────────────────

type tickMsg time.Time

type statusMsg struct {
	out dto.StatusOutput
	err error
}

type actionMsg struct {
	out dto.ActionOutput
	err error
}

type syncMsg struct {
	peers int
	err   error
}

type reloadMsg struct{ err error }

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Feed   key.Binding
	Pet    key.Binding
	Break  key.Binding
	Sync   key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Feed:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "feed")),
		Pet:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pet")),
		Break:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "take break")),
		Sync:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync leaderboard")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload rules")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Feed, k.Pet, k.Break, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Feed, k.Pet, k.Break},
		{k.Sync, k.Reload},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the status dashboard. It polls the daemon on a short interval and
// issues care actions; all business logic stays behind the session port.
type Model struct {
	session sessionPort

	username   string
	friendCode string

	current dto.StatusOutput
	loaded  bool

	healthBar    progress.Model
	happinessBar progress.Model
	energyBar    progress.Model

	keys     keyMap
	help     help.Model
	showHelp bool
	status   string
	width    int
	height   int
}

func NewModel(username, friendCode string, session sessionPort) Model {
	bar := func() progress.Model {
		p := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
		p.Width = 30
		return p
	}
	return Model{
		session:      session,
		username:     username,
		friendCode:   friendCode,
		healthBar:    bar(),
		happinessBar: bar(),
		energyBar:    bar(),
		keys:         defaultKeys(),
		help:         help.New(),
		status:       "loading…",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickCmd())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.width

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())

	case statusMsg:
		if msg.err != nil {
			m.status = "status: " + msg.err.Error()
		} else {
			m.current = msg.out
			m.loaded = true
			if m.status == "loading…" {
				m.status = "ready"
			}
		}

	case actionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = msg.out.Message
		}
		return m, m.refreshCmd()

	case syncMsg:
		if msg.err != nil {
			m.status = "sync: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("synced with %d peers", msg.peers)
		}
		return m, m.refreshCmd()

	case reloadMsg:
		if msg.err != nil {
			m.status = "rules reload: " + msg.err.Error()
		} else {
			m.status = "rules reloaded"
		}

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Feed):
			return m, m.actionCmd(m.session.Feed)
		case key.Matches(msg, m.keys.Pet):
			return m, m.actionCmd(m.session.Pet)
		case key.Matches(msg, m.keys.Break):
			return m, m.actionCmd(m.session.Break)
		case key.Matches(msg, m.keys.Sync):
			return m, m.syncCmd()
		case key.Matches(msg, m.keys.Reload):
			return m, m.reloadCmd()
		}
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.showHelp {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.help.View(m.keys))
	}
	if !m.loaded {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.status)
	}

	header := m.renderHeader()
	pet := m.renderPet()
	stats := m.renderStats()
	board := m.renderLeaderboard()
	statusBar := m.renderStatusBar()

	left := theme.PaneActive.Render(lipgloss.JoinVertical(lipgloss.Left, pet, "", stats))
	right := theme.Pane.Render(board)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}

func (m Model) renderHeader() string {
	daemon := theme.Muted.Render("daemon stopped")
	if m.current.DaemonRunning {
		daemon = theme.Good.Render("● daemon")
	}
	title := theme.Title.Render("dinod") + "  " +
		theme.Muted.Render(m.username+"  "+m.friendCode) + "  " + daemon
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(title) + "\n"
}

func (m Model) renderPet() string {
	face := dinoFace(m.current.State)
	label := m.current.State
	if m.current.Category != "" && m.current.Category != m.current.State {
		label += "  " + theme.Muted.Render("("+m.current.Category+")")
	}
	if m.current.Domain != "" {
		label += "  " + theme.Muted.Render(m.current.Domain)
	}
	return lipgloss.JoinVertical(lipgloss.Left, theme.Hot.Render(face), label)
}

func (m Model) renderStats() string {
	rows := []string{
		"health    " + m.healthBar.ViewAs(m.current.Health/100) + fmt.Sprintf("  %3.0f", m.current.Health),
		"happiness " + m.happinessBar.ViewAs(m.current.Happiness/100) + fmt.Sprintf("  %3.0f", m.current.Happiness),
		"energy    " + m.energyBar.ViewAs(m.current.Energy/100) + fmt.Sprintf("  %3.0f", m.current.Energy),
		"",
		fmt.Sprintf("coins %.1f  today %+.1f  lifetime %.1f",
			m.current.Balance, m.current.SessionEarned, m.current.TotalEarned),
	}
	if m.current.CodingStreakSeconds > 0 {
		rows = append(rows, theme.Good.Render(
			fmt.Sprintf("coding streak %s", time.Duration(m.current.CodingStreakSeconds)*time.Second)))
	}
	rows = append(rows, "", m.renderTimeSpent())
	return strings.Join(rows, "\n")
}

func (m Model) renderTimeSpent() string {
	type slot struct {
		category string
		seconds  float64
	}
	slots := make([]slot, 0, len(m.current.TimeSpent))
	for category, seconds := range m.current.TimeSpent {
		slots = append(slots, slot{category: category, seconds: seconds})
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].seconds != slots[j].seconds {
			return slots[i].seconds > slots[j].seconds
		}
		return slots[i].category < slots[j].category
	})
	if len(slots) > 5 {
		slots = slots[:5]
	}
	lines := []string{theme.Title.Render("today")}
	for _, s := range slots {
		lines = append(lines, fmt.Sprintf("%-14s %s", s.category,
			(time.Duration(s.seconds)*time.Second).Round(time.Minute)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLeaderboard() string {
	lines := []string{theme.Title.Render("leaderboard")}
	if !m.current.RemoteSync {
		lines = append(lines, theme.Muted.Render("local only"))
	}
	if len(m.current.Leaderboard) == 0 {
		lines = append(lines, theme.Muted.Render("no peers yet"))
		return strings.Join(lines, "\n")
	}
	for rank, entry := range m.current.Leaderboard {
		row := fmt.Sprintf("%d. %-12s %7.1f", rank+1, entry.Username, entry.SessionEarned)
		if entry.You {
			row = theme.Hot.Render(row + "  ◂ you")
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatusBar() string {
	right := theme.Muted.Render("f:feed  p:pet  b:break  ?:help  q:quit")
	gap := m.width - lipgloss.Width(m.status) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := m.status + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func dinoFace(state string) string {
	if strings.HasPrefix(state, "browsing_") {
		return "(⌐■_■)🦖"
	}
	switch state {
	case "dead":
		return "(✖_✖)🦖"
	case "sick":
		return "(×﹏×)🦖"
	case "eating":
		return "(っ˘ڡ˘ς)🦖"
	case "excited":
		return "(ノ◕ヮ◕)ノ🦖"
	case "coding", "working", "learning", "designing":
		return "(▀̿Ĺ̯▀̿ ̿)🦖"
	case "gaming", "entertainment":
		return "(◕ᴗ◕✿)🦖"
	case "social", "news", "shopping":
		return "(¬_¬)🦖"
	default:
		return "(－ω－) zzZ🦖"
	}
}

// ─── async commands ───────────────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Status(context.Background())
		return statusMsg{out: out, err: err}
	}
}

func (m Model) actionCmd(action func(context.Context) (dto.ActionOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := action(context.Background())
		return actionMsg{out: out, err: err}
	}
}

func (m Model) syncCmd() tea.Cmd {
	return func() tea.Msg {
		peers, err := m.session.SyncNow(context.Background())
		return syncMsg{peers: peers, err: err}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.session.RulesReload(context.Background())
		return reloadMsg{err: err}
	}
}
