// Package tui is the terminal driver for the progression engine. It
// forwards user intent (choose character, start activity, save) into
// the engine and renders the state and events the engine returns; it
// never mutates player state directly.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/samla/internal/catalog"
	"github.com/hylla/samla/internal/domain"
	"github.com/hylla/samla/internal/engine"
)

// Service is the engine surface the driver talks to.
type Service interface {
	ListSaves(context.Context) ([]string, error)
	CreatePlayer(context.Context, *catalog.Catalog, string) (*domain.PlayerState, error)
	Load(context.Context, string) (*domain.PlayerState, error)
	Save(context.Context, *domain.PlayerState) error
	StartActivity(*catalog.Catalog, *domain.PlayerState, string, string) (engine.Event, error)
	AdvanceTick(*domain.PlayerState) ([]engine.Event, error)
	Active() (engine.ActiveActivity, bool)
}

// screen represents a selectable mode.
type screen int

// screenLoad and related constants define package defaults.
const (
	screenLoad screen = iota
	screenGame
)

// pane identifies which list currently has focus on the game screen.
type pane int

const (
	paneSkills pane = iota
	paneActions
)

// tab identifies the right-hand inspection tab.
type tab int

const (
	tabInventory tab = iota
	tabStats
	tabCollection
)

// tabLabels stores tab titles in cycle order.
var tabLabels = []string{"Inventory", "Stats", "Collection Log"}

// Messages produced by commands.
type (
	savesLoadedMsg struct {
		names []string
		err   error
	}
	sessionMsg struct {
		player *domain.PlayerState
		err    error
	}
	savedMsg struct {
		err error
	}
	tickMsg time.Time
)

// Option mutates the model at construction time.
type Option func(*Model)

// WithTickInterval overrides the simulation cadence.
func WithTickInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// WithMaxNotifications overrides the event feed depth.
func WithMaxNotifications(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.maxNotifications = n
		}
	}
}

// Model represents the driver state for one terminal session.
type Model struct {
	svc  Service
	cat  *catalog.Catalog
	keys keyMap
	help help.Model
	md   markdownRenderer

	nameInput textinput.Model
	naming    bool

	screen screen
	pane   pane
	tab    tab
	width  int
	height int
	ready  bool

	saves      []string
	saveCursor int

	player        *domain.PlayerState
	skillCursor   int
	actionCursor  int
	notifications []string
	status        string
	err           error

	tickInterval     time.Duration
	maxNotifications int
}

// NewModel constructs the driver model over an engine service and a
// loaded catalog.
func NewModel(svc Service, cat *catalog.Catalog, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	nameInput := textinput.New()
	nameInput.Prompt = "name: "
	nameInput.Placeholder = domain.DefaultPlayerName
	nameInput.CharLimit = 40

	m := Model{
		svc:              svc,
		cat:              cat,
		keys:             newKeyMap(),
		help:             h,
		nameInput:        nameInput,
		status:           "loading saves...",
		tickInterval:     time.Second,
		maxNotifications: 5,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadSaves
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case savesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.saves = msg.names
		m.status = "choose a character"
		return m, nil

	case sessionMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		m.player = msg.player
		m.screen = screenGame
		m.status = "welcome, " + msg.player.Name
		return m, m.tickCmd()

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			return m, nil
		}
		m.pushNotification("Game saved.")
		m.status = "saved"
		return m, nil

	case tickMsg:
		if m.screen != screenGame || m.player == nil {
			return m, nil
		}
		events, err := m.svc.AdvanceTick(m.player)
		if err != nil {
			m.status = "tick error: " + err.Error()
			return m, m.tickCmd()
		}
		for _, ev := range events {
			if line := m.formatEvent(ev); line != "" {
				m.pushNotification(line)
			}
		}
		return m, m.tickCmd()

	case tea.KeyPressMsg:
		if m.screen == screenLoad {
			return m.handleLoadScreenKey(msg)
		}
		return m.handleGameScreenKey(msg)

	default:
		return m, nil
	}
}

// handleLoadScreenKey drives the character load/create screen.
func (m Model) handleLoadScreenKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.naming {
		switch {
		case key.Matches(msg, m.keys.choose):
			name := strings.TrimSpace(m.nameInput.Value())
			m.naming = false
			m.nameInput.Blur()
			return m, m.createPlayer(name)
		case key.Matches(msg, m.keys.back):
			m.naming = false
			m.nameInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.saveCursor > 0 {
			m.saveCursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if m.saveCursor < len(m.saves)-1 {
			m.saveCursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.newName):
		m.naming = true
		m.nameInput.SetValue("")
		return m, m.nameInput.Focus()
	case key.Matches(msg, m.keys.choose):
		if len(m.saves) == 0 {
			m.naming = true
			return m, m.nameInput.Focus()
		}
		return m, m.loadPlayer(m.saves[m.saveCursor])
	}
	return m, nil
}

// handleGameScreenKey drives the activity/tab navigation while playing.
func (m Model) handleGameScreenKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.save):
		return m, m.savePlayer()
	case key.Matches(msg, m.keys.cycleTab):
		m.tab = tab((int(m.tab) + 1) % len(tabLabels))
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.pane = paneSkills
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.choose):
		if m.pane == paneSkills {
			m.pane = paneActions
			m.actionCursor = 0
			return m, nil
		}
		return m.startSelectedAction()
	}
	return m, nil
}

// moveCursor moves the focused list cursor by delta, clamped.
func (m *Model) moveCursor(delta int) {
	skills := m.cat.Skills()
	if len(skills) == 0 {
		return
	}
	if m.pane == paneSkills {
		m.skillCursor = clamp(m.skillCursor+delta, 0, len(skills)-1)
		return
	}
	actions := skills[m.skillCursor].Actions
	if len(actions) == 0 {
		return
	}
	m.actionCursor = clamp(m.actionCursor+delta, 0, len(actions)-1)
}

// startSelectedAction forwards a start-activity command to the engine.
func (m Model) startSelectedAction() (tea.Model, tea.Cmd) {
	skills := m.cat.Skills()
	if len(skills) == 0 || m.skillCursor >= len(skills) {
		return m, nil
	}
	skill := skills[m.skillCursor]
	if len(skill.Actions) == 0 || m.actionCursor >= len(skill.Actions) {
		return m, nil
	}
	action := skill.Actions[m.actionCursor]

	ev, err := m.svc.StartActivity(m.cat, m.player, skill.ID, action.ID)
	switch {
	case errors.Is(err, engine.ErrNotEligible):
		m.status = fmt.Sprintf("%s requires level %d", action.Name, action.RequiredLevel)
		return m, nil
	case err != nil:
		m.status = "cannot start: " + err.Error()
		return m, nil
	}
	m.pushNotification(m.formatEvent(ev))
	m.status = "gathering"
	return m, nil
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress q to quit\n")
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	var content string
	if m.screen == screenLoad {
		content = m.viewLoadScreen()
	} else {
		content = m.viewGameScreen()
	}

	helpLine := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.help.View(m.keys))
	statusLine := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Render(m.status)
	v := tea.NewView(content + "\n" + statusLine + "\n" + helpLine + "\n")
	v.AltScreen = true
	return v
}

// viewLoadScreen renders the character load/create screen.
func (m Model) viewLoadScreen() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	lines := []string{title.Render("samla — load character"), ""}
	if len(m.saves) == 0 {
		lines = append(lines, dim.Render("no saves yet"))
	}
	for i, name := range m.saves {
		cursor := "  "
		if i == m.saveCursor {
			cursor = "> "
		}
		lines = append(lines, cursor+name)
	}
	lines = append(lines, "")
	if m.naming {
		lines = append(lines, m.nameInput.View())
	} else {
		lines = append(lines, dim.Render("enter load selected • n new character"))
	}
	return strings.Join(lines, "\n")
}

// viewGameScreen renders the three-pane game layout.
func (m Model) viewGameScreen() string {
	left := m.viewActivities()
	right := m.viewTab()
	summary := m.viewSummary()
	feed := m.viewNotifications()

	columnWidth := m.width/2 - 2
	if columnWidth < 30 {
		columnWidth = 30
	}
	leftPane := lipgloss.NewStyle().Width(columnWidth).Render(left)
	rightPane := lipgloss.NewStyle().Width(columnWidth).Render(right)
	body := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	return strings.Join([]string{body, summary, feed}, "\n")
}

// viewActivities renders the skill and action lists with level gating.
func (m Model) viewActivities() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	skills := m.cat.Skills()
	lines := []string{title.Render("Activities"), ""}
	for i, skill := range skills {
		cursor := "  "
		if i == m.skillCursor {
			cursor = "> "
		}
		level := m.player.Skill(skill.ID).Level
		lines = append(lines, fmt.Sprintf("%s%s (lvl %d)", cursor, skill.Name, level))
		if i != m.skillCursor || m.pane != paneActions {
			continue
		}
		for j, action := range skill.Actions {
			marker := "    "
			if j == m.actionCursor {
				marker = "  > "
			}
			line := fmt.Sprintf("%s%s — value %.0f", marker, action.Name, action.Cost)
			if level < action.RequiredLevel {
				line = dim.Render(fmt.Sprintf("%s (requires lvl %d)", line, action.RequiredLevel))
			}
			lines = append(lines, line)
		}
	}
	if m.pane == paneActions && m.skillCursor < len(skills) {
		skill := skills[m.skillCursor]
		if desc := m.md.render(skill.Description, m.width/2-4); desc != "" {
			lines = append(lines, "", desc)
		}
		if len(skill.Actions) > 0 && m.actionCursor < len(skill.Actions) {
			if flavor := m.md.render(skill.Actions[m.actionCursor].Flavor, m.width/2-4); flavor != "" {
				lines = append(lines, flavor)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// viewTab renders the focused inspection tab.
func (m Model) viewTab() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	lines := []string{title.Render(tabLabels[m.tab]), ""}

	switch m.tab {
	case tabInventory:
		lines = append(lines, m.quantityLines(m.player.Inventory)...)
	case tabStats:
		for _, skill := range m.cat.Skills() {
			state := m.player.Skill(skill.ID)
			lines = append(lines, fmt.Sprintf(" - %s: Level %d (XP %.0f)", skill.Name, state.Level, state.XP))
		}
	case tabCollection:
		lines = append(lines, m.quantityLines(m.player.CollectionLog)...)
	}
	return strings.Join(lines, "\n")
}

// quantityLines renders an item-quantity map sorted by item id.
func (m Model) quantityLines(quantities map[string]int) []string {
	if len(quantities) == 0 {
		return []string{" - Empty"}
	}
	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf(" - %s: %d", m.cat.Item(id).Name, quantities[id]))
	}
	return lines
}

// viewSummary renders the current-activity progress line.
func (m Model) viewSummary() string {
	active, ok := m.svc.Active()
	if !ok {
		return "Current Activity: None"
	}
	level := m.player.Skill(active.Skill.ID).Level
	rate := active.Skill.GatherRate(level)
	pct := 0.0
	if active.Action.Cost > 0 {
		pct = active.Progress / active.Action.Cost * 100
		if pct > 100 {
			pct = 100
		}
	}
	return fmt.Sprintf("Current Activity: %s - %s | Progress: %.1f%% | XP gain: %.1f/tick",
		active.Skill.Name, active.Action.Name, pct, rate)
}

// viewNotifications renders the transient event feed, newest last.
func (m Model) viewNotifications() string {
	if len(m.notifications) == 0 {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	return style.Render(strings.Join(m.notifications, "\n"))
}

// pushNotification appends a feed line, dropping the oldest past the cap.
func (m *Model) pushNotification(line string) {
	m.notifications = append(m.notifications, line)
	if len(m.notifications) > m.maxNotifications {
		m.notifications = m.notifications[len(m.notifications)-m.maxNotifications:]
	}
}

// formatEvent turns one engine event into a feed line. High-frequency
// xp events are dropped here so the feed shows milestones only.
func (m Model) formatEvent(ev engine.Event) string {
	skillName := ev.SkillID
	if skill, ok := m.cat.Skill(ev.SkillID); ok {
		skillName = skill.Name
	}
	switch ev.Type {
	case engine.EventActivityStarted:
		return "Started " + m.actionName(ev)
	case engine.EventLevelUp:
		return fmt.Sprintf("%s leveled to %d!", skillName, ev.Level)
	case engine.EventItemGathered:
		return "Gathered " + m.cat.Item(ev.ItemID).Name
	default:
		return ""
	}
}

// actionName resolves an event's action display name.
func (m Model) actionName(ev engine.Event) string {
	if skill, ok := m.cat.Skill(ev.SkillID); ok {
		if action, ok := skill.Action(ev.ActionID); ok {
			return action.Name
		}
	}
	return ev.ActionID
}

// Commands.

func (m Model) loadSaves() tea.Msg {
	names, err := m.svc.ListSaves(context.Background())
	return savesLoadedMsg{names: names, err: err}
}

func (m Model) createPlayer(name string) tea.Cmd {
	return func() tea.Msg {
		player, err := m.svc.CreatePlayer(context.Background(), m.cat, name)
		return sessionMsg{player: player, err: err}
	}
}

func (m Model) loadPlayer(name string) tea.Cmd {
	return func() tea.Msg {
		player, err := m.svc.Load(context.Background(), name)
		return sessionMsg{player: player, err: err}
	}
}

func (m Model) savePlayer() tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: m.svc.Save(context.Background(), m.player)}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
