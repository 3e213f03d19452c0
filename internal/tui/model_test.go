package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/hylla/samla/internal/catalog"
	"github.com/hylla/samla/internal/domain"
	"github.com/hylla/samla/internal/engine"
)

type fakeGateway struct {
	payloads map[string][]byte
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{payloads: map[string][]byte{}}
}

func (f *fakeGateway) ListSaves(context.Context) ([]string, error) {
	out := make([]string, 0, len(f.payloads))
	for name := range f.payloads {
		out = append(out, name)
	}
	return out, nil
}

func (f *fakeGateway) Save(_ context.Context, p *domain.PlayerState) error {
	payload, err := engine.EncodeSave(p)
	if err != nil {
		return err
	}
	f.payloads[p.Name] = payload
	return nil
}

func (f *fakeGateway) Load(_ context.Context, name string) (*domain.PlayerState, error) {
	payload, ok := f.payloads[name]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return engine.DecodeSave(payload)
}

const uiTestItems = `items:
  - id: oak_log
    name: Oak Log
`

const uiTestSkills = `skills:
  - id: woodcutting
    name: Woodcutting
    base_rate: 10
    rate_per_level: 0
    actions:
      - id: chop_oak
        name: Chop Oak
        item_id: oak_log
        required_level: 1
        action_value: 25
      - id: chop_elder
        name: Chop Elder
        item_id: oak_log
        required_level: 40
        action_value: 90
`

func uiTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(strings.NewReader(uiTestItems), strings.NewReader(uiTestSkills))
	if err != nil {
		t.Fatalf("catalog.Load() error = %v", err)
	}
	return cat
}

func newTestModel(t *testing.T, gw *fakeGateway) Model {
	t.Helper()
	cat := uiTestCatalog(t)
	eng := engine.New(gw, func() string { return "ev" }, func() time.Time {
		return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	})
	return NewModel(eng, cat, WithTickInterval(time.Millisecond))
}

func seededGateway(t *testing.T, names ...string) *fakeGateway {
	t.Helper()
	gw := newFakeGateway()
	for _, name := range names {
		if err := gw.Save(context.Background(), domain.NewPlayer(name, []string{"woodcutting"})); err != nil {
			t.Fatalf("seed save %q: %v", name, err)
		}
	}
	return gw
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 120, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		if msg == nil {
			return out
		}
		updated, next := out.Update(msg)
		typed, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = typed
		currentCmd = next
	}
	return out
}

// step applies a message without chasing the returned command, so tick
// scheduling does not run ahead of the assertion.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return out
}

func TestModelLoadScreenNavigation(t *testing.T) {
	gw := seededGateway(t, "Ash", "Mina")
	m := loadReadyModel(t, newTestModel(t, gw))

	if m.screen != screenLoad {
		t.Fatalf("expected load screen, got %d", m.screen)
	}
	if len(m.saves) != 2 {
		t.Fatalf("expected 2 saves, got %#v", m.saves)
	}

	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	if m.saveCursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.saveCursor)
	}
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	if m.saveCursor != 1 {
		t.Fatalf("cursor moved past last save: %d", m.saveCursor)
	}
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyUp})
	if m.saveCursor != 0 {
		t.Fatalf("expected cursor 0, got %d", m.saveCursor)
	}
}

func TestModelLoadCharacter(t *testing.T) {
	gw := seededGateway(t, "Ash")
	m := loadReadyModel(t, newTestModel(t, gw))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.screen != screenGame {
		t.Fatalf("expected game screen after load, got %d", m.screen)
	}
	if m.player == nil || m.player.Name != "Ash" {
		t.Fatalf("unexpected loaded player %#v", m.player)
	}
}

func TestModelNewCharacterFlow(t *testing.T) {
	gw := newFakeGateway()
	m := loadReadyModel(t, newTestModel(t, gw))

	m = step(t, m, tea.KeyPressMsg{Code: 'n', Text: "n"})
	if !m.naming {
		t.Fatal("expected naming mode after n")
	}
	for _, r := range "Zo" {
		m = step(t, m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.screen != screenGame {
		t.Fatalf("expected game screen after create, got %d", m.screen)
	}
	if m.player == nil || m.player.Name != "Zo" {
		t.Fatalf("unexpected created player %#v", m.player)
	}
	if _, ok := gw.payloads["Zo"]; !ok {
		t.Fatal("new character was not persisted")
	}
}

func TestModelEmptyNameFallsBackToDefault(t *testing.T) {
	gw := newFakeGateway()
	m := loadReadyModel(t, newTestModel(t, gw))

	// Enter with no saves opens naming; enter again submits blank.
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.naming {
		t.Fatal("expected naming mode when no saves exist")
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.player == nil || m.player.Name != domain.DefaultPlayerName {
		t.Fatalf("unexpected player %#v", m.player)
	}
}

func TestModelStartActivityAndTicks(t *testing.T) {
	gw := seededGateway(t, "Ash")
	m := loadReadyModel(t, newTestModel(t, gw))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	// Focus the action list, then start the first action.
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.pane != paneActions {
		t.Fatalf("expected actions pane, got %d", m.pane)
	}
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != "gathering" {
		t.Fatalf("unexpected status %q", m.status)
	}
	if len(m.notifications) == 0 || !strings.Contains(m.notifications[len(m.notifications)-1], "Started Chop Oak") {
		t.Fatalf("unexpected notifications %#v", m.notifications)
	}

	// Three ticks at rate 10 cross the cost of 25 once.
	for i := 0; i < 3; i++ {
		m = step(t, m, tickMsg(time.Now()))
	}
	if got := m.player.Skill("woodcutting").XP; got != 30 {
		t.Fatalf("xp after 3 ticks = %v, want 30", got)
	}
	if m.player.Inventory["oak_log"] != 1 {
		t.Fatalf("inventory = %d, want 1", m.player.Inventory["oak_log"])
	}
	joined := strings.Join(m.notifications, "\n")
	if !strings.Contains(joined, "Gathered Oak Log") {
		t.Fatalf("expected gather notification, got %#v", m.notifications)
	}
}

func TestModelIneligibleActionKeepsState(t *testing.T) {
	gw := seededGateway(t, "Ash")
	m := loadReadyModel(t, newTestModel(t, gw))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if !strings.Contains(m.status, "requires level 40") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if _, ok := m.svc.Active(); ok {
		t.Fatal("rejected start left an active activity")
	}
	if m.player.Skill("woodcutting").XP != 0 {
		t.Fatalf("rejected start mutated xp: %v", m.player.Skill("woodcutting").XP)
	}
}

func TestModelTabCycle(t *testing.T) {
	gw := seededGateway(t, "Ash")
	m := loadReadyModel(t, newTestModel(t, gw))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.tab != tabInventory {
		t.Fatalf("expected inventory tab first, got %d", m.tab)
	}
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	if m.tab != tabStats {
		t.Fatalf("expected stats tab, got %d", m.tab)
	}
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	if m.tab != tabCollection {
		t.Fatalf("expected collection tab, got %d", m.tab)
	}
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	if m.tab != tabInventory {
		t.Fatalf("expected wraparound to inventory, got %d", m.tab)
	}
}

func TestModelSaveKey(t *testing.T) {
	gw := seededGateway(t, "Ash")
	m := loadReadyModel(t, newTestModel(t, gw))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m.player.GrantItem("oak_log", 3)
	m = applyMsg(t, m, tea.KeyPressMsg{Code: 's', Text: "s"})
	if m.status != "saved" {
		t.Fatalf("unexpected status %q", m.status)
	}

	loaded, err := gw.Load(context.Background(), "Ash")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Inventory["oak_log"] != 3 {
		t.Fatalf("persisted inventory = %d, want 3", loaded.Inventory["oak_log"])
	}
}

func TestModelQuitKey(t *testing.T) {
	m := newTestModel(t, newFakeGateway())
	updated, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if updated == nil {
		t.Fatal("expected model return value")
	}
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
}

func TestNotificationFeedCap(t *testing.T) {
	m := newTestModel(t, newFakeGateway())
	m.maxNotifications = 3
	for _, line := range []string{"a", "b", "c", "d", "e"} {
		m.pushNotification(line)
	}
	if len(m.notifications) != 3 {
		t.Fatalf("feed size = %d, want 3", len(m.notifications))
	}
	if m.notifications[0] != "c" || m.notifications[2] != "e" {
		t.Fatalf("unexpected feed %#v", m.notifications)
	}
}

func TestFormatEventDropsXPGained(t *testing.T) {
	gw := seededGateway(t, "Ash")
	m := loadReadyModel(t, newTestModel(t, gw))

	if got := m.formatEvent(engine.Event{Type: engine.EventXPGained, SkillID: "woodcutting", Amount: 10}); got != "" {
		t.Fatalf("xp event rendered %q, want empty", got)
	}
	got := m.formatEvent(engine.Event{Type: engine.EventLevelUp, SkillID: "woodcutting", Level: 2})
	if got != "Woodcutting leveled to 2!" {
		t.Fatalf("unexpected level-up line %q", got)
	}
	got = m.formatEvent(engine.Event{Type: engine.EventItemGathered, SkillID: "woodcutting", ItemID: "oak_log", Amount: 1})
	if got != "Gathered Oak Log" {
		t.Fatalf("unexpected gather line %q", got)
	}
}
