// Package engine implements the per-tick progression rules: experience
// gain, level transitions, action completion, and inventory and
// collection-log mutation. It owns the single active activity and is
// driven by an external caller at a fixed cadence; it renders nothing.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hylla/samla/internal/catalog"
	"github.com/hylla/samla/internal/domain"
)

// IDGenerator returns unique identifiers for emitted events.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// ActiveActivity is the transient skill+action pair currently being
// performed. Progress stays in [0, Action.Cost) between ticks and is
// never persisted.
type ActiveActivity struct {
	Skill    domain.SkillDefinition
	Action   domain.ActivityAction
	Progress float64
}

// Engine advances player progression one discrete tick at a time.
// Ticks and commands against one player must be serialized by the
// caller; the engine assumes a single active session.
type Engine struct {
	gateway Gateway
	idGen   IDGenerator
	clock   Clock
	active  *ActiveActivity
}

// New constructs an engine over a persistence gateway.
func New(gateway Gateway, idGen IDGenerator, clock Clock) *Engine {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Engine{gateway: gateway, idGen: idGen, clock: clock}
}

// Active returns a copy of the current activity, if any.
func (e *Engine) Active() (ActiveActivity, bool) {
	if e.active == nil {
		return ActiveActivity{}, false
	}
	return *e.active, true
}

// CreatePlayer constructs a fresh character seeded with every catalog
// skill and persists it immediately.
func (e *Engine) CreatePlayer(ctx context.Context, cat *catalog.Catalog, name string) (*domain.PlayerState, error) {
	player := domain.NewPlayer(name, cat.SkillIDs())
	if err := e.gateway.Save(ctx, player); err != nil {
		return nil, fmt.Errorf("persist new player: %w", err)
	}
	return player, nil
}

// Save writes the player through the gateway. Storage failures surface
// unchanged; the engine performs no retry.
func (e *Engine) Save(ctx context.Context, player *domain.PlayerState) error {
	return e.gateway.Save(ctx, player)
}

// Load reads a saved player by name. Missing saves fail with
// ErrNotFound, unreadable payloads with ErrCorruptSave.
func (e *Engine) Load(ctx context.Context, name string) (*domain.PlayerState, error) {
	return e.gateway.Load(ctx, name)
}

// ListSaves returns the existing save names.
func (e *Engine) ListSaves(ctx context.Context) ([]string, error) {
	return e.gateway.ListSaves(ctx)
}

// StartActivity replaces the active activity with the given skill action.
// The player's current level must meet the action's requirement and the
// action's target item must exist in the catalog; on rejection nothing
// changes. Progress always resets to zero, even when restarting the
// same action.
func (e *Engine) StartActivity(cat *catalog.Catalog, player *domain.PlayerState, skillID, actionID string) (Event, error) {
	skill, ok := cat.Skill(skillID)
	if !ok {
		return Event{}, fmt.Errorf("skill %q: %w", skillID, ErrNotFound)
	}
	action, ok := skill.Action(actionID)
	if !ok {
		return Event{}, fmt.Errorf("action %q: %w", actionID, ErrNotFound)
	}
	if !cat.HasItem(action.ItemID) {
		return Event{}, fmt.Errorf("action %q item %q: %w", actionID, action.ItemID, ErrNoItem)
	}
	if action.Cost <= 0 {
		return Event{}, fmt.Errorf("action %q: %w", actionID, domain.ErrInvalidCost)
	}
	if player.Skill(skill.ID).Level < action.RequiredLevel {
		return Event{}, fmt.Errorf("action %q needs level %d: %w", actionID, action.RequiredLevel, ErrNotEligible)
	}

	e.active = &ActiveActivity{Skill: skill, Action: action}
	return e.newEvent(EventActivityStarted, skill.ID, action.ID, action.ItemID, 0, 0), nil
}

// AdvanceTick applies one discrete simulation tick to the player and
// returns the ordered list of changes. With no active activity it is a
// no-op. The gather rate is computed from the level as it stood before
// this tick; the completion loop grants as many items as the new
// progress covers, so fast rates can finish several per tick.
func (e *Engine) AdvanceTick(player *domain.PlayerState) ([]Event, error) {
	if e.active == nil {
		return nil, nil
	}
	skill := e.active.Skill
	action := e.active.Action
	if action.Cost <= 0 {
		// Refuse before touching shared state so a broken definition
		// cannot leave XP applied without its completions.
		return nil, fmt.Errorf("action %q: %w", action.ID, domain.ErrInvalidCost)
	}

	state := player.Skill(skill.ID)
	rate := skill.GatherRate(state.Level)

	var events []Event
	if leveled := state.AddXP(rate); leveled {
		events = append(events, e.newEvent(EventLevelUp, skill.ID, action.ID, "", 0, state.Level))
	}
	events = append(events, e.newEvent(EventXPGained, skill.ID, action.ID, "", rate, state.Level))

	e.active.Progress += rate
	if rate > 0 {
		for e.active.Progress >= action.Cost {
			e.active.Progress -= action.Cost
			player.GrantItem(action.ItemID, 1)
			state.RecordAction(action.ID)
			events = append(events, e.newEvent(EventItemGathered, skill.ID, action.ID, action.ItemID, 1, state.Level))
		}
	}
	return events, nil
}

func (e *Engine) newEvent(kind EventType, skillID, actionID, itemID string, amount float64, level int) Event {
	return Event{
		ID:       e.idGen(),
		Type:     kind,
		SkillID:  skillID,
		ActionID: actionID,
		ItemID:   itemID,
		Amount:   amount,
		Level:    level,
		At:       e.clock().UTC(),
	}
}
