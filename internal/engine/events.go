package engine

import "time"

// EventType describes what a tick or command changed.
type EventType string

// EventType values emitted by the engine for the driver to render.
const (
	EventActivityStarted EventType = "activity_started"
	EventXPGained        EventType = "xp_gained"
	EventLevelUp         EventType = "level_up"
	EventItemGathered    EventType = "item_gathered"
)

// Event is one entry in the ordered change list returned by engine
// commands. The engine never renders or queues these itself.
type Event struct {
	ID       string
	Type     EventType
	SkillID  string
	ActionID string
	ItemID   string
	Amount   float64
	Level    int
	At       time.Time
}
