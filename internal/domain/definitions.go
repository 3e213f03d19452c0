package domain

// ItemDefinition describes one gatherable item from the item catalog.
type ItemDefinition struct {
	ID    string
	Name  string
	Image string
	Tier  int
	Value float64
}

// PlaceholderItem returns a display-safe stand-in for an unknown item id.
func PlaceholderItem(id string) ItemDefinition {
	return ItemDefinition{ID: id, Name: id}
}

// ActivityAction describes one startable action belonging to a skill.
type ActivityAction struct {
	ID            string
	Name          string
	ItemID        string
	RequiredLevel int
	Cost          float64
	Flavor        string
}

// SkillDefinition describes a gathering skill and its ordered actions.
type SkillDefinition struct {
	ID           string
	Name         string
	Description  string
	BaseRate     float64
	RatePerLevel float64
	Actions      []ActivityAction
}

// GatherRate returns the experience granted per tick at the given level.
// Levels below 1 are floored to 1, so the rate is never below
// BaseRate + RatePerLevel.
func (s SkillDefinition) GatherRate(level int) float64 {
	if level < 1 {
		level = 1
	}
	return s.BaseRate + s.RatePerLevel*float64(level)
}

// Action returns the skill's action with the given id.
func (s SkillDefinition) Action(id string) (ActivityAction, bool) {
	for _, a := range s.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return ActivityAction{}, false
}
