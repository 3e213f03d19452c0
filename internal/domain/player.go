package domain

import "strings"

// DefaultPlayerName is used when a new character is created with a blank name.
const DefaultPlayerName = "Adventurer"

// xpPerLevel is the width of one level band on the prototype curve.
const xpPerLevel = 100.0

// LevelForXP derives the level for an experience total: floor(xp/100)+1,
// never below 1. Every XP mutation must go through this derivation.
func LevelForXP(xp float64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/xpPerLevel) + 1
}

// SkillState holds one player's mutable progress in a single skill.
type SkillState struct {
	XP           float64
	Level        int
	ActionCounts map[string]int
}

// NewSkillState constructs a fresh skill state at level 1 with no experience.
func NewSkillState() *SkillState {
	return &SkillState{Level: 1, ActionCounts: map[string]int{}}
}

// AddXP grants experience and re-derives the cached level in the same
// mutation. It reports whether the level increased.
func (s *SkillState) AddXP(amount float64) bool {
	s.XP += amount
	level := LevelForXP(s.XP)
	if level > s.Level {
		s.Level = level
		return true
	}
	s.Level = level
	return false
}

// RecordAction increments the completion counter for an action.
func (s *SkillState) RecordAction(actionID string) {
	if s.ActionCounts == nil {
		s.ActionCounts = map[string]int{}
	}
	s.ActionCounts[actionID]++
}

// PlayerState is the root aggregate for one character. The progression
// engine is its only writer; the collection log only ever grows.
type PlayerState struct {
	Name          string
	Inventory     map[string]int
	Skills        map[string]*SkillState
	CollectionLog map[string]int
}

// NewPlayer constructs a fresh character with one skill state per catalog
// skill id. A blank name falls back to DefaultPlayerName.
func NewPlayer(name string, skillIDs []string) *PlayerState {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPlayerName
	}
	skills := make(map[string]*SkillState, len(skillIDs))
	for _, id := range skillIDs {
		skills[id] = NewSkillState()
	}
	return &PlayerState{
		Name:          name,
		Inventory:     map[string]int{},
		Skills:        skills,
		CollectionLog: map[string]int{},
	}
}

// Skill returns the state for a skill id, creating it on first use so
// catalogs extended after character creation stay playable.
func (p *PlayerState) Skill(id string) *SkillState {
	if p.Skills == nil {
		p.Skills = map[string]*SkillState{}
	}
	state, ok := p.Skills[id]
	if !ok {
		state = NewSkillState()
		p.Skills[id] = state
	}
	return state
}

// GrantItem adds quantity to the inventory and the collection log. The
// log records total ever obtained and is independent of later spending.
func (p *PlayerState) GrantItem(itemID string, qty int) {
	if qty <= 0 {
		return
	}
	if p.Inventory == nil {
		p.Inventory = map[string]int{}
	}
	if p.CollectionLog == nil {
		p.CollectionLog = map[string]int{}
	}
	p.Inventory[itemID] += qty
	p.CollectionLog[itemID] += qty
}
