package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hylla/samla/internal/domain"
)

// SaveFile is the wire form of one player save. It round-trips
// losslessly: Decode(Encode(p)) reproduces the player state.
type SaveFile struct {
	Name          string                `json:"name"`
	Inventory     map[string]int        `json:"inventory"`
	Skills        map[string]SavedSkill `json:"skills"`
	CollectionLog SavedCollectionLog    `json:"collection_log"`
}

// SavedSkill is the wire form of one skill's progress.
type SavedSkill struct {
	XP      float64        `json:"xp"`
	Level   int            `json:"level"`
	Actions map[string]int `json:"actions"`
}

// SavedCollectionLog is the wire form of the collection log.
type SavedCollectionLog struct {
	Items map[string]int `json:"items"`
}

// EncodeSave serializes a player state into the save payload.
func EncodeSave(p *domain.PlayerState) ([]byte, error) {
	file := SaveFile{
		Name:          p.Name,
		Inventory:     map[string]int{},
		Skills:        map[string]SavedSkill{},
		CollectionLog: SavedCollectionLog{Items: map[string]int{}},
	}
	for id, qty := range p.Inventory {
		file.Inventory[id] = qty
	}
	for id, state := range p.Skills {
		saved := SavedSkill{XP: state.XP, Level: state.Level, Actions: map[string]int{}}
		for actionID, count := range state.ActionCounts {
			saved.Actions[actionID] = count
		}
		file.Skills[id] = saved
	}
	for id, qty := range p.CollectionLog {
		file.CollectionLog.Items[id] = qty
	}
	return json.Marshal(file)
}

// DecodeSave parses a save payload back into a player state. Malformed
// payloads fail with ErrCorruptSave; no partial state is returned. The
// cached level is re-derived from xp so a payload can never introduce a
// stale level.
func DecodeSave(data []byte) (*domain.PlayerState, error) {
	var file SaveFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	if strings.TrimSpace(file.Name) == "" {
		return nil, fmt.Errorf("%w: missing player name", ErrCorruptSave)
	}

	player := &domain.PlayerState{
		Name:          strings.TrimSpace(file.Name),
		Inventory:     map[string]int{},
		Skills:        map[string]*domain.SkillState{},
		CollectionLog: map[string]int{},
	}
	for id, qty := range file.Inventory {
		if qty < 0 {
			return nil, fmt.Errorf("%w: negative inventory quantity for %q", ErrCorruptSave, id)
		}
		player.Inventory[id] = qty
	}
	for id, saved := range file.Skills {
		if saved.XP < 0 {
			return nil, fmt.Errorf("%w: negative xp for skill %q", ErrCorruptSave, id)
		}
		state := &domain.SkillState{
			XP:           saved.XP,
			Level:        domain.LevelForXP(saved.XP),
			ActionCounts: map[string]int{},
		}
		for actionID, count := range saved.Actions {
			if count < 0 {
				return nil, fmt.Errorf("%w: negative action count for %q", ErrCorruptSave, actionID)
			}
			state.ActionCounts[actionID] = count
		}
		player.Skills[id] = state
	}
	for id, qty := range file.CollectionLog.Items {
		if qty < 0 {
			return nil, fmt.Errorf("%w: negative collection-log quantity for %q", ErrCorruptSave, id)
		}
		player.CollectionLog[id] = qty
	}
	return player, nil
}
