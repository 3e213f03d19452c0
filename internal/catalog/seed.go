package catalog

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultItemsYAML is the starter item feed written on first run.
const defaultItemsYAML = `items:
  - id: oak_log
    name: Oak Log
    tier: 1
    value: 2
  - id: willow_log
    name: Willow Log
    tier: 2
    value: 8
  - id: copper_ore
    name: Copper Ore
    tier: 1
    value: 3
  - id: iron_ore
    name: Iron Ore
    tier: 2
    value: 10
  - id: river_trout
    name: River Trout
    tier: 1
    value: 4
  - id: sea_bass
    name: Sea Bass
    tier: 2
    value: 12
`

// defaultSkillsYAML is the starter skill feed written on first run.
const defaultSkillsYAML = `skills:
  - id: woodcutting
    name: Woodcutting
    description: Fell trees for logs. Higher levels swing faster.
    base_rate: 1.0
    rate_per_level: 0.2
    actions:
      - id: chop_oak
        name: Chop Oak Trees
        item_id: oak_log
        required_level: 1
        action_value: 5
        flavor: Steady oaks on the forest edge.
      - id: chop_willow
        name: Chop Willow Trees
        item_id: willow_log
        required_level: 5
        action_value: 12
        flavor: Willows bend, axes do not.
  - id: mining
    name: Mining
    description: Break rocks for ore.
    base_rate: 0.8
    rate_per_level: 0.25
    actions:
      - id: mine_copper
        name: Mine Copper
        item_id: copper_ore
        required_level: 1
        action_value: 6
        flavor: Green-streaked and soft.
      - id: mine_iron
        name: Mine Iron
        item_id: iron_ore
        required_level: 6
        action_value: 15
        flavor: The smiths pay well for this.
  - id: fishing
    name: Fishing
    description: Patience at the water's edge.
    base_rate: 1.2
    rate_per_level: 0.15
    actions:
      - id: fish_trout
        name: Fish Trout
        item_id: river_trout
        required_level: 1
        action_value: 7
        flavor: They rise at dusk.
      - id: fish_bass
        name: Fish Sea Bass
        item_id: sea_bass
        required_level: 4
        action_value: 14
        flavor: Worth the longer cast.
`

// Seed writes the default feeds into dir when they are missing, so a
// fresh install is playable without hand-authoring a catalog. Existing
// files are never overwritten.
func Seed(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	files := map[string]string{
		ItemsFileName:  defaultItemsYAML,
		SkillsFileName: defaultSkillsYAML,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat catalog feed %s: %w", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write catalog feed %s: %w", name, err)
		}
	}
	return nil
}
