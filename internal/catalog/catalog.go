// Package catalog loads the immutable item and skill definitions the
// progression engine runs against. Definitions come from two YAML feeds
// and are read-only after load.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hylla/samla/internal/domain"
)

// ErrInvalidDefinition marks a catalog feed that is missing required
// fields or carries out-of-range values.
var ErrInvalidDefinition = errors.New("invalid catalog definition")

// Defaults applied when the skill feed omits optional fields.
const (
	DefaultBaseRate      = 1.0
	DefaultRatePerLevel  = 0.2
	defaultRequiredLevel = 1
)

// Feed file names inside the catalog directory.
const (
	ItemsFileName  = "items.yaml"
	SkillsFileName = "skills.yaml"
)

// Catalog holds the loaded definitions. Skill enumeration preserves the
// feed's sequence order so activity lists render deterministically.
type Catalog struct {
	items      map[string]domain.ItemDefinition
	skills     map[string]domain.SkillDefinition
	skillOrder []string
}

type itemsFeed struct {
	Items []itemRecord `yaml:"items"`
}

type itemRecord struct {
	ID    string  `yaml:"id"`
	Name  string  `yaml:"name"`
	Image string  `yaml:"image"`
	Tier  int     `yaml:"tier"`
	Value float64 `yaml:"value"`
}

type skillsFeed struct {
	Skills []skillRecord `yaml:"skills"`
}

type skillRecord struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	BaseRate     *float64       `yaml:"base_rate"`
	RatePerLevel *float64       `yaml:"rate_per_level"`
	Actions      []actionRecord `yaml:"actions"`
}

type actionRecord struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	ItemID        string  `yaml:"item_id"`
	RequiredLevel int     `yaml:"required_level"`
	ActionValue   float64 `yaml:"action_value"`
	Flavor        string  `yaml:"flavor"`
}

// Load decodes and validates the two catalog feeds.
func Load(itemsSrc, skillsSrc io.Reader) (*Catalog, error) {
	cat := &Catalog{
		items:  map[string]domain.ItemDefinition{},
		skills: map[string]domain.SkillDefinition{},
	}

	var items itemsFeed
	if err := decodeYAML(itemsSrc, &items); err != nil {
		return nil, fmt.Errorf("decode items feed: %w", err)
	}
	for i, rec := range items.Items {
		item, err := itemFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		cat.items[item.ID] = item
	}

	var skills skillsFeed
	if err := decodeYAML(skillsSrc, &skills); err != nil {
		return nil, fmt.Errorf("decode skills feed: %w", err)
	}
	for i, rec := range skills.Skills {
		skill, err := skillFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("skills[%d]: %w", i, err)
		}
		if _, dup := cat.skills[skill.ID]; dup {
			return nil, fmt.Errorf("skills[%d]: duplicate skill id %q: %w", i, skill.ID, ErrInvalidDefinition)
		}
		cat.skills[skill.ID] = skill
		cat.skillOrder = append(cat.skillOrder, skill.ID)
	}

	return cat, nil
}

// LoadDir loads items.yaml and skills.yaml from a catalog directory.
func LoadDir(dir string) (*Catalog, error) {
	itemsFile, err := os.Open(filepath.Join(dir, ItemsFileName))
	if err != nil {
		return nil, fmt.Errorf("open items feed: %w", err)
	}
	defer itemsFile.Close()

	skillsFile, err := os.Open(filepath.Join(dir, SkillsFileName))
	if err != nil {
		return nil, fmt.Errorf("open skills feed: %w", err)
	}
	defer skillsFile.Close()

	return Load(itemsFile, skillsFile)
}

// Item looks up an item definition. Unknown ids resolve to a placeholder
// so rendering paths never fail on a dangling reference.
func (c *Catalog) Item(id string) domain.ItemDefinition {
	if item, ok := c.items[id]; ok {
		return item
	}
	return domain.PlaceholderItem(id)
}

// HasItem reports whether an item id is actually defined in the feed.
func (c *Catalog) HasItem(id string) bool {
	_, ok := c.items[id]
	return ok
}

// Skill looks up a skill definition by id.
func (c *Catalog) Skill(id string) (domain.SkillDefinition, bool) {
	skill, ok := c.skills[id]
	return skill, ok
}

// Skills returns all skill definitions in feed order.
func (c *Catalog) Skills() []domain.SkillDefinition {
	out := make([]domain.SkillDefinition, 0, len(c.skillOrder))
	for _, id := range c.skillOrder {
		out = append(out, c.skills[id])
	}
	return out
}

// SkillIDs returns all skill ids in feed order.
func (c *Catalog) SkillIDs() []string {
	return append([]string(nil), c.skillOrder...)
}

func decodeYAML(src io.Reader, into any) error {
	raw, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return nil
}

func itemFromRecord(rec itemRecord) (domain.ItemDefinition, error) {
	rec.ID = strings.TrimSpace(rec.ID)
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.ID == "" {
		return domain.ItemDefinition{}, fmt.Errorf("%w: %w", ErrInvalidDefinition, domain.ErrInvalidID)
	}
	if rec.Name == "" {
		return domain.ItemDefinition{}, fmt.Errorf("item %q: %w: %w", rec.ID, ErrInvalidDefinition, domain.ErrInvalidName)
	}
	return domain.ItemDefinition{
		ID:    rec.ID,
		Name:  rec.Name,
		Image: strings.TrimSpace(rec.Image),
		Tier:  rec.Tier,
		Value: rec.Value,
	}, nil
}

func skillFromRecord(rec skillRecord) (domain.SkillDefinition, error) {
	rec.ID = strings.TrimSpace(rec.ID)
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.ID == "" {
		return domain.SkillDefinition{}, fmt.Errorf("%w: %w", ErrInvalidDefinition, domain.ErrInvalidID)
	}
	if rec.Name == "" {
		return domain.SkillDefinition{}, fmt.Errorf("skill %q: %w: %w", rec.ID, ErrInvalidDefinition, domain.ErrInvalidName)
	}

	baseRate := DefaultBaseRate
	if rec.BaseRate != nil {
		baseRate = *rec.BaseRate
	}
	ratePerLevel := DefaultRatePerLevel
	if rec.RatePerLevel != nil {
		ratePerLevel = *rec.RatePerLevel
	}
	if baseRate < 0 || ratePerLevel < 0 {
		return domain.SkillDefinition{}, fmt.Errorf("skill %q: %w: %w", rec.ID, ErrInvalidDefinition, domain.ErrInvalidRate)
	}

	skill := domain.SkillDefinition{
		ID:           rec.ID,
		Name:         rec.Name,
		Description:  strings.TrimSpace(rec.Description),
		BaseRate:     baseRate,
		RatePerLevel: ratePerLevel,
	}
	for i, a := range rec.Actions {
		action, err := actionFromRecord(a)
		if err != nil {
			return domain.SkillDefinition{}, fmt.Errorf("skill %q actions[%d]: %w", rec.ID, i, err)
		}
		skill.Actions = append(skill.Actions, action)
	}
	return skill, nil
}

func actionFromRecord(rec actionRecord) (domain.ActivityAction, error) {
	rec.ID = strings.TrimSpace(rec.ID)
	rec.Name = strings.TrimSpace(rec.Name)
	rec.ItemID = strings.TrimSpace(rec.ItemID)
	if rec.ID == "" {
		return domain.ActivityAction{}, fmt.Errorf("%w: %w", ErrInvalidDefinition, domain.ErrInvalidID)
	}
	if rec.Name == "" {
		return domain.ActivityAction{}, fmt.Errorf("action %q: %w: %w", rec.ID, ErrInvalidDefinition, domain.ErrInvalidName)
	}
	if rec.ItemID == "" {
		return domain.ActivityAction{}, fmt.Errorf("action %q: %w: missing item_id", rec.ID, ErrInvalidDefinition)
	}
	if rec.ActionValue <= 0 {
		return domain.ActivityAction{}, fmt.Errorf("action %q: %w: %w", rec.ID, ErrInvalidDefinition, domain.ErrInvalidCost)
	}
	if rec.RequiredLevel < 1 {
		rec.RequiredLevel = defaultRequiredLevel
	}
	return domain.ActivityAction{
		ID:            rec.ID,
		Name:          rec.Name,
		ItemID:        rec.ItemID,
		RequiredLevel: rec.RequiredLevel,
		Cost:          rec.ActionValue,
		Flavor:        rec.Flavor,
	}, nil
}
