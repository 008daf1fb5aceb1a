// Package catalog holds the static reference data for every purchasable
// item type. The data is embedded at build time and immutable after Load.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var rawData []byte

type Category string

const (
	CategoryMiner Category = "miner"
	CategoryShelf Category = "shelf"
	CategoryRoom  Category = "room"
	CategoryBox   Category = "box"
)

type Tier string

const (
	TierBasic     Tier = "basic"
	TierCommon    Tier = "common"
	TierRare      Tier = "rare"
	TierEpic      Tier = "epic"
	TierLegendary Tier = "legendary"
	TierBox       Tier = "box"
	TierSpecial   Tier = "special"
)

// RollableTiers are the tiers a box roll can produce, lowest first.
var RollableTiers = []Tier{TierBasic, TierCommon, TierRare, TierEpic, TierLegendary}

// Entry describes one purchasable item type. Price 0 means the entry is
// unobtainable directly and only drops from a box.
type Entry struct {
	ID          string   `yaml:"id" json:"id"`
	Category    Category `yaml:"-" json:"category"`
	Tier        Tier     `yaml:"tier" json:"tier"`
	Name        string   `yaml:"name" json:"name"`
	Price       float64  `yaml:"price" json:"price"`
	Description string   `yaml:"description" json:"description,omitempty"`

	// Miner only.
	DailyYield float64 `yaml:"daily_yield" json:"daily_yield,omitempty"`
	PowerDraw  float64 `yaml:"power_draw" json:"power_draw,omitempty"`
	FanCount   int     `yaml:"fans" json:"fans,omitempty"`
	SkinStyle  string  `yaml:"skin" json:"skin,omitempty"`
	Special    bool    `yaml:"special" json:"special,omitempty"`

	// Shelf/room only.
	SlotCapacity int `yaml:"slots" json:"slots,omitempty"`

	// Room only. Token cost per 12-hour rent cycle.
	RentCost float64 `yaml:"rent" json:"rent,omitempty"`

	// Box only. Which category of item the box yields.
	Contains Category `yaml:"contains" json:"contains,omitempty"`

	// Hidden entries are excluded from the direct-purchase listing and
	// reachable only through a box reward.
	Hidden bool `yaml:"hidden" json:"hidden,omitempty"`
}

type Catalog struct {
	byCategory map[Category][]Entry
	byKey      map[string]Entry
}

func key(cat Category, id string) string { return string(cat) + "/" + id }

// Load parses the embedded data and validates the box-reachability
// invariant: every {category, tier} pair a box roll can produce must have
// at least one non-special, non-box entry.
func Load() (*Catalog, error) {
	var doc map[Category][]Entry
	if err := yaml.Unmarshal(rawData, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	c := &Catalog{
		byCategory: make(map[Category][]Entry, len(doc)),
		byKey:      make(map[string]Entry),
	}
	for cat, entries := range doc {
		for _, e := range entries {
			e.Category = cat
			if _, dup := c.byKey[key(cat, e.ID)]; dup {
				return nil, fmt.Errorf("catalog: duplicate entry %s/%s", cat, e.ID)
			}
			c.byCategory[cat] = append(c.byCategory[cat], e)
			c.byKey[key(cat, e.ID)] = e
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	for _, box := range c.List(CategoryBox) {
		if box.Contains == "" {
			return fmt.Errorf("catalog: box %s has no target category", box.ID)
		}
		for _, tier := range RollableTiers {
			if len(c.RollCandidates(box.Contains, tier)) == 0 {
				return fmt.Errorf("catalog: no %s entry of tier %s reachable from box %s", box.Contains, tier, box.ID)
			}
		}
	}
	return nil
}

// Get looks up an entry by category and id.
func (c *Catalog) Get(cat Category, id string) (Entry, bool) {
	e, ok := c.byKey[key(cat, id)]
	return e, ok
}

// List returns every entry of a category in declaration order.
func (c *Catalog) List(cat Category) []Entry {
	return c.byCategory[cat]
}

// Listing returns the direct-purchase view of a category: hidden entries
// excluded, specials included only when wanted.
func (c *Catalog) Listing(cat Category, includeSpecial bool) []Entry {
	out := make([]Entry, 0, len(c.byCategory[cat]))
	for _, e := range c.byCategory[cat] {
		if e.Hidden {
			continue
		}
		if e.Special && !includeSpecial {
			continue
		}
		out = append(out, e)
	}
	return out
}

// RollCandidates returns the entries a box roll may award for a target
// category and rolled tier. Special and box entries never drop.
func (c *Catalog) RollCandidates(cat Category, tier Tier) []Entry {
	out := []Entry{}
	for _, e := range c.byCategory[cat] {
		if e.Tier != tier || e.Special || e.Category == CategoryBox {
			continue
		}
		out = append(out, e)
	}
	return out
}
