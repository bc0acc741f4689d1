// Package tier defines the immutable, ordered catalog of expert tiers.
//
// The catalog holds exactly ten tiers ordered highest to lowest by score
// band. Every lookup is a first-match scan in that order, so a score that
// falls into the small gap between one tier's .99 ceiling and the next
// tier's floor resolves to the lowest tier by the default rule. Scores
// are rounded to two decimals upstream, which keeps those gap values out
// of normal operation.
package tier

import "strings"

// Level bounds shared with the level resolver.
const (
	MinLevel = 1
	MaxLevel = 999
)

// Range is an inclusive integer level band.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ScoreRange is an inclusive score band.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Definition describes one tier: its level band, score band, price rate
// and display tokens. Definitions are value types; the catalog never
// hands out pointers into its backing array.
type Definition struct {
	Name           string     `json:"name"`
	Level          Range      `json:"levelRange"`
	Score          ScoreRange `json:"scoreRange"`
	PricePerMinute int        `json:"pricePerMinute"` // credits per minute
	Color          string     `json:"color"`
	TextColor      string     `json:"textColor"`
}

// Table is the ordered tier catalog. Construct once via Default and pass
// by reference; it is read-only after construction and safe for
// concurrent use.
type Table struct {
	tiers []Definition
}

// Default returns the production tier catalog, highest tier first.
func Default() *Table {
	return &Table{tiers: []Definition{
		{Name: "Challenger", Level: Range{Min: 999, Max: 999}, Score: ScoreRange{Min: 950.00, Max: 999.00}, PricePerMinute: 1500, Color: "#FFD700", TextColor: "#1A1A1A"},
		{Name: "Grandmaster", Level: Range{Min: 900, Max: 998}, Score: ScoreRange{Min: 900.00, Max: 949.99}, PricePerMinute: 1200, Color: "#FF4654", TextColor: "#FFFFFF"},
		{Name: "Master", Level: Range{Min: 800, Max: 899}, Score: ScoreRange{Min: 850.00, Max: 899.99}, PricePerMinute: 900, Color: "#A335EE", TextColor: "#FFFFFF"},
		{Name: "Diamond", Level: Range{Min: 700, Max: 799}, Score: ScoreRange{Min: 800.00, Max: 849.99}, PricePerMinute: 700, Color: "#B9F2FF", TextColor: "#1A1A1A"},
		{Name: "Emerald", Level: Range{Min: 600, Max: 699}, Score: ScoreRange{Min: 750.00, Max: 799.99}, PricePerMinute: 550, Color: "#50C878", TextColor: "#1A1A1A"},
		{Name: "Platinum", Level: Range{Min: 500, Max: 599}, Score: ScoreRange{Min: 700.00, Max: 749.99}, PricePerMinute: 400, Color: "#E5E4E2", TextColor: "#1A1A1A"},
		{Name: "Gold", Level: Range{Min: 400, Max: 499}, Score: ScoreRange{Min: 650.00, Max: 699.99}, PricePerMinute: 300, Color: "#FFB900", TextColor: "#1A1A1A"},
		{Name: "Silver", Level: Range{Min: 300, Max: 399}, Score: ScoreRange{Min: 600.00, Max: 649.99}, PricePerMinute: 200, Color: "#C0C0C0", TextColor: "#1A1A1A"},
		{Name: "Bronze", Level: Range{Min: 200, Max: 299}, Score: ScoreRange{Min: 550.00, Max: 599.99}, PricePerMinute: 150, Color: "#CD7F32", TextColor: "#FFFFFF"},
		{Name: "Iron", Level: Range{Min: 1, Max: 199}, Score: ScoreRange{Min: 0.00, Max: 549.99}, PricePerMinute: 100, Color: "#8B8C8A", TextColor: "#FFFFFF"},
	}}
}

// Len returns the number of tiers in the catalog.
func (t *Table) Len() int {
	return len(t.tiers)
}

// All returns a copy of the catalog, highest tier first.
func (t *Table) All() []Definition {
	out := make([]Definition, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Top returns the highest tier.
func (t *Table) Top() Definition {
	return t.tiers[0]
}

// Lowest returns the lowest tier, which doubles as the default for every
// failed lookup.
func (t *Table) Lowest() Definition {
	return t.tiers[len(t.tiers)-1]
}

// MatchScore scans for the tier whose score band contains score. It
// reports false when no band contains the value (a seam gap or a
// negative score); FindByScore applies the defaulting rules on top.
func (t *Table) MatchScore(score float64) (Definition, bool) {
	for _, d := range t.tiers {
		if score >= d.Score.Min && score <= d.Score.Max {
			return d, true
		}
	}
	return Definition{}, false
}

// FindByScore returns the tier owning score. Scores above the top band's
// ceiling stay in the top tier: the score keeps accumulating past the
// nominal cap, only the level is capped. Unmatched scores fall to the
// lowest tier.
func (t *Table) FindByScore(score float64) Definition {
	if score > t.Top().Score.Max {
		return t.Top()
	}
	if d, ok := t.MatchScore(score); ok {
		return d
	}
	return t.Lowest()
}

// FindByLevel returns the tier whose level band contains level, or the
// lowest tier when level is out of range.
func (t *Table) FindByLevel(lvl int) Definition {
	for _, d := range t.tiers {
		if lvl >= d.Level.Min && lvl <= d.Level.Max {
			return d
		}
	}
	return t.Lowest()
}

// FindByName returns the tier with the given name (case-insensitive), or
// the lowest tier when the name is unknown.
func (t *Table) FindByName(name string) Definition {
	for _, d := range t.tiers {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return t.Lowest()
}

// NextUp returns the tier numerically above the named one, i.e. the one
// an expert is progressing toward. It reports false for the top tier and
// for unknown names.
func (t *Table) NextUp(name string) (Definition, bool) {
	for i, d := range t.tiers {
		if strings.EqualFold(d.Name, name) {
			if i == 0 {
				return Definition{}, false
			}
			return t.tiers[i-1], true
		}
	}
	return Definition{}, false
}

// IsTop reports whether d is the highest tier.
func (t *Table) IsTop(d Definition) bool {
	return d.Name == t.Top().Name
}
