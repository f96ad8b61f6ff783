package filter

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind identifies how a field interprets its query parameter values.
type Kind int

const (
	KindText Kind = iota + 1
	KindChoice
	KindMultiChoice
	KindRange
	KindNumber
	KindBoolean
	KindTagged
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindChoice:
		return "choice"
	case KindMultiChoice:
		return "multi-choice"
	case KindRange:
		return "range"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindTagged:
		return "tagged"
	default:
		return "unknown"
	}
}

// Hop joins one more table onto a filter path.
type Hop struct {
	// Table is the table reached by this hop.
	Table string
	// From is the column on the previous table (the filtered table for the first hop).
	From string
	// To is the column on Table matched against From.
	To string
}

// Path locates the column a field constrains, relative to the filtered table.
type Path struct {
	Hops   []Hop
	Column string
}

// Column returns a path to a column of the filtered table itself.
func Column(name string) Path {
	return Path{Column: name}
}

// Via returns a path reaching column through the supplied hops.
func Via(column string, hops ...Hop) Path {
	return Path{Hops: hops, Column: column}
}

// Direct reports whether the path stays on the filtered table.
func (p Path) Direct() bool {
	return len(p.Hops) == 0
}

func (p Path) qualified(base string) string {
	if p.Direct() {
		return base + "." + p.Column
	}
	return p.Hops[len(p.Hops)-1].Table + "." + p.Column
}

// hasPrefix reports whether other's hops are a prefix of p's hops.
func (p Path) hasPrefix(other Path) bool {
	if len(other.Hops) > len(p.Hops) {
		return false
	}
	for i, hop := range other.Hops {
		if p.Hops[i] != hop {
			return false
		}
	}
	return true
}

// membership wraps the given conditions into an IN subquery walking the hops.
func (p Path) membership(base string, conditions []string) string {
	where := strings.Join(conditions, " AND ")
	if p.Direct() {
		return where
	}

	first := p.Hops[0]
	var sub strings.Builder
	fmt.Fprintf(&sub, "SELECT %s.%s FROM %s", first.Table, first.To, first.Table)

	previous := first.Table
	for _, hop := range p.Hops[1:] {
		fmt.Fprintf(&sub, " JOIN %s ON %s.%s = %s.%s", hop.Table, hop.Table, hop.To, previous, hop.From)
		previous = hop.Table
	}

	return fmt.Sprintf("%s.%s IN (%s WHERE %s)", base, first.From, sub.String(), where)
}

// Choice is one selectable value of a choice field.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ChoiceGroup bundles choices under an optional heading, e.g. rulebooks per edition.
type ChoiceGroup struct {
	Label   string   `json:"label,omitempty"`
	Choices []Choice `json:"choices"`
}

// ChoiceSource computes the choice domain of a field from the live catalog.
type ChoiceSource func(ctx context.Context, db *gorm.DB) ([]ChoiceGroup, error)

// StaticChoices returns a source with a fixed, ungrouped domain.
func StaticChoices(choices ...Choice) ChoiceSource {
	return func(context.Context, *gorm.DB) ([]ChoiceGroup, error) {
		return []ChoiceGroup{{Choices: choices}}, nil
	}
}

func containsChoice(groups []ChoiceGroup, value string) bool {
	for _, group := range groups {
		for _, choice := range group.Choices {
			if choice.Value == value {
				return true
			}
		}
	}
	return false
}

// TaggedLookup describes a child collection of tagged variants whose rendered
// text can be searched, optionally restricted to some variant kinds.
type TaggedLookup struct {
	// Table holds the variant rows.
	Table string
	// Owner is the column of Table referencing the filtered table's id.
	Owner string
	// KindColumn is the discriminator column of Table.
	KindColumn string
	// Joins are extra JOIN clauses needed by Text.
	Joins []string
	// Text is a SQL expression rendering a variant row as text.
	Text string
	// KindParam is the query parameter selecting the variant kind.
	KindParam string
	// Kinds lists the accepted variant kinds.
	Kinds []Choice
}

// Field declares one recognised query parameter of a Set.
type Field struct {
	Name    string
	Label   string
	Help    string
	Kind    Kind
	Path    Path
	Group   string
	Numeric bool
	Choices ChoiceSource
	Tagged  *TaggedLookup
}

// Params lists the query parameter names read by the field.
func (f Field) Params() []string {
	switch f.Kind {
	case KindRange:
		return []string{f.Name + "_min", f.Name + "_max", f.Name + "_0", f.Name + "_1"}
	case KindTagged:
		if f.Tagged != nil && f.Tagged.KindParam != "" {
			return []string{f.Name, f.Tagged.KindParam}
		}
		return []string{f.Name}
	default:
		return []string{f.Name}
	}
}
