package filter

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// Reserved query parameters that never name a field.
const (
	ParamPage       = "page"
	ParamPerPage    = "per_page"
	ParamSort       = "sort"
	ParamExpression = "filter"
)

// Order is one ORDER BY term.
type Order struct {
	Expr string
	Desc bool
}

// Set is the filter specification of one browsable entity type.
type Set struct {
	// Name is the entity name used in URLs, e.g. "spells".
	Name string
	// Table is the filtered table.
	Table string
	// Fields are the recognised filters, in presentation order.
	Fields []Field
	// Order is the default ordering; the table id is always appended as a tiebreaker.
	Order []Order
	// Sorts maps accepted `sort` keys to SQL expressions.
	Sorts map[string]string
	// Expressions enables the AIP-160 `filter` parameter over direct columns.
	Expressions bool
}

// Validate checks the set declaration for mistakes that would produce broken SQL.
func (s *Set) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return eris.New("filter set name is required")
	}
	if strings.TrimSpace(s.Table) == "" {
		return eris.Errorf("filter set %s has no table", s.Name)
	}

	seen := map[string]bool{}
	groups := map[string][]Field{}
	for _, field := range s.Fields {
		if field.Name == "" {
			return eris.Errorf("filter set %s has a field without name", s.Name)
		}
		for _, param := range field.Params() {
			if seen[param] {
				return eris.Errorf("filter set %s declares parameter %s twice", s.Name, param)
			}
			seen[param] = true
		}
		switch field.Kind {
		case KindChoice, KindMultiChoice:
			if field.Choices == nil {
				return eris.Errorf("field %s.%s needs a choice source", s.Name, field.Name)
			}
		case KindTagged:
			if field.Tagged == nil {
				return eris.Errorf("field %s.%s needs a tagged lookup", s.Name, field.Name)
			}
		case KindText, KindRange, KindNumber, KindBoolean:
		default:
			return eris.Errorf("field %s.%s has unknown kind", s.Name, field.Name)
		}
		if field.Group != "" {
			groups[field.Group] = append(groups[field.Group], field)
		}
	}

	for name, members := range groups {
		longest := longestPath(members)
		for _, member := range members {
			if member.Path.Direct() || !longest.hasPrefix(member.Path) {
				return eris.Errorf("field %s.%s does not share the hops of group %s", s.Name, member.Name, name)
			}
		}
	}

	return nil
}

// Field returns the declared field with the given name.
func (s *Set) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldDescription is the presentation view of a field, with its live choices.
type FieldDescription struct {
	Name   string        `json:"name"`
	Label  string        `json:"label"`
	Help   string        `json:"help,omitempty"`
	Kind   string        `json:"kind"`
	Params []string      `json:"params"`
	Groups []ChoiceGroup `json:"groups,omitempty"`
}

// Describe lists the fields of the set. Choice domains are read from db on every call.
func (s *Set) Describe(ctx context.Context, db *gorm.DB) ([]FieldDescription, error) {
	descriptions := make([]FieldDescription, 0, len(s.Fields))
	for _, field := range s.Fields {
		description := FieldDescription{
			Name:   field.Name,
			Label:  field.Label,
			Help:   field.Help,
			Kind:   field.Kind.String(),
			Params: field.Params(),
		}
		if description.Label == "" {
			description.Label = defaultLabel(field.Name)
		}

		switch {
		case field.Choices != nil:
			groups, err := field.Choices(ctx, db)
			if err != nil {
				return nil, eris.Wrapf(err, "computing choices for %s.%s", s.Name, field.Name)
			}
			description.Groups = groups
		case field.Tagged != nil:
			description.Groups = []ChoiceGroup{{Choices: field.Tagged.Kinds}}
		}

		descriptions = append(descriptions, description)
	}
	return descriptions, nil
}

func longestPath(fields []Field) Path {
	var longest Path
	for _, field := range fields {
		if len(field.Path.Hops) > len(longest.Hops) {
			longest = field.Path
		}
	}
	return longest
}

func defaultLabel(name string) string {
	parts := strings.Split(name, "__")
	label := strings.ReplaceAll(parts[len(parts)-1], "_", " ")
	if len(parts) > 1 && label == "slug" {
		label = strings.ReplaceAll(parts[len(parts)-2], "_", " ")
	}
	if label == "" {
		return name
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func firstValue(values url.Values, names ...string) string {
	for _, name := range names {
		for _, value := range values[name] {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func allValues(values url.Values, name string) []string {
	var out []string
	for _, value := range values[name] {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
