package filter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// Problem records a recognised parameter whose value was rejected.
type Problem struct {
	Param  string `json:"param"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s=%q: %s", p.Param, p.Value, p.Reason)
}

// ValidationError reports every rejected parameter of a request.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, problem := range e.Problems {
		parts = append(parts, problem.String())
	}
	return "invalid filter parameters: " + strings.Join(parts, "; ")
}

// condition is a SQL fragment over a field's qualified column.
type condition struct {
	field Field
	sql   string
	args  []any
}

const noMatches = "1 = 0"

// Parse validates values against the set and composes the resulting query.
// Invalid values are recorded as problems and their filters skipped; only
// database failures while computing choice domains are returned as errors.
func (s *Set) Parse(ctx context.Context, db *gorm.DB, values url.Values) (*Query, error) {
	q := &Query{set: s}

	var ungrouped []condition
	grouped := map[string][]condition{}
	var groupOrder []string

	for _, field := range s.Fields {
		if field.Kind == KindTagged {
			predicate, ok, problems := s.parseTagged(field, values)
			q.problems = append(q.problems, problems...)
			if ok {
				q.predicates = append(q.predicates, predicate)
			}
			continue
		}

		cond, ok, problems, err := parseField(ctx, db, s.Table, field, values)
		if err != nil {
			return nil, eris.Wrapf(err, "parsing %s.%s", s.Name, field.Name)
		}
		q.problems = append(q.problems, problems...)
		if !ok {
			continue
		}

		if field.Group == "" || field.Path.Direct() {
			ungrouped = append(ungrouped, cond)
			continue
		}
		if _, seen := grouped[field.Group]; !seen {
			groupOrder = append(groupOrder, field.Group)
		}
		grouped[field.Group] = append(grouped[field.Group], cond)
	}

	for _, cond := range ungrouped {
		q.predicates = append(q.predicates, Predicate{
			Fields: []string{cond.field.Name},
			SQL:    cond.field.Path.membership(s.Table, []string{cond.sql}),
			Args:   cond.args,
		})
	}

	for _, group := range groupOrder {
		conds := grouped[group]
		fields := make([]Field, 0, len(conds))
		names := make([]string, 0, len(conds))
		sqls := make([]string, 0, len(conds))
		var args []any
		for _, cond := range conds {
			fields = append(fields, cond.field)
			names = append(names, cond.field.Name)
			sqls = append(sqls, cond.sql)
			args = append(args, cond.args...)
		}
		q.predicates = append(q.predicates, Predicate{
			Fields: names,
			SQL:    longestPath(fields).membership(s.Table, sqls),
			Args:   args,
		})
	}

	if raw := firstValue(values, ParamExpression); raw != "" {
		if !s.Expressions {
			q.problems = append(q.problems, Problem{Param: ParamExpression, Value: raw, Reason: "expressions are not supported for " + s.Name})
		} else if predicate, err := s.parseExpression(raw); err != nil {
			q.problems = append(q.problems, Problem{Param: ParamExpression, Value: raw, Reason: eris.Cause(err).Error()})
		} else if predicate.SQL != "" {
			q.predicates = append(q.predicates, predicate)
		}
	}

	q.order = s.defaultOrder()
	if raw := firstValue(values, ParamSort); raw != "" {
		order, ok := s.sortOrder(raw)
		if ok {
			q.order = order
		} else {
			q.problems = append(q.problems, Problem{Param: ParamSort, Value: raw, Reason: "unknown sort key"})
		}
	}

	return q, nil
}

func parseField(ctx context.Context, db *gorm.DB, base string, field Field, values url.Values) (condition, bool, []Problem, error) {
	column := field.Path.qualified(base)
	cond := condition{field: field}

	switch field.Kind {
	case KindText:
		value := firstValue(values, field.Name)
		if value == "" {
			return cond, false, nil, nil
		}
		cond.sql = containsSQL(column)
		cond.args = []any{likePattern(value)}
		return cond, true, nil, nil

	case KindChoice:
		value := firstValue(values, field.Name)
		if value == "" {
			return cond, false, nil, nil
		}
		groups, err := field.Choices(ctx, db)
		if err != nil {
			return cond, false, nil, err
		}
		if !containsChoice(groups, value) {
			return cond, false, []Problem{{Param: field.Name, Value: value, Reason: "not one of the available choices"}}, nil
		}
		converted, ok := field.convert(value)
		if !ok {
			return cond, false, []Problem{{Param: field.Name, Value: value, Reason: "not a number"}}, nil
		}
		cond.sql = column + " = ?"
		cond.args = []any{converted}
		return cond, true, nil, nil

	case KindMultiChoice:
		raw := allValues(values, field.Name)
		if len(raw) == 0 {
			return cond, false, nil, nil
		}
		groups, err := field.Choices(ctx, db)
		if err != nil {
			return cond, false, nil, err
		}
		var problems []Problem
		var accepted []any
		seen := map[string]bool{}
		for _, value := range raw {
			if seen[value] {
				continue
			}
			seen[value] = true
			converted, ok := field.convert(value)
			if !ok || !containsChoice(groups, value) {
				problems = append(problems, Problem{Param: field.Name, Value: value, Reason: "not one of the available choices"})
				continue
			}
			accepted = append(accepted, converted)
		}
		if len(accepted) == 0 {
			return cond, false, problems, nil
		}
		cond.sql = column + " IN ?"
		cond.args = []any{accepted}
		return cond, true, problems, nil

	case KindRange:
		return parseRange(field, column, values)

	case KindNumber:
		value := firstValue(values, field.Name)
		if value == "" {
			return cond, false, nil, nil
		}
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return cond, false, []Problem{{Param: field.Name, Value: value, Reason: "not a number"}}, nil
		}
		cond.sql = column + " = ?"
		cond.args = []any{numericArg(number)}
		return cond, true, nil, nil

	case KindBoolean:
		value := firstValue(values, field.Name)
		if value == "" {
			return cond, false, nil, nil
		}
		flag, ok := parseBool(value)
		if !ok {
			return cond, false, []Problem{{Param: field.Name, Value: value, Reason: "not a boolean"}}, nil
		}
		cond.sql = column + " = ?"
		cond.args = []any{flag}
		return cond, true, nil, nil
	}

	return cond, false, nil, nil
}

func parseRange(field Field, column string, values url.Values) (condition, bool, []Problem, error) {
	cond := condition{field: field}
	var problems []Problem

	bound := func(names ...string) (float64, bool) {
		raw := firstValue(values, names...)
		if raw == "" {
			return 0, false
		}
		number, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			problems = append(problems, Problem{Param: names[0], Value: raw, Reason: "not a number"})
			return 0, false
		}
		return number, true
	}

	lower, hasLower := bound(field.Name+"_min", field.Name+"_0")
	upper, hasUpper := bound(field.Name+"_max", field.Name+"_1")

	switch {
	case hasLower && hasUpper && lower > upper:
		cond.sql = noMatches
	case hasLower && hasUpper:
		cond.sql = column + " >= ? AND " + column + " <= ?"
		cond.args = []any{numericArg(lower), numericArg(upper)}
	case hasLower:
		cond.sql = column + " >= ?"
		cond.args = []any{numericArg(lower)}
	case hasUpper:
		cond.sql = column + " <= ?"
		cond.args = []any{numericArg(upper)}
	default:
		return cond, false, problems, nil
	}

	return cond, true, problems, nil
}

func (s *Set) parseTagged(field Field, values url.Values) (Predicate, bool, []Problem) {
	lookup := field.Tagged
	text := firstValue(values, field.Name)

	var problems []Problem
	kind := ""
	if lookup.KindParam != "" {
		kind = firstValue(values, lookup.KindParam)
		if kind != "" && !containsChoice([]ChoiceGroup{{Choices: lookup.Kinds}}, kind) {
			problems = append(problems, Problem{Param: lookup.KindParam, Value: kind, Reason: "unknown kind"})
			kind = ""
		}
	}

	if text == "" && kind == "" {
		return Predicate{}, false, problems
	}

	var conditions []string
	var args []any
	if kind != "" {
		conditions = append(conditions, fmt.Sprintf("%s.%s = ?", lookup.Table, lookup.KindColumn))
		args = append(args, kind)
	}
	if text != "" {
		conditions = append(conditions, containsSQL(lookup.Text))
		args = append(args, likePattern(text))
	}

	var sub strings.Builder
	fmt.Fprintf(&sub, "SELECT %s.%s FROM %s", lookup.Table, lookup.Owner, lookup.Table)
	for _, join := range lookup.Joins {
		sub.WriteString(" ")
		sub.WriteString(join)
	}

	names := []string{field.Name}
	if lookup.KindParam != "" {
		names = append(names, lookup.KindParam)
	}

	return Predicate{
		Fields: names,
		SQL:    fmt.Sprintf("%s.id IN (%s WHERE %s)", s.Table, sub.String(), strings.Join(conditions, " AND ")),
		Args:   args,
	}, true, problems
}

func (s *Set) defaultOrder() []Order {
	order := append([]Order(nil), s.Order...)
	if len(order) == 0 {
		order = append(order, Order{Expr: s.Table + ".name"})
	}
	return append(order, Order{Expr: s.Table + ".id"})
}

func (s *Set) sortOrder(raw string) ([]Order, bool) {
	desc := strings.HasPrefix(raw, "-")
	key := strings.TrimPrefix(strings.TrimPrefix(raw, "-"), "+")
	expr, ok := s.Sorts[key]
	if !ok {
		return nil, false
	}
	return []Order{{Expr: expr, Desc: desc}, {Expr: s.Table + ".id"}}, true
}

func (f Field) convert(value string) (any, bool) {
	if !f.Numeric {
		return value, true
	}
	number, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, false
	}
	return number, true
}

// containsSQL folds both sides with the store's LOWER so that case matching
// is consistent per driver. SQLite folds only ASCII letters, so "élan" does
// not find "Élan" there while "ÉLAN" does.
func containsSQL(expr string) string {
	return "LOWER(" + expr + `) LIKE LOWER(?) ESCAPE '\'`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

func numericArg(number float64) any {
	if number == float64(int64(number)) {
		return int64(number)
	}
	return number
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, true
	case "0", "f", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
