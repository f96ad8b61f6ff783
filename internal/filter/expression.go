package filter

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// expressionColumns maps AIP-160 identifiers to the set's direct columns.
func (s *Set) expressionColumns() map[string]Field {
	columns := map[string]Field{}
	for _, field := range s.Fields {
		if !field.Path.Direct() || strings.Contains(field.Name, "__") || field.Kind == KindTagged {
			continue
		}
		columns[field.Name] = field
	}
	return columns
}

func (s *Set) declarations(columns map[string]Field) (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for name, field := range columns {
		switch {
		case field.Kind == KindBoolean:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeBool))
		case field.Kind == KindRange, field.Kind == KindNumber, field.Numeric:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeInt))
		default:
			opts = append(opts, filtering.DeclareIdent(name, filtering.TypeString))
		}
	}
	return filtering.NewDeclarations(opts...)
}

// parseExpression translates an AIP-160 filter over direct columns into a predicate.
func (s *Set) parseExpression(raw string) (Predicate, error) {
	columns := s.expressionColumns()
	decls, err := s.declarations(columns)
	if err != nil {
		return Predicate{}, eris.Wrap(err, "declaring filter identifiers")
	}

	parsed, err := filtering.ParseFilterString(raw, decls)
	if err != nil {
		return Predicate{}, eris.Wrap(err, "parsing filter expression")
	}
	if parsed.CheckedExpr == nil || parsed.CheckedExpr.Expr == nil {
		return Predicate{}, nil
	}

	t := translator{base: s.Table, columns: columns}
	sql, args, err := t.expr(parsed.CheckedExpr.Expr)
	if err != nil {
		return Predicate{}, err
	}

	return Predicate{Fields: []string{ParamExpression}, SQL: sql, Args: args}, nil
}

type translator struct {
	base    string
	columns map[string]Field
}

func (t translator) expr(e *expr.Expr) (string, []any, error) {
	call, ok := e.GetExprKind().(*expr.Expr_CallExpr)
	if !ok {
		return "", nil, eris.Errorf("unsupported expression %T", e.GetExprKind())
	}
	return t.call(call.CallExpr)
}

func (t translator) call(call *expr.Expr_Call) (string, []any, error) {
	switch call.GetFunction() {
	case "AND", "FUZZY", "_&&_":
		return t.logical(call.GetArgs(), "AND")
	case "OR", "_||_":
		return t.logical(call.GetArgs(), "OR")
	case "NOT", "-":
		if len(call.GetArgs()) != 1 {
			return "", nil, eris.New("NOT requires one argument")
		}
		sql, args, err := t.expr(call.GetArgs()[0])
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + sql + ")", args, nil
	case "=", "_==_":
		return t.compare(call.GetArgs(), "=")
	case "!=", "_!=_":
		return t.compare(call.GetArgs(), "<>")
	case "<", "_<_":
		return t.compare(call.GetArgs(), "<")
	case "<=", "_<=_":
		return t.compare(call.GetArgs(), "<=")
	case ">", "_>_":
		return t.compare(call.GetArgs(), ">")
	case ">=", "_>=_":
		return t.compare(call.GetArgs(), ">=")
	case ":":
		return t.has(call.GetArgs())
	default:
		return "", nil, eris.Errorf("unsupported function %s", call.GetFunction())
	}
}

func (t translator) logical(operands []*expr.Expr, op string) (string, []any, error) {
	if len(operands) < 2 {
		return "", nil, eris.Errorf("%s requires two arguments", op)
	}
	parts := make([]string, 0, len(operands))
	var args []any
	for _, operand := range operands {
		sql, operandArgs, err := t.expr(operand)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, operandArgs...)
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", args, nil
}

func (t translator) compare(operands []*expr.Expr, op string) (string, []any, error) {
	column, value, err := t.operands(operands)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s %s ?", column, op), []any{value}, nil
}

func (t translator) has(operands []*expr.Expr) (string, []any, error) {
	column, value, err := t.operands(operands)
	if err != nil {
		return "", nil, err
	}
	text, ok := value.(string)
	if !ok {
		return "", nil, eris.New(": requires a text value")
	}
	return containsSQL(column), []any{likePattern(text)}, nil
}

func (t translator) operands(operands []*expr.Expr) (string, any, error) {
	if len(operands) != 2 {
		return "", nil, eris.New("comparison requires two arguments")
	}

	ident, ok := operands[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return "", nil, eris.New("left operand must be a field name")
	}
	field, ok := t.columns[ident.IdentExpr.GetName()]
	if !ok {
		return "", nil, eris.Errorf("unknown field %s", ident.IdentExpr.GetName())
	}

	value, err := constant(operands[1])
	if err != nil {
		return "", nil, err
	}

	return field.Path.qualified(t.base), value, nil
}

func constant(e *expr.Expr) (any, error) {
	switch kind := e.GetExprKind().(type) {
	case *expr.Expr_ConstExpr:
		switch c := kind.ConstExpr.GetConstantKind().(type) {
		case *expr.Constant_StringValue:
			return c.StringValue, nil
		case *expr.Constant_Int64Value:
			return c.Int64Value, nil
		case *expr.Constant_Uint64Value:
			return int64(c.Uint64Value), nil
		case *expr.Constant_DoubleValue:
			return c.DoubleValue, nil
		case *expr.Constant_BoolValue:
			return c.BoolValue, nil
		default:
			return nil, eris.Errorf("unsupported constant %T", c)
		}
	case *expr.Expr_IdentExpr:
		switch kind.IdentExpr.GetName() {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, eris.Errorf("expected a value, got identifier %s", kind.IdentExpr.GetName())
	default:
		return nil, eris.Errorf("expected a value, got %T", kind)
	}
}
