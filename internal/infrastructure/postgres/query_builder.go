package postgres

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindBool
	kindTime
	kindTextArray
)

type column struct {
	expr string
	kind fieldKind
}

// schema maps the JSON field names clients filter and sort on to SQL columns.
type schema map[string]column

// sqlArgs accumulates positional parameters.
type sqlArgs []any

func (a *sqlArgs) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

var comparison = map[query.Op]string{
	query.OpEq:  "=",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

// where renders the filters as a WHERE clause ("" when there are none).
func (s schema) where(args *sqlArgs, filters []query.Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, 0, len(filters))
	for _, f := range filters {
		col, ok := s[f.Field]
		if !ok {
			return "", apperror.Validation("Unknown filter field %s", f.Field)
		}
		cond, err := condition(args, col, f)
		if err != nil {
			return "", err
		}
		conds = append(conds, cond)
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

func condition(args *sqlArgs, col column, f query.Filter) (string, error) {
	if col.kind == kindTextArray {
		switch f.Op {
		case query.OpEq:
			return args.add(f.Values[0]) + " = ANY(" + col.expr + ")", nil
		case query.OpIn:
			return col.expr + " && " + args.add(f.Values) + "::text[]", nil
		default:
			return "", apperror.Validation("Operator %s is not supported on %s", f.Op, f.Field)
		}
	}

	if f.Op == query.OpIn {
		vals, err := convertAll(col.kind, f.Field, f.Values)
		if err != nil {
			return "", err
		}
		return col.expr + " = ANY(" + args.add(vals) + ")", nil
	}
	v, err := convert(col.kind, f.Field, f.Values[0])
	if err != nil {
		return "", err
	}
	return col.expr + " " + comparison[f.Op] + " " + args.add(v), nil
}

func convert(kind fieldKind, field, raw string) (any, error) {
	switch kind {
	case kindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperror.Validation("%s must be a number", field)
		}
		return n, nil
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperror.Validation("%s must be true or false", field)
		}
		return b, nil
	case kindTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, apperror.Validation("%s must be a date", field)
	default:
		return raw, nil
	}
}

// convertAll returns a typed slice so pgx can encode it as an array.
func convertAll(kind fieldKind, field string, raws []string) (any, error) {
	switch kind {
	case kindNumber:
		out := make([]float64, 0, len(raws))
		for _, r := range raws {
			v, err := convert(kind, field, r)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(float64))
		}
		return out, nil
	case kindBool:
		out := make([]bool, 0, len(raws))
		for _, r := range raws {
			v, err := convert(kind, field, r)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(bool))
		}
		return out, nil
	case kindTime:
		out := make([]time.Time, 0, len(raws))
		for _, r := range raws {
			v, err := convert(kind, field, r)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(time.Time))
		}
		return out, nil
	default:
		return raws, nil
	}
}

// orderBy renders the sort fields; idExpr breaks ties so paging is stable.
func (s schema) orderBy(sorts []query.SortField, idExpr string) (string, error) {
	parts := make([]string, 0, len(sorts)+1)
	for _, sf := range sorts {
		col, ok := s[sf.Field]
		if !ok {
			return "", apperror.Validation("Unknown sort field %s", sf.Field)
		}
		dir := "ASC"
		if sf.Desc {
			dir = "DESC"
		}
		parts = append(parts, col.expr+" "+dir)
	}
	parts = append(parts, idExpr+" ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// page renders LIMIT/OFFSET for q.
func page(args *sqlArgs, q query.Query) string {
	return fmt.Sprintf(" LIMIT %s OFFSET %s", args.add(q.Limit), args.add(q.Offset()))
}

// listSQL assembles "<base> WHERE … ORDER BY … LIMIT … OFFSET …".
func (s schema) listSQL(base, idExpr string, q query.Query) (string, []any, error) {
	var args sqlArgs
	where, err := s.where(&args, q.Filters)
	if err != nil {
		return "", nil, err
	}
	order, err := s.orderBy(q.Sort, idExpr)
	if err != nil {
		return "", nil, err
	}
	return base + where + order + page(&args, q), args, nil
}

// countSQL assembles "<base> WHERE …" using the same filters as listSQL.
func (s schema) countSQL(base string, q query.Query) (string, []any, error) {
	var args sqlArgs
	where, err := s.where(&args, q.Filters)
	if err != nil {
		return "", nil, err
	}
	return base + where, args, nil
}
