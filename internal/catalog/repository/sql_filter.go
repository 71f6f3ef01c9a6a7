package repository

import (
	"fmt"
	"strings"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

// columns whitelists filterable fields against their SQL column
var columns = map[string]string{
	domain.FieldTitle:    "title",
	domain.FieldCategory: "category",
}

// whereClause translates a filter into a parameterised SQL condition.
// An empty condition means no WHERE is needed.
func whereClause(f domain.Filter) (string, []interface{}, error) {
	switch f.Kind {
	case domain.FilterAll:
		return "", nil, nil
	case domain.FilterEquals:
		col, err := column(f.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " = ?", []interface{}{f.Value}, nil
	case domain.FilterContains:
		col, err := column(f.Field)
		if err != nil {
			return "", nil, err
		}
		return col + ` ILIKE ? ESCAPE '\'`, []interface{}{"%" + escapeLike(f.Value) + "%"}, nil
	case domain.FilterAnd:
		var (
			parts []string
			args  []interface{}
		)
		for _, c := range f.Clauses {
			sql, cargs, err := whereClause(c)
			if err != nil {
				return "", nil, err
			}
			if sql == "" {
				continue
			}
			parts = append(parts, sql)
			args = append(args, cargs...)
		}
		if len(parts) == 0 {
			return "", nil, nil
		}
		if len(parts) == 1 {
			return parts[0], args, nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", args, nil
	default:
		return "", nil, fmt.Errorf("unsupported filter kind %d", f.Kind)
	}
}

func column(field string) (string, error) {
	col, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("unsupported filter field %q", field)
	}
	return col, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
