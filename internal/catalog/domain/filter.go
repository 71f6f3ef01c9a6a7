package domain

import "strings"

// FilterKind tags the variant held by a Filter
type FilterKind int

const (
	// FilterAll matches every product.
	FilterAll FilterKind = iota
	// FilterEquals requires Field to equal Value exactly.
	FilterEquals
	// FilterContains requires Field to contain Value, ignoring case.
	FilterContains
	// FilterAnd requires every clause to match.
	FilterAnd
)

// Filterable product fields
const (
	FieldTitle    = "title"
	FieldCategory = "category"
)

// Filter is a small store-agnostic predicate over products. Repositories
// translate it into their own query language.
type Filter struct {
	Kind    FilterKind
	Field   string
	Value   string
	Clauses []Filter
}

// MatchAll returns a filter matching the whole catalog
func MatchAll() Filter {
	return Filter{Kind: FilterAll}
}

// Equals returns an exact equality clause
func Equals(field, value string) Filter {
	return Filter{Kind: FilterEquals, Field: field, Value: value}
}

// Contains returns a case-insensitive substring clause
func Contains(field, value string) Filter {
	return Filter{Kind: FilterContains, Field: field, Value: value}
}

// And combines clauses. Match-all clauses are dropped, nested conjunctions
// are flattened, and a single remaining clause is returned unwrapped.
func And(clauses ...Filter) Filter {
	flat := make([]Filter, 0, len(clauses))
	for _, c := range clauses {
		switch c.Kind {
		case FilterAll:
			continue
		case FilterAnd:
			flat = append(flat, c.Clauses...)
		default:
			flat = append(flat, c)
		}
	}

	switch len(flat) {
	case 0:
		return MatchAll()
	case 1:
		return flat[0]
	default:
		return Filter{Kind: FilterAnd, Clauses: flat}
	}
}

// String renders the filter for logs and span attributes
func (f Filter) String() string {
	switch f.Kind {
	case FilterEquals:
		return f.Field + " = " + quote(f.Value)
	case FilterContains:
		return f.Field + " ~* " + quote(f.Value)
	case FilterAnd:
		parts := make([]string, len(f.Clauses))
		for i, c := range f.Clauses {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " AND ") + ")"
	default:
		return "*"
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
