package query

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

// ListProductsParams carries raw, untrusted listing parameters.
// A nil field means the parameter was absent from the request.
type ListProductsParams struct {
	Search   *string
	Category *string
	Page     *string
	Limit    *string
}

// NormalizeListParams validates raw parameters and produces the canonical
// listing query. Every violated constraint is reported in one ValidationError.
func NormalizeListParams(p ListProductsParams) (domain.ListQuery, error) {
	q := domain.ListQuery{
		Page:  domain.DefaultPage,
		Limit: domain.DefaultLimit,
	}
	verr := &domain.ValidationError{}

	if p.Page != nil {
		page, err := strconv.Atoi(*p.Page)
		if err != nil || page < 1 {
			verr.Add("page", "page must be a positive integer", *p.Page)
		} else {
			q.Page = page
		}
	}

	if p.Limit != nil {
		limit, err := strconv.Atoi(*p.Limit)
		if err != nil || limit < 1 || limit > domain.MaxLimit {
			verr.Add("limit", "limit must be between 1 and 50", *p.Limit)
		} else {
			q.Limit = limit
		}
	}

	if p.Search != nil {
		search := strings.TrimSpace(*p.Search)
		if utf8.RuneCountInString(search) > domain.MaxSearchLength {
			verr.Add("search", "search must be a string under 100 chars", search)
		} else {
			q.Search = search
		}
	}

	if p.Category != nil {
		q.Category = strings.TrimSpace(*p.Category)
	}

	if err := verr.ErrOrNil(); err != nil {
		return domain.ListQuery{}, err
	}
	return q, nil
}
