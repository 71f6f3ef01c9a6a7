package repository

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

// fields whitelists filterable fields against their document key
var fields = map[string]string{
	domain.FieldTitle:    "title",
	domain.FieldCategory: "category",
}

// toBSON translates a filter into a Mongo query document
func toBSON(f domain.Filter) (bson.M, error) {
	switch f.Kind {
	case domain.FilterAll:
		return bson.M{}, nil
	case domain.FilterEquals:
		key, err := documentKey(f.Field)
		if err != nil {
			return nil, err
		}
		return bson.M{key: f.Value}, nil
	case domain.FilterContains:
		key, err := documentKey(f.Field)
		if err != nil {
			return nil, err
		}
		return bson.M{key: primitive.Regex{Pattern: regexp.QuoteMeta(f.Value), Options: "i"}}, nil
	case domain.FilterAnd:
		clauses := bson.A{}
		for _, c := range f.Clauses {
			doc, err := toBSON(c)
			if err != nil {
				return nil, err
			}
			if len(doc) == 0 {
				continue
			}
			clauses = append(clauses, doc)
		}
		switch len(clauses) {
		case 0:
			return bson.M{}, nil
		case 1:
			return clauses[0].(bson.M), nil
		default:
			return bson.M{"$and": clauses}, nil
		}
	default:
		return nil, fmt.Errorf("unsupported filter kind %d", f.Kind)
	}
}

func documentKey(field string) (string, error) {
	key, ok := fields[field]
	if !ok {
		return "", fmt.Errorf("unsupported filter field %q", field)
	}
	return key, nil
}
