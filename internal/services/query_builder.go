package services

import (
	"errors"

	"github.com/LooWze/LooWzeIA/internal/models"
)

// ErrNoQuery is returned when neither a name nor a number was extracted.
var ErrNoQuery = errors.New("no identifiers to search for")

// BuildCatalogQuery composes the catalog search expression, most specific first:
// name and number, then number alone, then name alone.
func BuildCatalogQuery(ids models.IdentifierSet) (string, error) {
	switch {
	case ids.HasName() && ids.HasNumber():
		return "name:" + ids.Name + " number:" + ids.Number, nil
	case ids.HasNumber():
		return "number:" + ids.Number, nil
	case ids.HasName():
		return "name:" + ids.Name, nil
	default:
		return "", ErrNoQuery
	}
}
