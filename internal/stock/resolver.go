package stock

import (
	"fmt"
	"sort"
	"strings"
)

// ProductRef identifies one product derived from the carton ledger.
type ProductRef struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
}

// NotFoundError reports a query that matched no product.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("stock: no product matching %q", e.Query)
}

// AmbiguousError reports a query that matched more than one distinct product.
// The caller should retry with an exact product id from Candidates.
type AmbiguousError struct {
	Query      string
	Candidates []ProductRef
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = fmt.Sprintf("%s (%s)", c.ProductID, c.ProductName)
	}
	return fmt.Sprintf("stock: %q matches multiple products: %s", e.Query, strings.Join(names, ", "))
}

// Resolve disambiguates a free-text query into exactly one product identity.
//
// An exact case-insensitive product id match wins immediately and is never
// shadowed by a name match. Otherwise the query is matched as a substring of
// the product name and vice versa, both case-insensitive, and the distinct
// product ids matched that way decide the outcome: none is a NotFoundError,
// more than one an AmbiguousError.
func Resolve(query string, ledger []Carton) (ProductRef, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	for i := range ledger {
		if strings.ToLower(ledger[i].ProductID) == q {
			return ProductRef{ProductID: ledger[i].ProductID, ProductName: ledger[i].ProductName}, nil
		}
	}

	matched := make(map[string]string)
	for i := range ledger {
		name := strings.ToLower(ledger[i].ProductName)
		if strings.Contains(name, q) || strings.Contains(q, name) {
			if _, ok := matched[ledger[i].ProductID]; !ok {
				matched[ledger[i].ProductID] = ledger[i].ProductName
			}
		}
	}
	switch len(matched) {
	case 0:
		return ProductRef{}, &NotFoundError{Query: query}
	case 1:
		for id, name := range matched {
			return ProductRef{ProductID: id, ProductName: name}, nil
		}
	}
	candidates := make([]ProductRef, 0, len(matched))
	for id, name := range matched {
		candidates = append(candidates, ProductRef{ProductID: id, ProductName: name})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ProductID < candidates[j].ProductID })
	return ProductRef{}, &AmbiguousError{Query: query, Candidates: candidates}
}
