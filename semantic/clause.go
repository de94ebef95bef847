package semantic

import (
	"slices"

	"github.com/nlstn/go-odata-uriparser/edm"
)

// FilterClause is a bound $filter: a boolean expression over the implicit
// range variable.
type FilterClause struct {
	expression    SingleValueNode
	rangeVariable RangeVariable
}

// NewFilterClause creates a filter clause.
func NewFilterClause(expression SingleValueNode, rangeVariable RangeVariable) *FilterClause {
	return &FilterClause{expression: expression, rangeVariable: rangeVariable}
}

// Expression returns the filter predicate.
func (c *FilterClause) Expression() SingleValueNode { return c.expression }

// RangeVariable returns the implicit range variable of the clause.
func (c *FilterClause) RangeVariable() RangeVariable { return c.rangeVariable }

// ItemType returns the type of the filtered elements.
func (c *FilterClause) ItemType() edm.TypeReference {
	if c.rangeVariable == nil {
		return nil
	}
	return c.rangeVariable.TypeReference()
}

// OrderByDirection is the sort direction of an $orderby item.
type OrderByDirection int

const (
	Ascending OrderByDirection = iota
	Descending
)

// String returns "asc" or "desc".
func (d OrderByDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// OrderByItem is one sort key of an $orderby.
type OrderByItem struct {
	Expression SingleValueNode
	Direction  OrderByDirection
}

// OrderByClause is a bound $orderby: sort keys in priority order.
type OrderByClause struct {
	items         []OrderByItem
	rangeVariable RangeVariable
}

// NewOrderByClause creates an order by clause.
func NewOrderByClause(items []OrderByItem, rangeVariable RangeVariable) *OrderByClause {
	return &OrderByClause{items: slices.Clone(items), rangeVariable: rangeVariable}
}

// Items returns the sort keys, highest priority first.
func (c *OrderByClause) Items() []OrderByItem { return slices.Clone(c.items) }

// RangeVariable returns the implicit range variable of the clause.
func (c *OrderByClause) RangeVariable() RangeVariable { return c.rangeVariable }
