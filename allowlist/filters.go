package allowlist

import (
	"github.com/datastax/query-plan-apis/types"
)

// AllowedFilter declares one client-facing filter key and how it maps to a column, an operator and a scope.
// It is immutable once the resource is registered.
type AllowedFilter struct {
	RequestKey string `validate:"required"`
	Column     string
	Operator   types.OperatorKind
	// Comparator is the comparison used by DateCompare filters
	Comparator types.OperatorKind
	Scope      types.Scope
	Relation   string
}

// Compare returns a copy of the filter using the provided comparison. It is meant for date filters.
func (f AllowedFilter) Compare(comparator types.OperatorKind) AllowedFilter {
	f.Comparator = comparator
	return f
}

// FilterBuilder creates allowed filters for one scope. The package level functions build
// filters on the resource itself, OnRelation builds existence filters on a relation.
type FilterBuilder struct {
	scope    types.Scope
	relation string
}

var baseFilters = FilterBuilder{scope: types.ScopeBase}

// OnRelation returns a builder for filters tested against the records of the named relation
func OnRelation(relation string) FilterBuilder {
	return FilterBuilder{scope: types.ScopeRelation, relation: relation}
}

func (b FilterBuilder) build(requestKey string, op types.OperatorKind, column []string) AllowedFilter {
	dbField := requestKey
	if len(column) > 0 && column[0] != "" {
		dbField = column[0]
	}
	if op.IsGroup() {
		dbField = ""
	}
	return AllowedFilter{
		RequestKey: requestKey,
		Column:     dbField,
		Operator:   op,
		Comparator: types.Eq,
		Scope:      b.scope,
		Relation:   b.relation,
	}
}

// WhereOp is a filter using the provided operator, as read from a declaration file
func (b FilterBuilder) WhereOp(requestKey string, op types.OperatorKind, column ...string) AllowedFilter {
	return b.build(requestKey, op, column)
}

// Where is an equality filter. The optional column defaults to the request key.
func (b FilterBuilder) Where(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.Eq, column)
}

func (b FilterBuilder) WhereNeq(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.Neq, column)
}

func (b FilterBuilder) WhereLt(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.Lt, column)
}

func (b FilterBuilder) WhereLte(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.Lte, column)
}

func (b FilterBuilder) WhereGt(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.Gt, column)
}

func (b FilterBuilder) WhereGte(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.Gte, column)
}

func (b FilterBuilder) WhereLike(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.Like, column)
}

func (b FilterBuilder) WhereIn(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.In, column)
}

func (b FilterBuilder) WhereNotIn(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.NotIn, column)
}

func (b FilterBuilder) WhereNull(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.IsNull, column)
}

func (b FilterBuilder) WhereDate(requestKey string, column ...string) AllowedFilter {
	return b.build(requestKey, types.DateCompare, column)
}

func Where(requestKey string, column ...string) AllowedFilter {
	return baseFilters.Where(requestKey, column...)
}

func WhereEq(requestKey string, column ...string) AllowedFilter {
	return baseFilters.Where(requestKey, column...)
}

func WhereNeq(requestKey string, column ...string) AllowedFilter {
	return baseFilters.WhereNeq(requestKey, column...)
}

func WhereLt(requestKey string, column ...string) AllowedFilter {
	return baseFilters.WhereLt(requestKey, column...)
}

func WhereLte(requestKey string, column ...string) AllowedFilter {
	return baseFilters.WhereLte(requestKey, column...)
}

func WhereGt(requestKey string, column ...string) AllowedFilter {
	return baseFilters.WhereGt(requestKey, column...)
}

func WhereGte(requestKey string, column ...string) AllowedFilter {
	return baseFilters.WhereGte(requestKey, column...)
}

func WhereLike(requestKey string, column ...string) AllowedFilter {
	return baseFilters.WhereLike(requestKey, column...)
}

func WhereIn(requestKey string, column ...string) AllowedFilter {
	return baseFilters.WhereIn(requestKey, column...)
}

func WhereNotIn(requestKey string, column ...string) AllowedFilter {
	return baseFilters.WhereNotIn(requestKey, column...)
}

func WhereNull(requestKey string, column ...string) AllowedFilter {
	return baseFilters.WhereNull(requestKey, column...)
}

func WhereDate(requestKey string, column ...string) AllowedFilter {
	return baseFilters.WhereDate(requestKey, column...)
}

// WhereAnd accepts a nested set of filters that must all match
func WhereAnd(requestKey string) AllowedFilter {
	return baseFilters.build(requestKey, types.And, nil)
}

// WhereOr accepts a nested set of filters of which at least one must match
func WhereOr(requestKey string) AllowedFilter {
	return baseFilters.build(requestKey, types.Or, nil)
}

// WhereNot accepts a nested set of filters that must not all match
func WhereNot(requestKey string) AllowedFilter {
	return baseFilters.build(requestKey, types.Not, nil)
}

// FilterIndex maps request keys to their allowed filter
type FilterIndex map[string]AllowedFilter

// NewFilterIndex indexes filters by request key. A later declaration of a key replaces an earlier one.
func NewFilterIndex(filters []AllowedFilter) FilterIndex {
	index := make(FilterIndex, len(filters))
	for _, f := range filters {
		index[f.RequestKey] = f
	}
	return index
}
