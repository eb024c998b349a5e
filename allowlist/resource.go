package allowlist

import (
	"github.com/datastax/query-plan-apis/types"
)

const (
	DefaultPerPage = 25
	MaxPerPage     = 500
)

// Resource is everything a resource owner declares safe to expose to clients
type Resource struct {
	Name  string `validate:"required"`
	Table string `validate:"required"`

	// Fields and Relations make up the projection allow-list
	Fields    []AllowedProjectionField `validate:"dive"`
	Relations []RelationGroup          `validate:"dive"`

	// Allowed is the base field list. It defaults to every declared scalar field.
	Allowed       []string
	DefaultFields []string

	// Sorts names the scalar fields clients may sort on. It defaults to the base field list.
	Sorts        []string
	DefaultSorts []string

	Filters        []AllowedFilter `validate:"dive"`
	SystemFilters  *types.Values   `validate:"-"`
	DefaultFilters *types.Values   `validate:"-"`

	PerPage int `validate:"gte=0,lte=500"`

	// SoftDeleteColumn enables trashed record handling when set
	SoftDeleteColumn string

	// ScopeFilter names a filter key whose value is enforced from the caller identity
	ScopeFilter string

	filterIndex     FilterIndex
	sortSet         SortSet
	projectionIndex *ProjectionIndex
}

func (r *Resource) FilterIndex() FilterIndex {
	return r.filterIndex
}

// SortSet maps the sort names clients may use to the columns they order by
type SortSet map[string]string

func (r *Resource) SortSet() SortSet {
	return r.sortSet
}

// SortSetFor returns the sort allow-list of one call. When the resource does not declare its
// sorts, a non-empty per-call base field list replaces the configured one.
func (r *Resource) SortSetFor(allowed []string) SortSet {
	if len(r.Sorts) > 0 || len(allowed) == 0 {
		return r.sortSet
	}
	return r.newSortSet(allowed)
}

func (r *Resource) newSortSet(names []string) SortSet {
	set := make(SortSet, len(names))
	for _, name := range names {
		if f, ok := r.projectionIndex.Field(name); ok {
			set[name] = f.Column
		}
	}
	return set
}

func (r *Resource) ProjectionIndex() *ProjectionIndex {
	return r.projectionIndex
}

// Join returns how the named relation associates with the resource table
func (r *Resource) Join(relation string) (types.Join, bool) {
	group, ok := r.projectionIndex.Relation(relation)
	if !ok {
		return types.Join{}, false
	}
	return group.Join(), true
}

// BaseFields returns the configured base field list, or every scalar field key when none is configured
func (r *Resource) BaseFields() []string {
	if len(r.Allowed) > 0 {
		return r.Allowed
	}
	return r.projectionIndex.Keys()
}

func (r *Resource) buildIndexes() {
	r.projectionIndex = NewProjectionIndex(r.Fields, r.Relations)
	r.filterIndex = NewFilterIndex(r.Filters)

	sorts := r.Sorts
	if len(sorts) == 0 {
		sorts = r.BaseFields()
	}
	r.sortSet = r.newSortSet(sorts)

	if r.SystemFilters == nil {
		r.SystemFilters = types.NewValues()
	}
	if r.DefaultFilters == nil {
		r.DefaultFilters = types.NewValues()
	}
}

func (r *Resource) validate(ops types.OperatorSet) error {
	if err := validateStruct(r.Name, r); err != nil {
		return err
	}

	keys := make(map[string]struct{}, len(r.Fields)+len(r.Relations))
	scalars := make(map[string]struct{}, len(r.Fields))
	for _, f := range r.Fields {
		if _, ok := keys[f.RequestKey]; ok {
			return NewConfigurationError(r.Name, f.RequestKey, "duplicate field")
		}
		if f.IsRelation || f.IsRelationKey {
			return NewConfigurationError(r.Name, f.RequestKey, "relation fields must be declared in a relation group")
		}
		keys[f.RequestKey] = struct{}{}
		scalars[f.RequestKey] = struct{}{}
	}

	relations := make(map[string]*RelationGroup, len(r.Relations))
	for i := range r.Relations {
		group := &r.Relations[i]
		if _, ok := keys[group.Name]; ok {
			return NewConfigurationError(r.Name, group.Name, "relation name collides with another field")
		}
		keys[group.Name] = struct{}{}
		relations[group.Name] = group
		if err := validateRelationGroup(r.Name, group); err != nil {
			return err
		}
	}

	for _, list := range [][]string{r.Allowed, r.DefaultFields} {
		for _, key := range list {
			if _, ok := keys[key]; !ok {
				return NewConfigurationError(r.Name, key, "field is not declared")
			}
		}
	}

	for _, key := range r.Sorts {
		if _, ok := scalars[key]; !ok {
			return NewConfigurationError(r.Name, key, "sort field is not a declared scalar field")
		}
	}

	filterKeys := make(map[string]struct{}, len(r.Filters))
	for _, f := range r.Filters {
		filterKeys[f.RequestKey] = struct{}{}
		if err := validateFilter(r.Name, f, relations, ops); err != nil {
			return err
		}
	}

	if r.SystemFilters != nil {
		for pair := r.SystemFilters.Oldest(); pair != nil; pair = pair.Next() {
			if _, ok := filterKeys[pair.Key]; !ok {
				return NewConfigurationError(r.Name, pair.Key, "system filter is not an allowed filter")
			}
		}
	}

	if r.ScopeFilter != "" {
		if _, ok := filterKeys[r.ScopeFilter]; !ok {
			return NewConfigurationError(r.Name, r.ScopeFilter, "scope filter is not an allowed filter")
		}
		if f := NewFilterIndex(r.Filters)[r.ScopeFilter]; f.Operator != types.Eq || f.Scope != types.ScopeBase {
			return NewConfigurationError(r.Name, r.ScopeFilter, "scope filter must be an equality filter on the resource")
		}
	}

	return nil
}

func validateRelationGroup(resource string, group *RelationGroup) error {
	seen := make(map[string]struct{}, len(group.Fields))
	keyFields := 0
	for _, f := range group.Fields {
		if _, ok := seen[f.RequestKey]; ok {
			return NewConfigurationError(resource, group.Name+"."+f.RequestKey, "duplicate relation field")
		}
		seen[f.RequestKey] = struct{}{}
		if f.Relation != group.Name {
			return NewConfigurationError(resource, group.Name+"."+f.RequestKey, "field belongs to another relation")
		}
		if f.IsRelationKey {
			keyFields++
		}
	}
	if keyFields != 1 {
		return NewConfigurationError(resource, group.Name, "relation must declare exactly one key field")
	}
	return nil
}

func validateFilter(resource string, f AllowedFilter, relations map[string]*RelationGroup, ops types.OperatorSet) error {
	if f.Operator < types.Eq || f.Operator > types.Not {
		return NewConfigurationError(resource, f.RequestKey, "unknown operator "+f.Operator.String())
	}
	if !ops.IsSupported(f.Operator) {
		return NewConfigurationError(resource, f.RequestKey, "operator '"+f.Operator.String()+"' is not enabled")
	}
	if f.Operator == types.DateCompare && !f.Comparator.IsComparison() {
		return NewConfigurationError(resource, f.RequestKey, "date filters need a comparison operator")
	}
	if !f.Operator.IsGroup() && f.Column == "" {
		return NewConfigurationError(resource, f.RequestKey, "filter has no column")
	}

	switch f.Scope {
	case types.ScopeBase:
		if f.Relation != "" {
			return NewConfigurationError(resource, f.RequestKey, "base filter names a relation")
		}
	case types.ScopeRelation:
		if f.Operator.IsGroup() {
			return NewConfigurationError(resource, f.RequestKey, "group operators can not be scoped to a relation")
		}
		if _, ok := relations[f.Relation]; !ok {
			return NewConfigurationError(resource, f.RequestKey, "relation '"+f.Relation+"' is not declared")
		}
	default:
		return NewConfigurationError(resource, f.RequestKey, "unknown scope")
	}

	return nil
}
