// Package planner assembles the filter, sort and projection compilers into complete query plans.
package planner

import (
	"context"
	"strings"

	"github.com/datastax/query-plan-apis/allowlist"
	"github.com/datastax/query-plan-apis/auth"
	"github.com/datastax/query-plan-apis/fields"
	"github.com/datastax/query-plan-apis/filter"
	"github.com/datastax/query-plan-apis/log"
	"github.com/datastax/query-plan-apis/projection"
	"github.com/datastax/query-plan-apis/rest/errors"
	"github.com/datastax/query-plan-apis/sorting"
	"github.com/datastax/query-plan-apis/types"
)

// Request is the raw, untrusted input of one read
type Request struct {
	Filters *types.Values
	Sort    []string
	// Fields is the flat, comma separated field list
	Fields string
	// Embed and Extended use the field expression grammar
	Embed    string
	Extended string
	PerPage  int
	Page     int
	Cursor   string
}

// Overrides is the one-shot state a caller applies to a single plan. It only lives for the
// duration of the Plan call.
type Overrides struct {
	Filters        *types.Values
	DefaultFilters *types.Values
	Sorts          []string
	AdhocSorts     []string
	Fields         []string
	Allowed        []string
	Trashed        types.TrashedMode
}

type Planner struct {
	registry    *allowlist.Registry
	filters     filter.Compiler
	sorts       sorting.Compiler
	projections projection.Compiler
	logger      log.Logger
}

func NewPlanner(registry *allowlist.Registry, logger log.Logger) *Planner {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Planner{
		registry:    registry,
		filters:     filter.NewCompiler(logger),
		sorts:       sorting.NewCompiler(logger),
		projections: projection.NewCompiler(logger),
		logger:      logger,
	}
}

func (p *Planner) Registry() *allowlist.Registry {
	return p.registry
}

// Plan compiles a request for the named resource. Client input that is not allow-listed never
// fails the plan, it is left out of it. The only error is an unknown resource.
func (p *Planner) Plan(ctx context.Context, name string, req Request, ov Overrides) (*types.QueryPlan, error) {
	resource, ok := p.registry.Resource(name)
	if !ok {
		return nil, errors.NewNotFoundError(name)
	}

	defaults := filter.Merge(resource.DefaultFilters, ov.DefaultFilters, nil, nil)
	merged := filter.Merge(defaults, req.Filters, ov.Filters, p.systemFilters(ctx, resource))
	predicates := p.filters.Compile(merged, resource.FilterIndex())

	tokens := sorting.Merge(req.Sort, ov.Sorts, resource.DefaultSorts, ov.AdhocSorts)
	orderBy := p.sorts.Compile(tokens, resource.SortSetFor(ov.Allowed))

	fragment := p.projections.Compile(projectionInput(resource, req, ov), resource.ProjectionIndex())

	plan := &types.QueryPlan{
		Resource:         resource.Name,
		Table:            resource.Table,
		SelectColumns:    fragment.SelectColumns,
		Predicates:       predicates,
		OrderBy:          orderBy,
		EagerLoad:        fragment.EagerLoad,
		EagerOrder:       fragment.EagerOrder,
		Joins:            joins(resource, predicates, fragment.EagerOrder),
		Page:             pageOptions(resource, req),
		SoftDeleteColumn: resource.SoftDeleteColumn,
	}
	if resource.SoftDeleteColumn != "" {
		plan.Trashed = ov.Trashed
	}

	p.logger.Debug("compiled query plan",
		"resource", name,
		"columns", len(plan.SelectColumns),
		"predicates", len(plan.Predicates),
		"orderBy", len(plan.OrderBy),
		"eagerLoad", plan.EagerOrder)

	return plan, nil
}

// systemFilters binds the resource scope filter to the caller identity. An anonymous caller is
// bound to the empty identity, which matches no owned rows.
func (p *Planner) systemFilters(ctx context.Context, resource *allowlist.Resource) *types.Values {
	if resource.ScopeFilter == "" {
		return resource.SystemFilters
	}
	system := filter.Merge(resource.SystemFilters, nil, nil, nil)
	system.Set(resource.ScopeFilter, auth.ContextUserOrRole(ctx))
	return system
}

func projectionInput(resource *allowlist.Resource, req Request, ov Overrides) projection.Input {
	in := projection.Input{
		Mode:     projection.Plain,
		Fields:   fields.SplitList(req.Fields),
		Override: ov.Fields,
		Defaults: resource.DefaultFields,
		Allowed:  resource.Allowed,
	}
	if len(ov.Allowed) > 0 {
		in.Allowed = ov.Allowed
	}

	if embed := strings.TrimSpace(req.Embed); embed != "" {
		in.Mode = projection.Embed
		in.Modifier = fields.Parse(embed)
	} else if extended := strings.TrimSpace(req.Extended); extended != "" {
		in.Mode = projection.Extended
		in.Modifier = fields.Parse(extended)
	}
	return in
}

func pageOptions(resource *allowlist.Resource, req Request) types.PageOptions {
	perPage := resource.PerPage
	if req.PerPage > 0 {
		perPage = req.PerPage
	}
	if perPage > allowlist.MaxPerPage {
		perPage = allowlist.MaxPerPage
	}

	switch {
	case req.Cursor != "":
		return types.PageOptions{Mode: types.PageCursor, PerPage: perPage, Cursor: req.Cursor}
	case req.Page > 0:
		return types.PageOptions{Mode: types.PageOffset, PerPage: perPage, Page: req.Page}
	case req.PerPage > 0:
		return types.PageOptions{Mode: types.PageOffset, PerPage: perPage, Page: 1}
	default:
		return types.PageOptions{Mode: types.PageNone, PerPage: perPage}
	}
}

// joins collects how every relation used by the plan associates with the resource table
func joins(resource *allowlist.Resource, predicates []types.Predicate, eager []string) map[string]types.Join {
	result := make(map[string]types.Join)
	add := func(relation string) {
		if relation == "" {
			return
		}
		if join, ok := resource.Join(relation); ok {
			result[relation] = join
		}
	}

	var walk func(predicates []types.Predicate)
	walk = func(predicates []types.Predicate) {
		for _, predicate := range predicates {
			add(predicate.Relation)
			walk(predicate.Children)
		}
	}
	walk(predicates)

	for _, relation := range eager {
		add(relation)
	}
	return result
}
