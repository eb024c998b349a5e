package endpoint

import (
	"context"
	"errors"
	"net/http"

	"github.com/datastax/query-plan-apis/auth"
	"github.com/datastax/query-plan-apis/planner"
	e "github.com/datastax/query-plan-apis/rest/errors"
	m "github.com/datastax/query-plan-apis/rest/models"
	"github.com/datastax/query-plan-apis/types"
)

func (s *routeList) GetResources(w http.ResponseWriter, r *http.Request) {
	RespondJSONObjectWithCode(w, http.StatusOK, m.Resources{Resources: s.planners().Registry().Names()})
}

func (s *routeList) GetRows(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := s.params(r, resourceParam)

	plan, err := s.plan(ctx, name, r)
	if err != nil {
		s.respondWithError(w, name, err)
		return
	}

	result, err := s.executor.Select(ctx, plan)
	if err != nil {
		s.respondWithError(w, name, e.NewInternalError("unable to select rows", err))
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, m.Rows{
		Meta: m.RowsMeta{
			Count:      len(result.Values),
			Page:       result.Page,
			PerPage:    result.PerPage,
			NextCursor: result.NextCursor,
		},
		Data: types.ToJsonValues(result.Values),
	})
}

func (s *routeList) GetPlan(w http.ResponseWriter, r *http.Request) {
	name := s.params(r, resourceParam)

	plan, err := s.plan(r.Context(), name, r)
	if err != nil {
		s.respondWithError(w, name, err)
		return
	}

	info, err := s.executor.Explain(plan)
	if err != nil {
		s.respondWithError(w, name, e.NewInternalError("unable to render query", err))
		return
	}

	args := info.Args
	if args == nil {
		args = []interface{}{}
	}
	RespondJSONObjectWithCode(w, http.StatusOK, m.Plan{Plan: plan, Query: info.Query, Args: args})
}

func (s *routeList) plan(ctx context.Context, name string, r *http.Request) (*types.QueryPlan, error) {
	p := s.planners()
	resource, ok := p.Registry().Resource(name)
	if !ok {
		return nil, e.NewNotFoundError(name)
	}
	if s.useUserOrRoleAuth && resource.ScopeFilter != "" && auth.ContextUserOrRole(ctx) == "" {
		return nil, e.NewUnauthorizedError("expected user or role for this operation")
	}

	params := ParseParams(r.URL.RawQuery)
	return p.Plan(ctx, name, params.Request, planner.Overrides{Trashed: params.Trashed})
}

func (s *routeList) respondWithError(w http.ResponseWriter, resource string, err error) {
	code, msg := statusCode(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("unable to serve request", "resource", resource, "error", err)
	} else {
		s.logger.Debug("request rejected", "resource", resource, "status", code, "error", err)
	}
	RespondWithError(w, errors.New(msg), code)
}
