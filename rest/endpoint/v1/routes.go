package endpoint

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/julienschmidt/httprouter"

	"github.com/datastax/query-plan-apis/config"
	"github.com/datastax/query-plan-apis/db"
	"github.com/datastax/query-plan-apis/log"
	"github.com/datastax/query-plan-apis/planner"
	"github.com/datastax/query-plan-apis/types"
)

const (
	ResourcesPathFormat = "/v1/resources"
	RowsPathFormat      = "/v1/resources/%s/rows"
	PlanPathFormat      = "/v1/resources/%s/plan"
)

const resourceParam = "resource"

// Executor runs compiled plans
type Executor interface {
	Select(ctx context.Context, plan *types.QueryPlan) (*types.QueryResult, error)
	Explain(plan *types.QueryPlan) (*db.SelectInfo, error)
}

// PlannerFn returns the planner of the current registry. It is called once per request so that
// a reloaded registry applies to the next request.
type PlannerFn func() *planner.Planner

type routeList struct {
	planners          PlannerFn
	executor          Executor
	useUserOrRoleAuth bool
	logger            log.Logger
	params            func(*http.Request, string) string
}

// Routes returns the routes of the v1 REST API under the prefix
func Routes(prefix string, planners PlannerFn, executor Executor, cfg config.Config) []types.Route {
	rl := routeList{
		planners:          planners,
		executor:          executor,
		useUserOrRoleAuth: cfg.UseUserOrRoleAuth(),
		logger:            cfg.Logger(),
		params:            httpRouterParams,
	}

	return []types.Route{
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, ResourcesPathFormat),
			Handler: http.HandlerFunc(rl.GetResources),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, fmt.Sprintf(RowsPathFormat, ":"+resourceParam)),
			Handler: http.HandlerFunc(rl.GetRows),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, fmt.Sprintf(PlanPathFormat, ":"+resourceParam)),
			Handler: http.HandlerFunc(rl.GetPlan),
		},
	}
}

func httpRouterParams(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}
