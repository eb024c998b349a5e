package rest

import (
	"github.com/datastax/query-plan-apis/config"
	restEndpointV1 "github.com/datastax/query-plan-apis/rest/endpoint/v1"
	"github.com/datastax/query-plan-apis/types"
)

type RouteGenerator struct {
	executor restEndpointV1.Executor
	planners restEndpointV1.PlannerFn
	config   config.Config
}

func NewRouteGenerator(
	executor restEndpointV1.Executor,
	planners restEndpointV1.PlannerFn,
	cfg config.Config,
) *RouteGenerator {
	return &RouteGenerator{
		executor: executor,
		planners: planners,
		config:   cfg,
	}
}

func (g *RouteGenerator) Routes(prefix string) []types.Route {
	return restEndpointV1.Routes(prefix, g.planners, g.executor, g.config)
}
