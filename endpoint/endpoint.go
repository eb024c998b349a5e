package endpoint

import (
	"context"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/datastax/query-plan-apis/allowlist"
	"github.com/datastax/query-plan-apis/config"
	"github.com/datastax/query-plan-apis/db"
	"github.com/datastax/query-plan-apis/log"
	"github.com/datastax/query-plan-apis/planner"
	"github.com/datastax/query-plan-apis/rest"
	"github.com/datastax/query-plan-apis/types"
)

type DataEndpointConfig struct {
	dbDriver          string
	dbUrl             string
	operators         types.OperatorSet
	defaultPerPage    int
	naming            config.NamingConventionFn
	useUserOrRoleAuth bool
	logger            log.Logger
}

func (cfg DataEndpointConfig) Operators() types.OperatorSet {
	return cfg.operators
}

func (cfg DataEndpointConfig) DefaultPerPage() int {
	return cfg.defaultPerPage
}

func (cfg DataEndpointConfig) Naming() config.NamingConventionFn {
	return cfg.naming
}

func (cfg DataEndpointConfig) UseUserOrRoleAuth() bool {
	return cfg.useUserOrRoleAuth
}

func (cfg DataEndpointConfig) Logger() log.Logger {
	return cfg.logger
}

func (cfg *DataEndpointConfig) WithOperators(operators types.OperatorSet) *DataEndpointConfig {
	cfg.operators = operators
	return cfg
}

func (cfg *DataEndpointConfig) WithDefaultPerPage(defaultPerPage int) *DataEndpointConfig {
	cfg.defaultPerPage = defaultPerPage
	return cfg
}

func (cfg *DataEndpointConfig) WithNaming(naming config.NamingConventionFn) *DataEndpointConfig {
	cfg.naming = naming
	return cfg
}

func (cfg *DataEndpointConfig) WithUseUserOrRoleAuth(useUserOrRoleAuth bool) *DataEndpointConfig {
	cfg.useUserOrRoleAuth = useUserOrRoleAuth
	return cfg
}

func (cfg *DataEndpointConfig) WithDbDriver(dbDriver string) *DataEndpointConfig {
	cfg.dbDriver = dbDriver
	return cfg
}

func (cfg *DataEndpointConfig) WithDbUrl(dbUrl string) *DataEndpointConfig {
	cfg.dbUrl = dbUrl
	return cfg
}

func (cfg DataEndpointConfig) options() allowlist.Options {
	return allowlist.Options{
		Operators:      cfg.operators,
		DefaultPerPage: cfg.defaultPerPage,
	}
}

// NewEndpoint connects to the database and registers the resources of the definitions
func (cfg DataEndpointConfig) NewEndpoint(ctx context.Context, defs []config.ResourceDefinition) (*DataEndpoint, error) {
	resources, err := config.Resources(defs, cfg.naming())
	if err != nil {
		return nil, err
	}
	registry, err := allowlist.NewRegistry(cfg.options(), resources...)
	if err != nil {
		return nil, err
	}

	dbClient, err := db.Open(ctx, cfg.dbDriver, cfg.dbUrl, cfg.logger)
	if err != nil {
		return nil, err
	}
	return cfg.newEndpointWithDb(dbClient, registry), nil
}

// NewEndpointWithResources registers resources declared in code on an existing db client
func (cfg DataEndpointConfig) NewEndpointWithResources(dbClient *db.Db, resources ...allowlist.Resource) (*DataEndpoint, error) {
	registry, err := allowlist.NewRegistry(cfg.options(), resources...)
	if err != nil {
		return nil, err
	}
	return cfg.newEndpointWithDb(dbClient, registry), nil
}

func (cfg DataEndpointConfig) newEndpointWithDb(dbClient *db.Db, registry *allowlist.Registry) *DataEndpoint {
	endpoint := &DataEndpoint{
		cfg:      cfg,
		dbClient: dbClient,
	}
	endpoint.planner.Store(planner.NewPlanner(registry, cfg.logger))
	endpoint.restRouteGen = rest.NewRouteGenerator(dbClient, endpoint.Planner, cfg)
	return endpoint
}

type DataEndpoint struct {
	cfg          DataEndpointConfig
	dbClient     *db.Db
	planner      atomic.Value
	restRouteGen *rest.RouteGenerator
}

func NewEndpointConfig(driver string, url string) (*DataEndpointConfig, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return NewEndpointConfigWithLogger(log.NewZapLogger(logger), driver, url), nil
}

func NewEndpointConfigWithLogger(logger log.Logger, driver string, url string) *DataEndpointConfig {
	return &DataEndpointConfig{
		dbDriver:       driver,
		dbUrl:          url,
		operators:      types.AllOperatorSet(),
		defaultPerPage: allowlist.DefaultPerPage,
		naming:         config.NewDefaultNaming,
		logger:         logger,
	}
}

// Planner returns the planner of the registry currently served
func (e *DataEndpoint) Planner() *planner.Planner {
	return e.planner.Load().(*planner.Planner)
}

// Reload registers the definitions in a new registry and serves it from the next request on.
// When a definition is invalid the current registry is kept and the error is returned.
func (e *DataEndpoint) Reload(defs []config.ResourceDefinition) error {
	resources, err := config.Resources(defs, e.cfg.naming())
	if err != nil {
		return err
	}
	return e.ReloadResources(resources...)
}

func (e *DataEndpoint) ReloadResources(resources ...allowlist.Resource) error {
	registry, err := allowlist.NewRegistry(e.cfg.options(), resources...)
	if err != nil {
		e.cfg.logger.Error("unable to reload resources, keeping the current ones", "error", err)
		return err
	}
	e.planner.Store(planner.NewPlanner(registry, e.cfg.logger))
	e.cfg.logger.Info("resources reloaded", "resources", registry.Names())
	return nil
}

func (e *DataEndpoint) RoutesRest(prefix string) []types.Route {
	return e.restRouteGen.Routes(prefix)
}

func (e *DataEndpoint) Close() {
	e.dbClient.Close()
}
