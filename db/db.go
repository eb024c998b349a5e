package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/datastax/query-plan-apis/log"
	"github.com/datastax/query-plan-apis/types"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

// Db executes query plans
type Db struct {
	session Session
	logger  log.Logger
}

func NewDb(session Session, logger log.Logger) *Db {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Db{session: session, logger: logger}
}

// Open connects to the database using the named driver
func Open(ctx context.Context, driver, url string, logger log.Logger) (*Db, error) {
	switch driver {
	case DriverPostgres, "pgx", "postgresql":
		session, err := NewPgxSession(ctx, url)
		if err != nil {
			return nil, err
		}
		return NewDb(session, logger), nil
	case DriverSqlite:
		handle, err := sql.Open("sqlite", url)
		if err != nil {
			return nil, err
		}
		if err := handle.PingContext(ctx); err != nil {
			_ = handle.Close()
			return nil, err
		}
		return NewDb(NewSqlSession(handle), logger), nil
	}
	return nil, fmt.Errorf("unsupported driver '%s'", driver)
}

// Explain renders the main query of the plan without executing it
func (db *Db) Explain(plan *types.QueryPlan) (*SelectInfo, error) {
	return BuildSelect(plan, db.session.PlaceholderFormat())
}

func (db *Db) Close() {
	db.session.Close()
}

// Select executes the main query of the plan, then loads every embedded relation with one query
// per relation. Related rows are attached to their parent row under the relation name.
func (db *Db) Select(ctx context.Context, plan *types.QueryPlan) (*types.QueryResult, error) {
	placeholder := db.session.PlaceholderFormat()
	info, err := BuildSelect(plan, placeholder)
	if err != nil {
		return nil, err
	}

	db.logger.Debug("executing query", "resource", plan.Resource, "query", info.Query)
	rs, err := db.session.Query(ctx, info.Query, info.Args...)
	if err != nil {
		return nil, err
	}
	rows := rs.Values()

	result := &types.QueryResult{}
	switch plan.Page.Mode {
	case types.PageOffset:
		result.Page = plan.Page.Page
		result.PerPage = plan.Page.PerPage
	case types.PageCursor:
		result.PerPage = plan.Page.PerPage
		if len(rows) > plan.Page.PerPage {
			rows = rows[:plan.Page.PerPage]
			result.NextCursor = types.EncodeCursor(plan.Page.Offset() + plan.Page.PerPage)
		}
	}

	for _, relation := range plan.EagerOrder {
		if err := db.eagerLoad(ctx, plan, relation, rows); err != nil {
			return nil, err
		}
	}

	for _, row := range rows {
		for _, column := range info.Hidden {
			delete(row, column)
		}
	}

	result.Values = rows
	return result, nil
}

func (db *Db) eagerLoad(ctx context.Context, plan *types.QueryPlan, relation string, rows []map[string]interface{}) error {
	join, ok := plan.Joins[relation]
	if !ok {
		return fmt.Errorf("no join for relation '%s'", relation)
	}

	parents := make(map[string][]map[string]interface{}, len(rows))
	keys := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		row[relation] = make([]map[string]interface{}, 0)
		value := row[join.ParentKey]
		if value == nil {
			continue
		}
		key := fmt.Sprint(value)
		if _, ok := parents[key]; !ok {
			keys = append(keys, value)
		}
		parents[key] = append(parents[key], row)
	}

	if len(keys) == 0 {
		return nil
	}

	query, args, err := BuildEagerLoad(plan, relation, keys, db.session.PlaceholderFormat())
	if err != nil {
		return err
	}

	db.logger.Debug("executing eager load", "resource", plan.Resource, "relation", relation, "query", query)
	rs, err := db.session.Query(ctx, query, args...)
	if err != nil {
		return err
	}

	for _, related := range rs.Values() {
		for _, parent := range parents[fmt.Sprint(related[join.ForeignKey])] {
			parent[relation] = append(parent[relation].([]map[string]interface{}), related)
		}
	}
	return nil
}
