package db

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Session interface {
	// Query executes a statement and returns the rows of the result set
	Query(ctx context.Context, query string, values ...interface{}) (ResultSet, error)

	// PlaceholderFormat is the bind parameter syntax of the driver
	PlaceholderFormat() sq.PlaceholderFormat

	Close()
}

type ResultSet interface {
	Columns() []string
	Values() []map[string]interface{}
}

type resultSet struct {
	columns []string
	values  []map[string]interface{}
}

func (r *resultSet) Columns() []string {
	return r.columns
}

func (r *resultSet) Values() []map[string]interface{} {
	return r.values
}

// PgxSession runs queries on a PostgreSQL connection pool
type PgxSession struct {
	pool *pgxpool.Pool
}

func NewPgxSession(ctx context.Context, url string) (*PgxSession, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PgxSession{pool: pool}, nil
}

func (s *PgxSession) Query(ctx context.Context, query string, values ...interface{}) (ResultSet, error) {
	rows, err := s.pool.Query(ctx, query, values...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := &resultSet{
		columns: make([]string, len(fields)),
		values:  make([]map[string]interface{}, 0),
	}
	for i, field := range fields {
		result.columns[i] = field.Name
	}

	for rows.Next() {
		row, err := rows.Values()
		if err != nil {
			return nil, err
		}
		item := make(map[string]interface{}, len(row))
		for i, column := range result.columns {
			item[column] = row[i]
		}
		result.values = append(result.values, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PgxSession) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Dollar
}

func (s *PgxSession) Close() {
	s.pool.Close()
}

// SqlSession runs queries through a database/sql handle, used for SQLite
type SqlSession struct {
	db *sql.DB
}

func NewSqlSession(db *sql.DB) *SqlSession {
	return &SqlSession{db: db}
}

func (s *SqlSession) Query(ctx context.Context, query string, values ...interface{}) (ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &resultSet{
		columns: columns,
		values:  make([]map[string]interface{}, 0),
	}
	for rows.Next() {
		row, err := mapScan(rows, columns)
		if err != nil {
			return nil, err
		}
		result.values = append(result.values, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func mapScan(rows *sql.Rows, columns []string) (map[string]interface{}, error) {
	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	if err := rows.Scan(pointers...); err != nil {
		return nil, err
	}

	mapped := make(map[string]interface{}, len(columns))
	for i, column := range columns {
		value := values[i]
		// drivers may reuse the buffer on the next row
		if b, ok := value.([]byte); ok {
			value = append([]byte(nil), b...)
		}
		mapped[column] = value
	}
	return mapped, nil
}

func (s *SqlSession) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (s *SqlSession) Close() {
	_ = s.db.Close()
}
