package db

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/datastax/query-plan-apis/types"
)

// SelectInfo is the rendered main query of a plan
type SelectInfo struct {
	Query string
	Args  []interface{}
	// Hidden lists the result columns that were only selected to associate eager loaded rows
	Hidden []string
	// Limit is the number of rows requested from the store, one more than a cursor page
	Limit int
}

// BuildSelect renders the main query of a plan. Relation predicates become EXISTS subqueries so
// a parent row is returned once no matter how many related rows match.
func BuildSelect(plan *types.QueryPlan, placeholder sq.PlaceholderFormat) (*SelectInfo, error) {
	info := &SelectInfo{}

	columns := make([]string, 0, len(plan.SelectColumns)+len(plan.EagerOrder))
	selected := make(map[string]bool, len(plan.SelectColumns))
	for _, column := range plan.SelectColumns {
		columns = append(columns, selectExpression(column))
		selected[types.BaseColumn(column)] = true
	}
	for _, relation := range plan.EagerOrder {
		join, ok := plan.Joins[relation]
		if !ok || selected[join.ParentKey] {
			continue
		}
		columns = append(columns, selectExpression(qualify(plan.Table, join.ParentKey)))
		selected[join.ParentKey] = true
		info.Hidden = append(info.Hidden, join.ParentKey)
	}

	builder := sq.Select(columns...).From(plan.Table).PlaceholderFormat(placeholder)

	for _, predicate := range plan.Predicates {
		condition, err := buildCondition(plan, predicate)
		if err != nil {
			return nil, err
		}
		builder = builder.Where(condition)
	}

	if plan.SoftDeleteColumn != "" {
		switch plan.Trashed {
		case types.WithoutTrashed:
			builder = builder.Where(sq.Eq{plan.SoftDeleteColumn: nil})
		case types.OnlyTrashed:
			builder = builder.Where(sq.NotEq{plan.SoftDeleteColumn: nil})
		}
	}

	for _, item := range plan.OrderBy {
		direction := "ASC"
		if item.Direction == types.Desc {
			direction = "DESC"
		}
		builder = builder.OrderBy(item.Column + " " + direction)
	}

	switch plan.Page.Mode {
	case types.PageOffset:
		info.Limit = plan.Page.PerPage
	case types.PageCursor:
		info.Limit = plan.Page.PerPage + 1
	}
	if info.Limit > 0 {
		builder = builder.Limit(uint64(info.Limit))
		if offset := plan.Page.Offset(); offset > 0 {
			builder = builder.Offset(uint64(offset))
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	info.Query = query
	info.Args = args
	return info, nil
}

// BuildEagerLoad renders the query loading the related rows of a page of parent rows
func BuildEagerLoad(plan *types.QueryPlan, relation string, parentKeys []interface{}, placeholder sq.PlaceholderFormat) (string, []interface{}, error) {
	join, ok := plan.Joins[relation]
	if !ok {
		return "", nil, fmt.Errorf("no join for relation '%s'", relation)
	}

	columns := make([]string, len(plan.EagerLoad[relation]))
	for i, column := range plan.EagerLoad[relation] {
		columns[i] = selectExpression(column)
	}

	return sq.Select(columns...).
		From(join.Table).
		Where(sq.Eq{qualify(join.Table, join.ForeignKey): parentKeys}).
		PlaceholderFormat(placeholder).
		ToSql()
}

func buildCondition(plan *types.QueryPlan, predicate types.Predicate) (sq.Sqlizer, error) {
	condition, err := buildComparison(plan, predicate)
	if err != nil || predicate.Relation == "" {
		return condition, err
	}

	join, ok := plan.Joins[predicate.Relation]
	if !ok {
		return nil, fmt.Errorf("no join for relation '%s'", predicate.Relation)
	}

	subquery, args, err := sq.Select("1").
		From(join.Table).
		Where(fmt.Sprintf("%s = %s", qualify(join.Table, join.ForeignKey), qualify(plan.Table, join.ParentKey))).
		Where(condition).
		ToSql()
	if err != nil {
		return nil, err
	}
	return sq.Expr("EXISTS ("+subquery+")", args...), nil
}

func buildComparison(plan *types.QueryPlan, predicate types.Predicate) (sq.Sqlizer, error) {
	column := predicate.Column

	switch predicate.Operator {
	case types.Eq:
		return sq.Eq{column: predicate.Value}, nil
	case types.Neq:
		return sq.NotEq{column: predicate.Value}, nil
	case types.Lt:
		return sq.Lt{column: predicate.Value}, nil
	case types.Lte:
		return sq.LtOrEq{column: predicate.Value}, nil
	case types.Gt:
		return sq.Gt{column: predicate.Value}, nil
	case types.Gte:
		return sq.GtOrEq{column: predicate.Value}, nil
	case types.Like:
		return sq.Like{column: predicate.Value}, nil
	case types.In:
		return sq.Eq{column: predicate.Value}, nil
	case types.NotIn:
		return sq.NotEq{column: predicate.Value}, nil
	case types.IsNull:
		return sq.Eq{column: nil}, nil
	case types.DateCompare:
		operator, ok := types.SqlOperators[predicate.Comparator]
		if !ok || !predicate.Comparator.IsComparison() {
			return nil, fmt.Errorf("invalid date comparison '%s'", predicate.Comparator)
		}
		return sq.Expr(fmt.Sprintf("DATE(%s) %s ?", column, operator), predicate.Value), nil
	case types.And, types.Or:
		children, err := buildChildren(plan, predicate.Children)
		if err != nil {
			return nil, err
		}
		if predicate.Operator == types.Or {
			return sq.Or(children), nil
		}
		return sq.And(children), nil
	case types.Not:
		children, err := buildChildren(plan, predicate.Children)
		if err != nil {
			return nil, err
		}
		query, args, err := sq.And(children).ToSql()
		if err != nil {
			return nil, err
		}
		return sq.Expr("NOT "+query, args...), nil
	}

	return nil, fmt.Errorf("unsupported operator '%s'", predicate.Operator)
}

func buildChildren(plan *types.QueryPlan, predicates []types.Predicate) ([]sq.Sqlizer, error) {
	children := make([]sq.Sqlizer, 0, len(predicates))
	for _, child := range predicates {
		condition, err := buildCondition(plan, child)
		if err != nil {
			return nil, err
		}
		children = append(children, condition)
	}
	return children, nil
}

// selectExpression aliases qualified columns to their base name so rows are keyed the same way by every driver
func selectExpression(column string) string {
	base := types.BaseColumn(column)
	if base == column {
		return column
	}
	return column + " AS " + base
}

func qualify(table, column string) string {
	if types.BaseColumn(column) != column {
		return column
	}
	return table + "." + column
}
