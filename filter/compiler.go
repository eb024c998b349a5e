package filter

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/datastax/query-plan-apis/allowlist"
	"github.com/datastax/query-plan-apis/log"
	"github.com/datastax/query-plan-apis/types"
)

const listSeparator = ";"

// Compiler turns merged filter values into predicates. It holds no per-call state and can be
// shared between goroutines.
type Compiler struct {
	logger log.Logger
}

func NewCompiler(logger log.Logger) Compiler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return Compiler{logger: logger}
}

// Compile emits one predicate per allow-listed key, in the order of values. Keys missing from
// the index and values that can not be used with the filter operator are dropped.
func (c Compiler) Compile(values *types.Values, index allowlist.FilterIndex) []types.Predicate {
	if values == nil {
		return nil
	}

	predicates := make([]types.Predicate, 0, values.Len())
	for pair := values.Oldest(); pair != nil; pair = pair.Next() {
		allowed, ok := index[pair.Key]
		if !ok {
			c.logger.Debug("ignoring filter not in allow-list", "key", pair.Key)
			continue
		}

		predicate, ok := c.predicate(allowed, pair.Value, index)
		if !ok {
			c.logger.Debug("ignoring filter with unusable value",
				"key", pair.Key,
				"operator", allowed.Operator.String())
			continue
		}
		predicates = append(predicates, predicate)
	}
	return predicates
}

func (c Compiler) predicate(allowed allowlist.AllowedFilter, value interface{}, index allowlist.FilterIndex) (types.Predicate, bool) {
	predicate := types.Predicate{
		Column:   allowed.Column,
		Operator: allowed.Operator,
	}
	if allowed.Scope == types.ScopeRelation {
		predicate.Relation = allowed.Relation
	}

	switch allowed.Operator {
	case types.Eq, types.Neq, types.Lt, types.Lte, types.Gt, types.Gte:
		v, ok := scalar(value)
		if !ok {
			return predicate, false
		}
		predicate.Value = v
	case types.Like:
		v, ok := scalar(value)
		if !ok {
			return predicate, false
		}
		predicate.Value = fmt.Sprintf("%%%v%%", v)
	case types.In, types.NotIn:
		list := toList(value)
		if len(list) == 0 {
			return predicate, false
		}
		predicate.Value = list
	case types.IsNull:
		predicate.Value = nil
	case types.DateCompare:
		v, ok := scalar(value)
		if !ok {
			return predicate, false
		}
		date, err := cast.ToTimeE(v)
		if err != nil {
			return predicate, false
		}
		predicate.Comparator = allowed.Comparator
		predicate.Value = date.Format(types.DateLayout)
	case types.And, types.Or, types.Not:
		nested, ok := toValues(value)
		if !ok {
			return predicate, false
		}
		predicate.Column = ""
		predicate.Children = c.Compile(nested, index)
		if len(predicate.Children) == 0 {
			return predicate, false
		}
	default:
		return predicate, false
	}

	return predicate, true
}

// scalar reduces a value to the single value compared against a column. Only the first entry of
// a list is used.
func scalar(value interface{}) (interface{}, bool) {
	switch v := value.(type) {
	case nil, *types.Values, map[string]interface{}:
		return nil, false
	case []interface{}:
		if len(v) == 0 {
			return nil, false
		}
		return scalar(v[0])
	case []string:
		if len(v) == 0 {
			return nil, false
		}
		return v[0], true
	default:
		return v, true
	}
}

// toList converts a filter value for In and NotIn. Lists are used as they are and strings are
// split on ';'.
func toList(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil, *types.Values, map[string]interface{}:
		return nil
	case []interface{}:
		return v
	case []string:
		list := make([]interface{}, len(v))
		for i, s := range v {
			list[i] = s
		}
		return list
	case string:
		parts := strings.Split(v, listSeparator)
		list := make([]interface{}, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part != "" {
				list = append(list, part)
			}
		}
		return list
	default:
		return []interface{}{v}
	}
}

func toValues(value interface{}) (*types.Values, bool) {
	switch v := value.(type) {
	case *types.Values:
		return v, v != nil
	case map[string]interface{}:
		return types.ValuesFromMap(v), true
	default:
		return nil, false
	}
}
