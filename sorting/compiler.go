// Package sorting compiles client sort keys into allow-listed order items.
package sorting

import (
	"strings"

	"github.com/datastax/query-plan-apis/log"
	"github.com/datastax/query-plan-apis/types"
)

const descPrefix = "-"

// Merge picks the sort tokens of one request. Sort keys sent by the client replace everything.
// Otherwise a per-call override replaces the configured defaults, and ad-hoc sorts are appended
// after them.
func Merge(request, override, defaults, adhoc []string) []string {
	if len(request) > 0 {
		return request
	}

	base := defaults
	if len(override) > 0 {
		base = override
	}

	merged := make([]string, 0, len(base)+len(adhoc))
	merged = append(merged, base...)
	return append(merged, adhoc...)
}

// Decode splits a sort token into its field name and direction. A leading '-' sorts descending.
func Decode(token string) (string, types.Direction) {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, descPrefix) {
		return strings.TrimSpace(token[len(descPrefix):]), types.Desc
	}
	return token, types.Asc
}

type Compiler struct {
	logger log.Logger
}

func NewCompiler(logger log.Logger) Compiler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return Compiler{logger: logger}
}

// Compile keeps the tokens naming an allowed sort field, in the order they were given, and
// resolves each of them to the column allowed maps it to
func (c Compiler) Compile(tokens []string, allowed map[string]string) []types.OrderItem {
	items := make([]types.OrderItem, 0, len(tokens))
	for _, token := range tokens {
		field, direction := Decode(token)
		if field == "" {
			continue
		}
		column, ok := allowed[field]
		if !ok || column == "" {
			c.logger.Debug("ignoring sort not in allow-list", "field", field)
			continue
		}
		items = append(items, types.OrderItem{Column: column, Direction: direction})
	}
	return items
}
