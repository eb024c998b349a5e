package endpoint

import (
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"github.com/datastax/query-plan-apis/planner"
	"github.com/datastax/query-plan-apis/types"
)

// Params are the query string parameters of a rows or plan request
type Params struct {
	Request planner.Request
	Trashed types.TrashedMode
}

// ParseParams reads the raw query string in order, so that filters keep the order the client
// sent them in. Parameters that cannot be read are ignored.
func ParseParams(rawQuery string) Params {
	params := Params{Request: planner.Request{Filters: types.NewValues()}}

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue := pair, ""
		if i := strings.IndexByte(pair, '='); i >= 0 {
			rawKey, rawValue = pair[:i], pair[i+1:]
		}
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}

		name, path := splitKey(key)
		switch name {
		case "filters":
			setFilter(params.Request.Filters, path, value)
		case "sort":
			if len(path) > 0 {
				params.Request.Sort = append(params.Request.Sort, value)
			} else {
				params.Request.Sort = append(params.Request.Sort, strings.Split(value, ",")...)
			}
		case "fields":
			params.Request.Fields = value
		case "embed":
			params.Request.Embed = value
		case "extended":
			params.Request.Extended = value
		case "cursor":
			params.Request.Cursor = value
		case "per_page":
			params.Request.PerPage = positiveInt(value)
		case "page":
			params.Request.Page = positiveInt(value)
		case "trashed":
			switch strings.ToLower(value) {
			case "with":
				params.Trashed = types.WithTrashed
			case "only":
				params.Trashed = types.OnlyTrashed
			}
		}
	}

	return params
}

// splitKey splits "filters[a][b][]" into "filters" and ["a", "b", ""]
func splitKey(key string) (string, []string) {
	i := strings.IndexByte(key, '[')
	if i < 0 {
		return key, nil
	}

	name, rest := key[:i], key[i:]
	path := make([]string, 0, 2)
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return name, path
}

func setFilter(values *types.Values, path []string, value string) {
	if len(path) == 0 || path[0] == "" {
		return
	}
	key := path[0]

	switch {
	case len(path) == 1:
		values.Set(key, value)
	case path[1] == "":
		list, _ := values.Get(key)
		items, _ := list.([]string)
		values.Set(key, append(items, value))
	default:
		current, _ := values.Get(key)
		child, ok := current.(*types.Values)
		if !ok {
			child = types.NewValues()
			values.Set(key, child)
		}
		setFilter(child, path[1:], value)
	}
}

func positiveInt(value string) int {
	n, err := cast.ToIntE(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
