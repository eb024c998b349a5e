package endpoint

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datastax/query-plan-apis/types"
)

func TestParseParamsFilters(t *testing.T) {
	query := "filters[name]=an&filters[ids][]=1&filters[ids][]=2&filters[any][city]=Lyon&filters[any][id]=3&filters[name]=bo"
	params := ParseParams(query)

	filters := params.Request.Filters
	require.Equal(t, 3, filters.Len())

	keys := make([]string, 0)
	for pair := filters.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"name", "ids", "any"}, keys)

	name, _ := filters.Get("name")
	assert.Equal(t, "bo", name)

	ids, _ := filters.Get("ids")
	assert.Equal(t, []string{"1", "2"}, ids)

	group, _ := filters.Get("any")
	assert.Equal(t, map[string]interface{}{"city": "Lyon", "id": "3"}, types.ValuesToMap(group.(*types.Values)))
}

func TestParseParamsEscaped(t *testing.T) {
	values := url.Values{}
	values.Set("filters[name]", "a&b")
	params := ParseParams(values.Encode())

	name, ok := params.Request.Filters.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "a&b", name)
}

func TestParseParamsOptions(t *testing.T) {
	params := ParseParams("sort=-name,id&sort[]=email&fields=id,name&embed=profile[city]" +
		"&extended=posts&per_page=10&page=3&cursor=abc&trashed=only")

	assert.Equal(t, []string{"-name", "id", "email"}, params.Request.Sort)
	assert.Equal(t, "id,name", params.Request.Fields)
	assert.Equal(t, "profile[city]", params.Request.Embed)
	assert.Equal(t, "posts", params.Request.Extended)
	assert.Equal(t, 10, params.Request.PerPage)
	assert.Equal(t, 3, params.Request.Page)
	assert.Equal(t, "abc", params.Request.Cursor)
	assert.Equal(t, types.OnlyTrashed, params.Trashed)
}

func TestParseParamsInvalid(t *testing.T) {
	params := ParseParams("per_page=ten&page=-2&trashed=all&filters=1&filters[]=2&unknown=3&%zz=1")

	assert.Equal(t, 0, params.Request.PerPage)
	assert.Equal(t, 0, params.Request.Page)
	assert.Equal(t, types.WithoutTrashed, params.Trashed)
	assert.Equal(t, 0, params.Request.Filters.Len())
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key  string
		name string
		path []string
	}{
		{"sort", "sort", nil},
		{"sort[]", "sort", []string{""}},
		{"filters[a]", "filters", []string{"a"}},
		{"filters[a][b][]", "filters", []string{"a", "b", ""}},
		{"filters[a", "filters", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			name, path := splitKey(tt.key)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.path, path)
		})
	}
}
