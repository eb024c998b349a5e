package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datastax/query-plan-apis/allowlist"
	"github.com/datastax/query-plan-apis/types"
)

const blogConfig = `
resources:
  - name: users
    fields: [id, name, email, ownerId, createdAt]
    columns:
      email: users.email_address
    default_fields: [id, name]
    default_sorts: [id]
    soft_delete_column: deletedAt
    relations:
      - name: profile
        table: profiles
        foreign_key: user_id
        fields: [city, bio]
      - name: posts
        foreign_key: author_id
        fields: [id, title]
        hide_key: true
    filters:
      - key: id
      - key: ids
        column: users.id
        operator: in
      - key: name
        operator: like
      - key: createdFrom
        column: users.created_at
        operator: date
        comparator: gte
      - key: city
        relation: profile
      - key: any
        operator: or
  - name: posts
    fields: [id, title, published]
    filters:
      - key: author
        column: posts.author_id
      - key: published
    system_filters:
      published: 1
    scope_filter: author
    per_page: 10
`

func readDefinitions(t *testing.T, content string) []ResourceDefinition {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(content)))
	defs, err := DecodeResources(v.Get("resources"))
	require.NoError(t, err)
	return defs
}

func TestResources(t *testing.T) {
	defs := readDefinitions(t, blogConfig)
	require.Len(t, defs, 2)

	resources, err := Resources(defs, NewDefaultNaming())
	require.NoError(t, err)

	users := resources[0]
	assert.Equal(t, "users", users.Table)
	assert.Equal(t, []allowlist.AllowedProjectionField{
		{RequestKey: "id", Column: "users.id"},
		{RequestKey: "name", Column: "users.name"},
		{RequestKey: "email", Column: "users.email_address"},
		{RequestKey: "ownerId", Column: "users.owner_id"},
		{RequestKey: "createdAt", Column: "users.created_at"},
	}, users.Fields)
	assert.Equal(t, "users.deleted_at", users.SoftDeleteColumn)

	require.Len(t, users.Relations, 2)
	assert.Equal(t, types.Join{Relation: "profile", Table: "profiles", ParentKey: "id", ForeignKey: "user_id"},
		users.Relations[0].Join())
	assert.Equal(t, "posts", users.Relations[1].Table)
	assert.Equal(t, []string{"posts.id", "posts.title"}, users.Relations[1].GeneralColumns())

	assert.Equal(t, []allowlist.AllowedFilter{
		allowlist.Where("id", "users.id"),
		allowlist.WhereIn("ids", "users.id"),
		allowlist.WhereLike("name", "users.name"),
		allowlist.WhereDate("createdFrom", "users.created_at").Compare(types.Gte),
		allowlist.OnRelation("profile").Where("city", "profiles.city"),
		allowlist.WhereOr("any"),
	}, users.Filters)

	posts := resources[1]
	assert.Equal(t, 10, posts.PerPage)
	assert.Equal(t, "author", posts.ScopeFilter)
	assert.Equal(t, map[string]interface{}{"published": 1}, types.ValuesToMap(posts.SystemFilters))

	registry, err := allowlist.NewRegistry(allowlist.DefaultOptions(), resources...)
	require.NoError(t, err)
	assert.Equal(t, []string{"posts", "users"}, registry.Names())
}

func TestResourcesInvalidOperator(t *testing.T) {
	defs := []ResourceDefinition{{
		Name:    "users",
		Fields:  []string{"id"},
		Filters: []FilterDefinition{{Key: "id", Operator: "between"}},
	}}
	_, err := Resources(defs, NewDefaultNaming())

	var configErr *allowlist.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.EqualError(t, err, "resource 'users', key 'id': unknown operator: between")
}

func TestResourcesMissingForeignKey(t *testing.T) {
	defs := []ResourceDefinition{{
		Name:      "users",
		Relations: []RelationDefinition{{Name: "profile"}},
	}}
	_, err := Resources(defs, NewDefaultNaming())
	assert.EqualError(t, err, "resource 'users', key 'profile': relation has no foreign key")
}

func TestDecodeResourcesUnknownKey(t *testing.T) {
	_, err := DecodeResources([]interface{}{
		map[string]interface{}{"name": "users", "feilds": []string{"id"}},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "feilds")
}

func TestDecodeResourcesEmpty(t *testing.T) {
	defs, err := DecodeResources(nil)
	assert.NoError(t, err)
	assert.Empty(t, defs)
}
