package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datastax/query-plan-apis/allowlist"
	"github.com/datastax/query-plan-apis/auth"
	"github.com/datastax/query-plan-apis/config"
	"github.com/datastax/query-plan-apis/internal/testutil"
	"github.com/datastax/query-plan-apis/internal/testutil/schemas/blog"
	e "github.com/datastax/query-plan-apis/rest/errors"
	"github.com/datastax/query-plan-apis/types"
)

func newPlanner() *Planner {
	return NewPlanner(blog.Registry(), testutil.TestLogger())
}

func predicateStrings(predicates []types.Predicate) []string {
	result := make([]string, len(predicates))
	for i, p := range predicates {
		result[i] = p.String()
	}
	return result
}

func TestPlanUnknownResource(t *testing.T) {
	plan, err := newPlanner().Plan(context.Background(), "secrets", Request{}, Overrides{})
	assert.Nil(t, plan)

	var notFound *e.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "secrets", notFound.Resource)
}

func TestPlanDefaults(t *testing.T) {
	plan, err := newPlanner().Plan(context.Background(), "users", Request{}, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "users", plan.Resource)
	assert.Equal(t, "users", plan.Table)
	assert.Equal(t, []string{"users.id", "users.name"}, plan.SelectColumns)
	assert.Empty(t, plan.Predicates)
	assert.Equal(t, []types.OrderItem{{Column: "users.id", Direction: types.Asc}}, plan.OrderBy)
	assert.Empty(t, plan.EagerLoad)
	assert.Empty(t, plan.Joins)
	assert.Equal(t, types.PageOptions{Mode: types.PageNone, PerPage: 25}, plan.Page)
	assert.Equal(t, types.WithoutTrashed, plan.Trashed)
	assert.Equal(t, "users.deleted_at", plan.SoftDeleteColumn)
}

func TestPlanFilters(t *testing.T) {
	req := Request{
		Filters: types.ValuesOf(
			"city", "Lyon",
			"password", "x",
			"ids", "1;2;3",
			"name", "a"),
	}
	ov := Overrides{
		DefaultFilters: types.ValuesOf("owner_id", "globex", "name", "b"),
		Filters:        types.ValuesOf("owner_id", "acme"),
	}

	plan, err := newPlanner().Plan(context.Background(), "users", req, ov)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"users.owner_id LIKE '%acme%'",
		"users.name LIKE '%a%'",
		"EXISTS profile(profiles.city = Lyon)",
		"users.id IN (1,2,3)",
	}, predicateStrings(plan.Predicates))
	assert.Equal(t, map[string]types.Join{
		"profile": {Relation: "profile", Table: "profiles", ParentKey: "id", ForeignKey: "user_id"},
	}, plan.Joins)
}

func TestPlanJoinsOfGroupedRelationFilters(t *testing.T) {
	req := Request{
		Filters: types.ValuesOf("any", types.ValuesOf("post_title", "hi", "id", 3)),
	}
	plan, err := newPlanner().Plan(context.Background(), "users", req, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, []string{"(EXISTS posts(posts.title LIKE '%hi%') OR users.id = 3)"}, predicateStrings(plan.Predicates))
	assert.Contains(t, plan.Joins, "posts")
}

func TestPlanSorts(t *testing.T) {
	planner := newPlanner()
	ctx := context.Background()

	plan, err := planner.Plan(ctx, "users", Request{Sort: []string{"-name", "password"}}, Overrides{AdhocSorts: []string{"email"}})
	require.NoError(t, err)
	assert.Equal(t, []types.OrderItem{{Column: "users.name", Direction: types.Desc}}, plan.OrderBy)

	plan, err = planner.Plan(ctx, "users", Request{}, Overrides{AdhocSorts: []string{"-created_at"}})
	require.NoError(t, err)
	assert.Equal(t, []types.OrderItem{
		{Column: "users.id", Direction: types.Asc},
		{Column: "users.created_at", Direction: types.Desc},
	}, plan.OrderBy)

	plan, err = planner.Plan(ctx, "users", Request{}, Overrides{Sorts: []string{"-email"}})
	require.NoError(t, err)
	assert.Equal(t, []types.OrderItem{{Column: "users.email", Direction: types.Desc}}, plan.OrderBy)
}

func TestPlanSortsResolveDeclaredColumns(t *testing.T) {
	resources, err := config.Resources([]config.ResourceDefinition{{
		Name:          "users",
		Fields:        []string{"id", "name", "createdAt"},
		Columns:       map[string]string{"name": "users.full_name"},
		DefaultFields: []string{"id"},
	}}, config.NewDefaultNaming())
	require.NoError(t, err)
	registry, err := allowlist.NewRegistry(allowlist.DefaultOptions(), resources...)
	require.NoError(t, err)

	plan, err := NewPlanner(registry, nil).Plan(context.Background(), "users",
		Request{Sort: []string{"-createdAt", "name", "created_at"}}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []types.OrderItem{
		{Column: "users.created_at", Direction: types.Desc},
		{Column: "users.full_name", Direction: types.Asc},
	}, plan.OrderBy)
}

func TestPlanSortsFollowAllowedOverride(t *testing.T) {
	planner := newPlanner()
	ctx := context.Background()

	plan, err := planner.Plan(ctx, "users", Request{Sort: []string{"email", "-name"}}, Overrides{Allowed: []string{"id", "name"}})
	require.NoError(t, err)
	assert.Equal(t, []types.OrderItem{{Column: "users.name", Direction: types.Desc}}, plan.OrderBy)

	plan, err = planner.Plan(ctx, "users", Request{Sort: []string{"email"}}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []types.OrderItem{{Column: "users.email", Direction: types.Asc}}, plan.OrderBy)
}

func TestPlanProjectionModes(t *testing.T) {
	planner := newPlanner()
	ctx := context.Background()

	plan, err := planner.Plan(ctx, "users", Request{Fields: "email", Embed: "profile[city];posts[]"}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []string{"users.email"}, plan.SelectColumns)
	assert.Equal(t, []string{"profile", "posts"}, plan.EagerOrder)
	assert.Equal(t, []string{"profiles.city", "profiles.user_id"}, plan.EagerLoad["profile"])
	assert.Equal(t, []string{"posts.id", "posts.title", "posts.published", "posts.author_id"}, plan.EagerLoad["posts"])
	assert.Len(t, plan.Joins, 2)

	// embed takes precedence over extended
	plan, err = planner.Plan(ctx, "users", Request{Embed: "profile", Extended: "email"}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []string{"users.id", "users.name", "users.email", "users.owner_id", "users.created_at"}, plan.SelectColumns)

	plan, err = planner.Plan(ctx, "users", Request{Extended: "email"}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []string{"users.email", "users.id", "users.name"}, plan.SelectColumns)

	plan, err = planner.Plan(ctx, "users", Request{}, Overrides{Fields: []string{"owner_id"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"users.owner_id"}, plan.SelectColumns)
}

func TestPlanOverridesDoNotLeak(t *testing.T) {
	planner := newPlanner()
	ctx := context.Background()

	_, err := planner.Plan(ctx, "users", Request{}, Overrides{
		Filters: types.ValuesOf("id", 1),
		Sorts:   []string{"-email"},
		Fields:  []string{"email"},
		Trashed: types.OnlyTrashed,
	})
	require.NoError(t, err)

	plan, err := planner.Plan(ctx, "users", Request{}, Overrides{})
	require.NoError(t, err)
	assert.Empty(t, plan.Predicates)
	assert.Equal(t, []types.OrderItem{{Column: "users.id", Direction: types.Asc}}, plan.OrderBy)
	assert.Equal(t, []string{"users.id", "users.name"}, plan.SelectColumns)
	assert.Equal(t, types.WithoutTrashed, plan.Trashed)
}

func TestPlanScopeAndSystemFilters(t *testing.T) {
	planner := newPlanner()

	req := Request{Filters: types.ValuesOf("author", "2", "published", 0)}
	plan, err := planner.Plan(auth.WithContextUserOrRole(context.Background(), "1"), "posts", req, Overrides{
		Filters: types.ValuesOf("author", "3"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"posts.author_id = 1", "posts.published = 1"}, predicateStrings(plan.Predicates))

	plan, err = planner.Plan(context.Background(), "posts", Request{}, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []string{"posts.published = 1", "posts.author_id = "}, predicateStrings(plan.Predicates))

	// the registered system filters are left untouched
	posts, _ := planner.Registry().Resource("posts")
	assert.Equal(t, 1, posts.SystemFilters.Len())
}

func TestPlanPagination(t *testing.T) {
	planner := newPlanner()
	ctx := context.Background()

	tests := []struct {
		name     string
		resource string
		req      Request
		want     types.PageOptions
	}{
		{"resource per page", "posts", Request{}, types.PageOptions{Mode: types.PageNone, PerPage: 2}},
		{"page", "users", Request{Page: 3}, types.PageOptions{Mode: types.PageOffset, PerPage: 25, Page: 3}},
		{"per page alone starts on the first page", "users", Request{PerPage: 10}, types.PageOptions{Mode: types.PageOffset, PerPage: 10, Page: 1}},
		{"per page is capped", "users", Request{PerPage: 10000, Page: 1}, types.PageOptions{Mode: types.PageOffset, PerPage: 500, Page: 1}},
		{"cursor wins over page", "users", Request{Cursor: "abc", Page: 2}, types.PageOptions{Mode: types.PageCursor, PerPage: 25, Cursor: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planner.Plan(ctx, tt.resource, tt.req, Overrides{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.Page)
		})
	}
}

func TestPlanTrashed(t *testing.T) {
	planner := newPlanner()

	plan, err := planner.Plan(context.Background(), "users", Request{}, Overrides{Trashed: types.OnlyTrashed})
	require.NoError(t, err)
	assert.Equal(t, types.OnlyTrashed, plan.Trashed)

	// resources without a soft delete column ignore the mode
	plan, err = planner.Plan(context.Background(), "posts", Request{}, Overrides{Trashed: types.WithTrashed})
	require.NoError(t, err)
	assert.Equal(t, types.WithoutTrashed, plan.Trashed)
	assert.Equal(t, "", plan.SoftDeleteColumn)
}
