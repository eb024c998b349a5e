// Package blog is a small users, profiles and posts data set shared by the tests
package blog

import (
	"github.com/datastax/query-plan-apis/allowlist"
	"github.com/datastax/query-plan-apis/types"
)

var Schema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		owner_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	)`,
	`CREATE TABLE profiles (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		city TEXT,
		bio TEXT
	)`,
	`CREATE TABLE posts (
		id INTEGER PRIMARY KEY,
		author_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		published INTEGER NOT NULL
	)`,
}

var Data = []string{
	`INSERT INTO users (id, name, email, owner_id, created_at, deleted_at) VALUES
		(1, 'Ann', 'ann@acme.io', 'acme', '2024-01-10T09:00:00Z', NULL),
		(2, 'Bob', 'bob@acme.io', 'acme', '2024-02-15T12:30:00Z', NULL),
		(3, 'Cid', NULL, 'globex', '2024-03-20T08:00:00Z', NULL),
		(4, 'Dee', 'dee@globex.io', 'globex', '2024-04-01T10:00:00Z', '2024-05-01T00:00:00Z')`,
	`INSERT INTO profiles (id, user_id, city, bio) VALUES
		(1, 1, 'Lyon', 'Ann writes'),
		(2, 2, 'Nice', 'Bob reads'),
		(3, 3, 'Lyon', 'Cid cooks')`,
	`INSERT INTO posts (id, author_id, title, published) VALUES
		(1, 1, 'Hello', 1),
		(2, 1, 'Second thoughts', 0),
		(3, 2, 'Bob says hi', 1)`,
}

func Users() allowlist.Resource {
	return allowlist.Resource{
		Name:   "users",
		Table:  "users",
		Fields: allowlist.Fields("users", "id", "name", "email", "owner_id", "created_at"),
		Relations: []allowlist.RelationGroup{
			allowlist.RelationFields("profiles", "profile", "id", "user_id", "city", "bio"),
			allowlist.RelationFields("posts", "posts", "id", "author_id", "id", "title", "published").HideKey(),
		},
		DefaultFields: []string{"id", "name"},
		Filters: []allowlist.AllowedFilter{
			allowlist.Where("id", "users.id"),
			allowlist.WhereIn("ids", "users.id"),
			allowlist.WhereNotIn("exclude", "users.id"),
			allowlist.WhereLike("name", "users.name"),
			allowlist.WhereLike("owner_id", "users.owner_id"),
			allowlist.WhereGt("after_id", "users.id"),
			allowlist.WhereNull("no_email", "users.email"),
			allowlist.WhereDate("created_from", "users.created_at").Compare(types.Gte),
			allowlist.WhereDate("created_before", "users.created_at").Compare(types.Lt),
			allowlist.OnRelation("profile").Where("city", "profiles.city"),
			allowlist.OnRelation("posts").WhereLike("post_title", "posts.title"),
			allowlist.WhereOr("any"),
			allowlist.WhereAnd("all"),
			allowlist.WhereNot("not"),
		},
		DefaultSorts:     []string{"id"},
		SoftDeleteColumn: "users.deleted_at",
	}
}

func Posts() allowlist.Resource {
	return allowlist.Resource{
		Name:   "posts",
		Table:  "posts",
		Fields: allowlist.Fields("posts", "id", "author_id", "title", "published"),
		Filters: []allowlist.AllowedFilter{
			allowlist.Where("author", "posts.author_id"),
			allowlist.Where("published", "posts.published"),
		},
		SystemFilters: types.ValuesOf("published", 1),
		ScopeFilter:   "author",
		PerPage:       2,
	}
}

func Resources() []allowlist.Resource {
	return []allowlist.Resource{Users(), Posts()}
}

// Registry registers the blog resources with every operator enabled
func Registry() *allowlist.Registry {
	registry, err := allowlist.NewRegistry(allowlist.DefaultOptions(), Resources()...)
	if err != nil {
		panic(err)
	}
	return registry
}
