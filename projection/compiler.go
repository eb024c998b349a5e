// Package projection resolves requested field trees into the allow-listed columns a query
// selects and the relation columns it eager loads.
package projection

import (
	"github.com/datastax/query-plan-apis/allowlist"
	"github.com/datastax/query-plan-apis/fields"
	"github.com/datastax/query-plan-apis/log"
)

type Mode int

const (
	// Plain selects the requested fields, falling back to the configured defaults
	Plain Mode = iota
	// Embed adds the relations of the embed expression to the requested fields
	Embed
	// Extended adds the fields of the extended expression to the default selection
	Extended
)

func (m Mode) String() string {
	switch m {
	case Embed:
		return "embed"
	case Extended:
		return "extended"
	default:
		return "plain"
	}
}

// Input is the field selection of one request
type Input struct {
	Mode Mode
	// Fields is the explicit, flat field list
	Fields []fields.Node
	// Modifier is the parsed embed or extended expression
	Modifier []fields.Node
	// Override is a one-shot field list supplied by the caller for this request only
	Override []string
	Defaults []string
	// Allowed is the base field list, used when nothing else selects a field
	Allowed []string
}

// Fragment is the projection part of a query plan
type Fragment struct {
	SelectColumns []string
	EagerLoad     map[string][]string
	// EagerOrder lists the relations of EagerLoad in the order they were requested
	EagerOrder []string
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

// Compile resolves the selection against the projection allow-list. Nodes that are not
// allow-listed are dropped. When no column is left the full allow-listed field set is selected.
func (c Compiler) Compile(in Input, index *allowlist.ProjectionIndex) Fragment {
	b := newBuilder()

	for _, node := range selection(in, index) {
		switch n := node.(type) {
		case fields.Leaf:
			c.resolveLeaf(b, string(n), index)
		case *fields.Group:
			c.resolveGroup(b, n, index)
		}
	}

	if len(b.columns) == 0 {
		b.columns = index.AllColumns()
	}

	return Fragment{
		SelectColumns: b.columns,
		EagerLoad:     b.eager,
		EagerOrder:    b.order,
	}
}

func selection(in Input, index *allowlist.ProjectionIndex) []fields.Node {
	switch in.Mode {
	case Embed:
		return concat(in.Fields, in.Modifier)
	case Extended:
		base := firstNonEmpty(in.Override, in.Defaults, in.Allowed, index.Keys())
		return concat(in.Fields, in.Modifier, fields.Leaves(base...))
	default:
		if len(in.Fields) > 0 {
			return in.Fields
		}
		return fields.Leaves(firstNonEmpty(in.Override, in.Defaults, in.Allowed)...)
	}
}

func (c Compiler) resolveLeaf(b *builder, key string, index *allowlist.ProjectionIndex) {
	if f, ok := index.Field(key); ok {
		b.addColumn(f.Column)
		return
	}
	if relation, ok := index.Relation(key); ok {
		b.addRelation(relation, relation.GeneralColumns())
		return
	}
	c.logger.Debug("ignoring field not in allow-list", "field", key)
}

func (c Compiler) resolveGroup(b *builder, group *fields.Group, index *allowlist.ProjectionIndex) {
	relation, ok := index.Relation(group.Field)
	if !ok {
		c.logger.Debug("ignoring relation not in allow-list", "relation", group.Field)
		return
	}

	if len(group.Children) == 0 {
		b.addRelation(relation, relation.GeneralColumns())
		return
	}

	columns := make([]string, 0, len(group.Children))
	for _, child := range group.Children {
		leaf, ok := child.(fields.Leaf)
		if !ok {
			c.logger.Debug("ignoring nested relation", "relation", group.Field, "field", child.Name())
			continue
		}
		f, ok := relation.Field(string(leaf))
		if !ok {
			c.logger.Debug("ignoring relation field not in allow-list", "relation", group.Field, "field", string(leaf))
			continue
		}
		columns = append(columns, f.Column)
	}
	b.addRelation(relation, columns)
}

type builder struct {
	columns []string
	seen    map[string]struct{}
	eager   map[string][]string
	order   []string
}

func newBuilder() *builder {
	return &builder{
		seen:  make(map[string]struct{}),
		eager: make(map[string][]string),
	}
}

func (b *builder) addColumn(column string) {
	if _, ok := b.seen[column]; ok {
		return
	}
	b.seen[column] = struct{}{}
	b.columns = append(b.columns, column)
}

// addRelation merges columns into the relation's eager load list. The relation key is always
// part of the list.
func (b *builder) addRelation(relation *allowlist.RelationGroup, columns []string) {
	existing, ok := b.eager[relation.Name]
	if !ok {
		b.order = append(b.order, relation.Name)
	}
	if key, ok := relation.KeyField(); ok {
		columns = append(columns, key.Column)
	}
	for _, column := range columns {
		if !contains(existing, column) {
			existing = append(existing, column)
		}
	}
	b.eager[relation.Name] = existing
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func concat(lists ...[]fields.Node) []fields.Node {
	var nodes []fields.Node
	for _, list := range lists {
		nodes = append(nodes, list...)
	}
	return nodes
}

func firstNonEmpty(lists ...[]string) []string {
	for _, list := range lists {
		if len(list) > 0 {
			return list
		}
	}
	return nil
}
