package allowlist

import (
	"github.com/datastax/query-plan-apis/types"
)

// AllowedProjectionField declares one selectable field. Relation fields share a Relation
// name; exactly one of them per relation is the relation key.
type AllowedProjectionField struct {
	RequestKey    string `validate:"required"`
	Column        string `validate:"required"`
	IsRelation    bool
	Relation      string
	IsRelationKey bool
}

// RelationGroup is the set of fields selectable on an embedded relation, along with how the
// relation table joins its parent.
type RelationGroup struct {
	Name      string `validate:"required"`
	Table     string `validate:"required"`
	ParentKey string `validate:"required"`
	Fields    []AllowedProjectionField `validate:"required,dive"`
}

func qualify(table, column string) string {
	if table == "" {
		return column
	}
	return table + "." + column
}

// Fields declares scalar fields of a table. Columns are qualified with the table name
// unless the table is empty.
func Fields(table string, keys ...string) []AllowedProjectionField {
	fields := make([]AllowedProjectionField, len(keys))
	for i, key := range keys {
		fields[i] = AllowedProjectionField{RequestKey: key, Column: qualify(table, key)}
	}
	return fields
}

// RelationFields declares the fields of an embeddable relation. The foreign key column of the
// relation table (referencing parentKey on the parent) becomes the relation key field.
func RelationFields(table, relation, parentKey, foreignKey string, keys ...string) RelationGroup {
	fields := make([]AllowedProjectionField, 0, len(keys)+1)
	for _, key := range keys {
		if key == foreignKey {
			continue
		}
		fields = append(fields, AllowedProjectionField{
			RequestKey: key,
			Column:     qualify(table, key),
			IsRelation: true,
			Relation:   relation,
		})
	}
	fields = append(fields, AllowedProjectionField{
		RequestKey:    foreignKey,
		Column:        qualify(table, foreignKey),
		IsRelation:    true,
		Relation:      relation,
		IsRelationKey: true,
	})

	return RelationGroup{
		Name:      relation,
		Table:     table,
		ParentKey: parentKey,
		Fields:    fields,
	}
}

// HideKey returns a copy of the group whose key field is only fetched to associate
// the related records and is not part of the default relation selection.
func (g RelationGroup) HideKey() RelationGroup {
	fields := make([]AllowedProjectionField, len(g.Fields))
	copy(fields, g.Fields)
	for i := range fields {
		if fields[i].IsRelationKey {
			fields[i].IsRelation = false
		}
	}
	g.Fields = fields
	return g
}

func (g *RelationGroup) Field(key string) (AllowedProjectionField, bool) {
	for _, f := range g.Fields {
		if f.RequestKey == key {
			return f, true
		}
	}
	return AllowedProjectionField{}, false
}

func (g *RelationGroup) KeyField() (AllowedProjectionField, bool) {
	for _, f := range g.Fields {
		if f.IsRelationKey {
			return f, true
		}
	}
	return AllowedProjectionField{}, false
}

// GeneralColumns returns the columns selected when the relation is embedded without a sub-selection
func (g *RelationGroup) GeneralColumns() []string {
	columns := make([]string, 0, len(g.Fields))
	for _, f := range g.Fields {
		if f.IsRelation {
			columns = append(columns, f.Column)
		}
	}
	return columns
}

func (g *RelationGroup) Join() types.Join {
	key, _ := g.KeyField()
	return types.Join{
		Relation:   g.Name,
		Table:      g.Table,
		ParentKey:  g.ParentKey,
		ForeignKey: types.BaseColumn(key.Column),
	}
}

// ProjectionIndex resolves requested field keys to either a scalar field or a relation group
type ProjectionIndex struct {
	fields    map[string]AllowedProjectionField
	relations map[string]*RelationGroup
	ordered   []AllowedProjectionField
}

func NewProjectionIndex(fields []AllowedProjectionField, relations []RelationGroup) *ProjectionIndex {
	index := &ProjectionIndex{
		fields:    make(map[string]AllowedProjectionField, len(fields)),
		relations: make(map[string]*RelationGroup, len(relations)),
		ordered:   make([]AllowedProjectionField, 0, len(fields)),
	}
	for _, f := range fields {
		if _, ok := index.fields[f.RequestKey]; !ok {
			index.ordered = append(index.ordered, f)
		}
		index.fields[f.RequestKey] = f
	}
	for i := range relations {
		relation := relations[i]
		index.relations[relation.Name] = &relation
	}
	return index
}

func (p *ProjectionIndex) Field(key string) (AllowedProjectionField, bool) {
	f, ok := p.fields[key]
	return f, ok
}

func (p *ProjectionIndex) Relation(key string) (*RelationGroup, bool) {
	r, ok := p.relations[key]
	return r, ok
}

// Keys returns the scalar field keys in declaration order
func (p *ProjectionIndex) Keys() []string {
	keys := make([]string, len(p.ordered))
	for i, f := range p.ordered {
		keys[i] = f.RequestKey
	}
	return keys
}

// AllColumns returns every allow-listed scalar column in declaration order
func (p *ProjectionIndex) AllColumns() []string {
	columns := make([]string, len(p.ordered))
	for i, f := range p.ordered {
		columns[i] = f.Column
	}
	return columns
}
