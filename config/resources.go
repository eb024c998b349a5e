package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/datastax/query-plan-apis/allowlist"
	"github.com/datastax/query-plan-apis/types"
)

// ResourceDefinition is the declaration of a resource as read from the config file
type ResourceDefinition struct {
	Name  string `mapstructure:"name"`
	Table string `mapstructure:"table"`
	// Fields are request keys. Columns maps a key to its column when the naming convention does not apply.
	Fields           []string               `mapstructure:"fields"`
	Columns          map[string]string      `mapstructure:"columns"`
	Relations        []RelationDefinition   `mapstructure:"relations"`
	Allowed          []string               `mapstructure:"allowed"`
	DefaultFields    []string               `mapstructure:"default_fields"`
	Sorts            []string               `mapstructure:"sorts"`
	DefaultSorts     []string               `mapstructure:"default_sorts"`
	Filters          []FilterDefinition     `mapstructure:"filters"`
	SystemFilters    map[string]interface{} `mapstructure:"system_filters"`
	DefaultFilters   map[string]interface{} `mapstructure:"default_filters"`
	PerPage          int                    `mapstructure:"per_page"`
	SoftDeleteColumn string                 `mapstructure:"soft_delete_column"`
	ScopeFilter      string                 `mapstructure:"scope_filter"`
}

type RelationDefinition struct {
	Name       string   `mapstructure:"name"`
	Table      string   `mapstructure:"table"`
	ParentKey  string   `mapstructure:"parent_key"`
	ForeignKey string   `mapstructure:"foreign_key"`
	Fields     []string `mapstructure:"fields"`
	HideKey    bool     `mapstructure:"hide_key"`
}

type FilterDefinition struct {
	Key        string `mapstructure:"key"`
	Column     string `mapstructure:"column"`
	Operator   string `mapstructure:"operator"`
	Comparator string `mapstructure:"comparator"`
	Relation   string `mapstructure:"relation"`
}

// DecodeResources decodes the raw "resources" config value. Unknown keys are reported as errors.
func DecodeResources(raw interface{}) ([]ResourceDefinition, error) {
	var defs []ResourceDefinition
	if raw == nil {
		return defs, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &defs,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid resource definitions: %s", err)
	}
	return defs, nil
}

// Resources converts definitions into resource declarations ready to be registered
func Resources(defs []ResourceDefinition, naming NamingConvention) ([]allowlist.Resource, error) {
	resources := make([]allowlist.Resource, 0, len(defs))
	for _, def := range defs {
		resource, err := def.ToResource(naming)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	return resources, nil
}

func (d ResourceDefinition) ToResource(naming NamingConvention) (allowlist.Resource, error) {
	table := d.Table
	if table == "" {
		table = naming.ToTable(d.Name)
	}

	resource := allowlist.Resource{
		Name:          d.Name,
		Table:         table,
		Fields:        make([]allowlist.AllowedProjectionField, 0, len(d.Fields)),
		Relations:     make([]allowlist.RelationGroup, 0, len(d.Relations)),
		Allowed:       d.Allowed,
		DefaultFields: d.DefaultFields,
		Sorts:         d.Sorts,
		DefaultSorts:  d.DefaultSorts,
		Filters:       make([]allowlist.AllowedFilter, 0, len(d.Filters)),
		PerPage:       d.PerPage,
		ScopeFilter:   d.ScopeFilter,
	}

	for _, key := range d.Fields {
		resource.Fields = append(resource.Fields, allowlist.AllowedProjectionField{
			RequestKey: key,
			Column:     d.column(naming, table, key),
		})
	}

	relationTables := make(map[string]string, len(d.Relations))
	for _, rel := range d.Relations {
		if rel.ForeignKey == "" {
			return allowlist.Resource{}, allowlist.NewConfigurationError(d.Name, rel.Name, "relation has no foreign key")
		}
		relTable := rel.Table
		if relTable == "" {
			relTable = naming.ToTable(rel.Name)
		}
		parentKey := rel.ParentKey
		if parentKey == "" {
			parentKey = "id"
		}
		relationTables[rel.Name] = relTable

		group := allowlist.RelationFields(relTable, rel.Name, parentKey, rel.ForeignKey, rel.Fields...)
		for i := range group.Fields {
			group.Fields[i].Column = naming.ToColumn(relTable, group.Fields[i].RequestKey)
		}
		if rel.HideKey {
			group = group.HideKey()
		}
		resource.Relations = append(resource.Relations, group)
	}

	for _, f := range d.Filters {
		filter, err := d.filter(naming, table, relationTables, f)
		if err != nil {
			return allowlist.Resource{}, err
		}
		resource.Filters = append(resource.Filters, filter)
	}

	if d.SystemFilters != nil {
		resource.SystemFilters = types.ValuesFromMap(d.SystemFilters)
	}
	if d.DefaultFilters != nil {
		resource.DefaultFilters = types.ValuesFromMap(d.DefaultFilters)
	}
	if d.SoftDeleteColumn != "" {
		resource.SoftDeleteColumn = naming.ToColumn(table, d.SoftDeleteColumn)
	}

	return resource, nil
}

func (d ResourceDefinition) column(naming NamingConvention, table, key string) string {
	if column, ok := d.Columns[key]; ok && column != "" {
		return column
	}
	return naming.ToColumn(table, key)
}

func (d ResourceDefinition) filter(
	naming NamingConvention,
	table string,
	relationTables map[string]string,
	f FilterDefinition,
) (allowlist.AllowedFilter, error) {
	op, err := types.ParseOperator(f.Operator)
	if err != nil {
		return allowlist.AllowedFilter{}, allowlist.NewConfigurationError(d.Name, f.Key, err.Error())
	}

	// the zero builder declares filters on the resource itself
	var builder allowlist.FilterBuilder
	column := f.Column
	if f.Relation != "" {
		builder = allowlist.OnRelation(f.Relation)
		if column == "" {
			column = naming.ToColumn(relationTables[f.Relation], f.Key)
		}
	} else if column == "" {
		column = d.column(naming, table, f.Key)
	}

	filter := builder.WhereOp(f.Key, op, column)
	if f.Comparator != "" {
		comparator, err := types.ParseOperator(f.Comparator)
		if err != nil {
			return allowlist.AllowedFilter{}, allowlist.NewConfigurationError(d.Name, f.Key, err.Error())
		}
		filter = filter.Compare(comparator)
	}
	return filter, nil
}
