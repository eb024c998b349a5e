package config

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// NamingConvention maps the request keys of a declaration file to database identifiers
// when the file does not name the column explicitly
type NamingConvention interface {
	ToColumn(table string, key string) string
	ToTable(name string) string
}

type NamingConventionFn func() NamingConvention

type defaultNaming struct {
}

func NewDefaultNaming() NamingConvention {
	return &defaultNaming{}
}

// ToColumn returns the snake case column of the key qualified with the table. Keys that
// already contain a table qualifier are only converted.
func (n *defaultNaming) ToColumn(table string, key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[:i+1] + strcase.ToSnake(key[i+1:])
	}
	column := strcase.ToSnake(key)
	if table == "" {
		return column
	}
	return table + "." + column
}

func (n *defaultNaming) ToTable(name string) string {
	return strcase.ToSnake(name)
}

type identityNaming struct {
}

// NewIdentityNaming keeps request keys as they are
func NewIdentityNaming() NamingConvention {
	return &identityNaming{}
}

func (n *identityNaming) ToColumn(table string, key string) string {
	if table == "" || strings.Contains(key, ".") {
		return key
	}
	return table + "." + key
}

func (n *identityNaming) ToTable(name string) string {
	return name
}
