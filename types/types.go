// types package contains the public query plan types
// that are shared between the compilers, the executor and the REST endpoint
package types

import (
	"fmt"
	"net/http"
	"strings"
)

// OperatorKind identifies how a predicate is constructed from a filter value
type OperatorKind int

const (
	Eq OperatorKind = iota
	Neq
	Lt
	Lte
	Gt
	Gte
	Like
	In
	NotIn
	IsNull
	DateCompare
	And
	Or
	Not
)

var operatorNames = [...]string{
	Eq:          "eq",
	Neq:         "neq",
	Lt:          "lt",
	Lte:         "lte",
	Gt:          "gt",
	Gte:         "gte",
	Like:        "like",
	In:          "in",
	NotIn:       "nin",
	IsNull:      "null",
	DateCompare: "date",
	And:         "and",
	Or:          "or",
	Not:         "not",
}

// SqlOperators contains the SQL comparison operator for the comparison kinds
var SqlOperators = map[OperatorKind]string{
	Eq:    "=",
	Neq:   "!=",
	Lt:    "<",
	Lte:   "<=",
	Gt:    ">",
	Gte:   ">=",
	Like:  "LIKE",
	In:    "IN",
	NotIn: "NOT IN",
}

func (o OperatorKind) String() string {
	if o < 0 || int(o) >= len(operatorNames) {
		return fmt.Sprintf("OperatorKind(%d)", int(o))
	}
	return operatorNames[o]
}

func (o OperatorKind) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *OperatorKind) UnmarshalText(text []byte) error {
	op, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// IsComparison reports whether the operator is one of the scalar comparisons
func (o OperatorKind) IsComparison() bool {
	return o >= Eq && o <= Gte
}

// IsGroup reports whether the operator combines nested predicates
func (o OperatorKind) IsGroup() bool {
	return o == And || o == Or || o == Not
}

// ParseOperator maps an operator name to its kind. "where" is accepted as an alias of "eq".
func ParseOperator(name string) (OperatorKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "where", "":
		return Eq, nil
	case "notin", "not_in":
		return NotIn, nil
	case "isnull", "is_null":
		return IsNull, nil
	}
	for i, n := range operatorNames {
		if n == name {
			return OperatorKind(i), nil
		}
	}
	return Eq, fmt.Errorf("unknown operator: %s", name)
}

// AllOperators lists every operator kind in declaration order
func AllOperators() []OperatorKind {
	ops := make([]OperatorKind, len(operatorNames))
	for i := range operatorNames {
		ops[i] = OperatorKind(i)
	}
	return ops
}

// DateLayout is the format of the normalized value of date predicates
const DateLayout = "2006-01-02"

type Scope int

const (
	ScopeBase Scope = iota
	ScopeRelation
)

func (s Scope) String() string {
	if s == ScopeRelation {
		return "relation"
	}
	return "base"
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Predicate is a single allow-listed filter condition. Group operators (And, Or, Not) carry
// their operands in Children. A non-empty Relation marks an existence check against the
// related records (a semi-join), never a join of the parent rows.
type Predicate struct {
	Column     string       `json:"column,omitempty"`
	Operator   OperatorKind `json:"operator"`
	Comparator OperatorKind `json:"comparator,omitempty"`
	Value      interface{}  `json:"value,omitempty"`
	Relation   string       `json:"relation,omitempty"`
	Children   []Predicate  `json:"children,omitempty"`
}

func (p Predicate) String() string {
	expression := p.condition()
	if p.Relation != "" {
		return fmt.Sprintf("EXISTS %s(%s)", p.Relation, expression)
	}
	return expression
}

func (p Predicate) condition() string {
	switch p.Operator {
	case IsNull:
		return p.Column + " IS NULL"
	case Like:
		return fmt.Sprintf("%s LIKE '%v'", p.Column, p.Value)
	case In, NotIn:
		values, _ := p.Value.([]interface{})
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprint(v)
		}
		return fmt.Sprintf("%s %s (%s)", p.Column, SqlOperators[p.Operator], strings.Join(parts, ","))
	case DateCompare:
		return fmt.Sprintf("DATE(%s) %s %v", p.Column, SqlOperators[p.Comparator], p.Value)
	case And, Or:
		parts := make([]string, len(p.Children))
		for i, child := range p.Children {
			parts[i] = child.String()
		}
		return "(" + strings.Join(parts, " "+strings.ToUpper(p.Operator.String())+" ") + ")"
	case Not:
		parts := make([]string, len(p.Children))
		for i, child := range p.Children {
			parts[i] = child.String()
		}
		return "NOT (" + strings.Join(parts, " AND ") + ")"
	default:
		return fmt.Sprintf("%s %s %v", p.Column, SqlOperators[p.Operator], p.Value)
	}
}

type OrderItem struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// Join describes how an embedded or filtered relation is associated with its parent:
// Table.ForeignKey references Parent.ParentKey
type Join struct {
	Relation   string `json:"relation"`
	Table      string `json:"table"`
	ParentKey  string `json:"parentKey"`
	ForeignKey string `json:"foreignKey"`
}

type PageMode int

const (
	PageNone PageMode = iota
	PageOffset
	PageCursor
)

type PageOptions struct {
	Mode    PageMode `json:"mode"`
	PerPage int      `json:"perPage"`
	Page    int      `json:"page,omitempty"`
	Cursor  string   `json:"cursor,omitempty"`
}

type TrashedMode int

const (
	WithoutTrashed TrashedMode = iota
	WithTrashed
	OnlyTrashed
)

// QueryPlan is the complete, allow-listed description of one read handed to the executor
type QueryPlan struct {
	Resource         string              `json:"resource"`
	Table            string              `json:"table"`
	SelectColumns    []string            `json:"selectColumns"`
	Predicates       []Predicate         `json:"predicates"`
	OrderBy          []OrderItem         `json:"orderBy"`
	EagerLoad        map[string][]string `json:"eagerLoad,omitempty"`
	EagerOrder       []string            `json:"eagerOrder,omitempty"`
	Joins            map[string]Join     `json:"joins,omitempty"`
	Page             PageOptions         `json:"page"`
	Trashed          TrashedMode         `json:"trashed"`
	SoftDeleteColumn string              `json:"softDeleteColumn,omitempty"`
}

type QueryResult struct {
	Values     []map[string]interface{} `json:"values"`
	Page       int                      `json:"page,omitempty"`
	PerPage    int                      `json:"perPage,omitempty"`
	NextCursor string                   `json:"nextCursor,omitempty"`
}

// Route represents a request route to be served
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}
