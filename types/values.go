package types

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Values holds filter values keyed by request key, in the order the keys were first set
type Values = orderedmap.OrderedMap[string, interface{}]

func NewValues() *Values {
	return orderedmap.New[string, interface{}]()
}

// ValuesOf builds Values from alternating key and value arguments
func ValuesOf(keyAndValues ...interface{}) *Values {
	values := NewValues()
	for i := 0; i+1 < len(keyAndValues); i += 2 {
		key, ok := keyAndValues[i].(string)
		if !ok {
			continue
		}
		values.Set(key, keyAndValues[i+1])
	}
	return values
}

// ValuesFromMap copies a plain map, ordering the keys alphabetically so the result is stable
func ValuesFromMap(m map[string]interface{}) *Values {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := NewValues()
	for _, k := range keys {
		values.Set(k, m[k])
	}
	return values
}

// ValuesToMap flattens Values into a plain map, dropping the order
func ValuesToMap(values *Values) map[string]interface{} {
	if values == nil {
		return map[string]interface{}{}
	}
	m := make(map[string]interface{}, values.Len())
	for pair := values.Oldest(); pair != nil; pair = pair.Next() {
		if nested, ok := pair.Value.(*Values); ok {
			m[pair.Key] = ValuesToMap(nested)
			continue
		}
		m[pair.Key] = pair.Value
	}
	return m
}

// OperatorSet is a bitset of the operator kinds a server accepts in filter declarations
type OperatorSet int

func Operators(ops ...OperatorKind) OperatorSet {
	var s OperatorSet
	for _, op := range ops {
		s.Set(op)
	}
	return s
}

// AllOperatorSet returns a set containing every operator kind
func AllOperatorSet() OperatorSet {
	return Operators(AllOperators()...)
}

func (s *OperatorSet) Set(op OperatorKind)              { *s |= 1 << uint(op) }
func (s *OperatorSet) Clear(op OperatorKind)            { *s &= ^(1 << uint(op)) }
func (s OperatorSet) IsSupported(op OperatorKind) bool { return s&(1<<uint(op)) != 0 }
