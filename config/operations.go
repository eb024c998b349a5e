package config

import (
	"fmt"

	"github.com/datastax/query-plan-apis/types"
)

// Operators parses the filter operator names enabled on the server
func Operators(names ...string) (types.OperatorSet, error) {
	var o types.OperatorSet
	err := AddOperators(&o, names...)
	return o, err
}

func AddOperators(o *types.OperatorSet, names ...string) error {
	for _, name := range names {
		op, err := types.ParseOperator(name)
		if err != nil {
			return fmt.Errorf("invalid operator: %s", name)
		}
		o.Set(op)
	}
	return nil
}

// OperatorNames lists every operator name, used as the default value of the server flag
func OperatorNames() []string {
	ops := types.AllOperators()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return names
}
