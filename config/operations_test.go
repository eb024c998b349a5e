package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datastax/query-plan-apis/types"
)

func TestOperatorsSetAndClear(t *testing.T) {
	var op types.OperatorSet

	assert.Equal(t, op, types.OperatorSet(0))
	assert.False(t, op.IsSupported(types.Like))

	op.Set(types.Like)
	op.Set(types.In)
	assert.True(t, op.IsSupported(types.Like))
	assert.True(t, op.IsSupported(types.In))

	op.Clear(types.Like)
	assert.False(t, op.IsSupported(types.Like))
	assert.True(t, op.IsSupported(types.In))
}

func TestOperators(t *testing.T) {
	op, err := Operators("eq", "like", "not_in", "date")
	assert.NoError(t, err)
	assert.True(t, op.IsSupported(types.Eq))
	assert.True(t, op.IsSupported(types.Like))
	assert.True(t, op.IsSupported(types.NotIn))
	assert.True(t, op.IsSupported(types.DateCompare))
	assert.False(t, op.IsSupported(types.Or))

	_, err = Operators("eq", "between")
	assert.EqualError(t, err, "invalid operator: between")
}

func TestOperatorNames(t *testing.T) {
	op, err := Operators(OperatorNames()...)
	assert.NoError(t, err)
	assert.Equal(t, types.AllOperatorSet(), op)
}
