package types

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperator(t *testing.T) {
	for _, op := range AllOperators() {
		parsed, err := ParseOperator(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, parsed)
	}

	aliases := map[string]OperatorKind{
		"where":   Eq,
		"":        Eq,
		" LIKE ":  Like,
		"not_in":  NotIn,
		"notin":   NotIn,
		"is_null": IsNull,
	}
	for name, want := range aliases {
		parsed, err := ParseOperator(name)
		require.NoError(t, err)
		assert.Equal(t, want, parsed)
	}

	_, err := ParseOperator("between")
	assert.EqualError(t, err, "unknown operator: between")
}

func TestOperatorKindText(t *testing.T) {
	data, err := json.Marshal(struct {
		Op OperatorKind `json:"op"`
	}{NotIn})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"nin"}`, string(data))

	var op OperatorKind
	require.NoError(t, op.UnmarshalText([]byte("gte")))
	assert.Equal(t, Gte, op)
	assert.Equal(t, "OperatorKind(42)", OperatorKind(42).String())
}

func TestOperatorSet(t *testing.T) {
	set := Operators(Eq, In)
	assert.True(t, set.IsSupported(Eq))
	assert.True(t, set.IsSupported(In))
	assert.False(t, set.IsSupported(Like))

	set.Set(Like)
	set.Clear(Eq)
	assert.True(t, set.IsSupported(Like))
	assert.False(t, set.IsSupported(Eq))

	for _, op := range AllOperators() {
		assert.True(t, AllOperatorSet().IsSupported(op))
	}
}

func TestPredicateString(t *testing.T) {
	tests := []struct {
		predicate Predicate
		want      string
	}{
		{Predicate{Column: "uuid", Operator: In, Value: []interface{}{"1", "2", "3"}}, "uuid IN (1,2,3)"},
		{Predicate{Column: "owner_id", Operator: Like, Value: "%acme%"}, "owner_id LIKE '%acme%'"},
		{Predicate{Column: "deleted_at", Operator: IsNull}, "deleted_at IS NULL"},
		{Predicate{Column: "created_at", Operator: DateCompare, Comparator: Lt, Value: "2020-01-02"}, "DATE(created_at) < 2020-01-02"},
		{Predicate{Column: "city", Operator: Eq, Value: "x", Relation: "profile"}, "EXISTS profile(city = x)"},
		{Predicate{Operator: Or, Children: []Predicate{
			{Column: "a", Operator: Eq, Value: 1},
			{Column: "b", Operator: Gt, Value: 2},
		}}, "(a = 1 OR b > 2)"},
		{Predicate{Operator: Not, Children: []Predicate{{Column: "a", Operator: Neq, Value: 1}}}, "NOT (a != 1)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.predicate.String())
	}
}

func TestCursor(t *testing.T) {
	assert.Equal(t, 50, DecodeCursor(EncodeCursor(50)))
	assert.Equal(t, 0, DecodeCursor("not a cursor"))
	assert.Equal(t, 0, DecodeCursor(""))

	assert.Equal(t, 0, PageOptions{Mode: PageNone, PerPage: 10}.Offset())
	assert.Equal(t, 0, PageOptions{Mode: PageOffset, PerPage: 10, Page: 1}.Offset())
	assert.Equal(t, 20, PageOptions{Mode: PageOffset, PerPage: 10, Page: 3}.Offset())
	assert.Equal(t, 30, PageOptions{Mode: PageCursor, PerPage: 10, Cursor: EncodeCursor(30)}.Offset())
}

func TestOffsetIsBounded(t *testing.T) {
	assert.Equal(t, MaxOffset, PageOptions{Mode: PageOffset, PerPage: 500, Page: math.MaxInt}.Offset())
	assert.Equal(t, MaxOffset, PageOptions{Mode: PageOffset, PerPage: 25, Page: MaxOffset}.Offset())
	assert.Equal(t, MaxOffset, DecodeCursor(EncodeCursor(math.MaxInt)))
	assert.Equal(t, MaxOffset, PageOptions{Mode: PageCursor, PerPage: 10, Cursor: EncodeCursor(MaxOffset + 1)}.Offset())
}

func TestValues(t *testing.T) {
	values := ValuesOf("b", 1, "a", ValuesOf("c", 2), 3, "ignored")
	assert.Equal(t, 2, values.Len())
	assert.Equal(t, map[string]interface{}{"b": 1, "a": map[string]interface{}{"c": 2}}, ValuesToMap(values))

	fromMap := ValuesFromMap(map[string]interface{}{"z": 1, "y": 2})
	assert.Equal(t, "y", fromMap.Oldest().Key)
	assert.Empty(t, ValuesToMap(nil))
}

func TestToJsonValues(t *testing.T) {
	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := ToJsonValues([]map[string]interface{}{
		{"id": 1, "name": []byte("ann"), "created_at": ts},
	})
	assert.Equal(t, "ann", rows[0]["name"])
	assert.Equal(t, "2020-01-02T03:04:05Z", rows[0]["created_at"])
	assert.Equal(t, 1, rows[0]["id"])
	assert.Equal(t, "id", BaseColumn("users.id"))
	assert.Equal(t, "id", BaseColumn("id"))
}
