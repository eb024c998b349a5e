package types

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"
)

type toJsonFn func(value interface{}) interface{}

// ToJsonValues converts the driver values of the provided rows into values that are safe to encode as JSON.
// Nested relation rows are converted recursively.
func ToJsonValues(rows []map[string]interface{}) []map[string]interface{} {
	result := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		item := make(map[string]interface{}, len(row))
		for columnName, value := range row {
			item[columnName] = jsonConverter(value)(value)
		}
		result[i] = item
	}
	return result
}

func jsonConverter(value interface{}) toJsonFn {
	switch value.(type) {
	case []byte:
		return ByteArrayToString
	case time.Time, *time.Time:
		return TimeAsString
	case *big.Int, *big.Float, *big.Rat:
		return StringerToString
	case []map[string]interface{}:
		return nestedRows
	}
	return identityFn
}

func identityFn(value interface{}) interface{} {
	return value
}

func nestedRows(value interface{}) interface{} {
	return ToJsonValues(value.([]map[string]interface{}))
}

func StringerToString(value interface{}) interface{} {
	switch value := value.(type) {
	case fmt.Stringer:
		if value == nil {
			return value
		}
		return value.String()
	default:
		return value
	}
}

// ByteArrayToString returns text columns as strings and binary columns as base64
func ByteArrayToString(value interface{}) interface{} {
	switch value := value.(type) {
	case []byte:
		if value == nil {
			return nil
		}
		if utf8.Valid(value) {
			return string(value)
		}
		return base64.StdEncoding.EncodeToString(value)
	default:
		return value
	}
}

func TimeAsString(value interface{}) interface{} {
	switch value := value.(type) {
	case time.Time:
		return value.Format(time.RFC3339Nano)
	case *time.Time:
		if value == nil {
			return nil
		}
		return value.Format(time.RFC3339Nano)
	default:
		return value
	}
}

// BaseColumn strips the table qualifier of a column: "users.id" -> "id"
func BaseColumn(column string) string {
	if i := strings.LastIndex(column, "."); i >= 0 {
		return column[i+1:]
	}
	return column
}
