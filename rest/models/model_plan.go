package models

import "github.com/datastax/query-plan-apis/types"

// Plan explains how a request is compiled without executing it
type Plan struct {
	Plan  *types.QueryPlan `json:"plan"`
	Query string           `json:"query"`
	Args  []interface{}    `json:"args"`
}
