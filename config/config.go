package config

import (
	"github.com/datastax/query-plan-apis/log"
	"github.com/datastax/query-plan-apis/types"
)

type Config interface {
	// Operators are the filter operators resource declarations are allowed to use
	Operators() types.OperatorSet
	DefaultPerPage() int
	Naming() NamingConventionFn
	// UseUserOrRoleAuth requires a caller identity on resources scoped to their owner
	UseUserOrRoleAuth() bool
	Logger() log.Logger
}
