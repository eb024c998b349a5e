package config

import (
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/datastax/query-plan-apis/log"
	"github.com/datastax/query-plan-apis/types"
)

type ConfigMock struct {
	mock.Mock
}

func NewConfigMock() *ConfigMock {
	return &ConfigMock{}
}

func (o *ConfigMock) Default() *ConfigMock {
	o.On("Operators").Return(types.AllOperatorSet())
	o.On("DefaultPerPage").Return(25)
	o.On("Naming").Return(NamingConventionFn(NewDefaultNaming))
	o.On("UseUserOrRoleAuth").Return(false)
	o.On("Logger").Return(log.NewZapLogger(zap.NewExample()))
	return o
}

func (o *ConfigMock) Operators() types.OperatorSet {
	args := o.Called()
	return args.Get(0).(types.OperatorSet)
}

func (o *ConfigMock) DefaultPerPage() int {
	args := o.Called()
	return args.Int(0)
}

func (o *ConfigMock) Naming() NamingConventionFn {
	args := o.Called()
	return args.Get(0).(NamingConventionFn)
}

func (o *ConfigMock) UseUserOrRoleAuth() bool {
	args := o.Called()
	return args.Bool(0)
}

func (o *ConfigMock) Logger() log.Logger {
	args := o.Called()
	return args.Get(0).(log.Logger)
}
