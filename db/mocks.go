package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/mock"
)

type SessionMock struct {
	mock.Mock
}

func (o *SessionMock) Query(ctx context.Context, query string, values ...interface{}) (ResultSet, error) {
	args := o.Called(query, values)
	rs, _ := args.Get(0).(ResultSet)
	return rs, args.Error(1)
}

func (o *SessionMock) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (o *SessionMock) Close() {
	o.Called()
}

type ResultMock struct {
	mock.Mock
}

func (o *ResultMock) Columns() []string {
	args := o.Called()
	return args.Get(0).([]string)
}

func (o *ResultMock) Values() []map[string]interface{} {
	args := o.Called()
	return args.Get(0).([]map[string]interface{})
}

// NewResultMock returns a result set mock yielding the provided rows
func NewResultMock(rows ...map[string]interface{}) *ResultMock {
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	resultMock := &ResultMock{}
	resultMock.On("Values").Return(rows)
	return resultMock
}

func NewSessionMock() *SessionMock {
	return &SessionMock{}
}
