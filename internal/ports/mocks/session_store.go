package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockSessionStore struct {
	mock.Mock
}

type MockSessionStore_Expecter struct {
	mock *mock.Mock
}

func (_m *MockSessionStore) EXPECT() *MockSessionStore_Expecter {
	return &MockSessionStore_Expecter{mock: &_m.Mock}
}

func (_m *MockSessionStore) Get(ctx context.Context, key string) (string, error) {
	ret := _m.Called(ctx, key)
	return ret.String(0), ret.Error(1)
}

type MockSessionStore_Get_Call struct {
	*mock.Call
}

func (_e *MockSessionStore_Expecter) Get(ctx interface{}, key interface{}) *MockSessionStore_Get_Call {
	return &MockSessionStore_Get_Call{Call: _e.mock.On("Get", ctx, key)}
}

func (_c *MockSessionStore_Get_Call) Return(value string, err error) *MockSessionStore_Get_Call {
	_c.Call.Return(value, err)
	return _c
}

func (_m *MockSessionStore) Put(ctx context.Context, key string, value string) error {
	ret := _m.Called(ctx, key, value)
	return ret.Error(0)
}

type MockSessionStore_Put_Call struct {
	*mock.Call
}

func (_e *MockSessionStore_Expecter) Put(ctx interface{}, key interface{}, value interface{}) *MockSessionStore_Put_Call {
	return &MockSessionStore_Put_Call{Call: _e.mock.On("Put", ctx, key, value)}
}

func (_c *MockSessionStore_Put_Call) Return(err error) *MockSessionStore_Put_Call {
	_c.Call.Return(err)
	return _c
}

func (_m *MockSessionStore) Delete(ctx context.Context, key string) error {
	ret := _m.Called(ctx, key)
	return ret.Error(0)
}

type MockSessionStore_Delete_Call struct {
	*mock.Call
}

func (_e *MockSessionStore_Expecter) Delete(ctx interface{}, key interface{}) *MockSessionStore_Delete_Call {
	return &MockSessionStore_Delete_Call{Call: _e.mock.On("Delete", ctx, key)}
}

func (_c *MockSessionStore_Delete_Call) Return(err error) *MockSessionStore_Delete_Call {
	_c.Call.Return(err)
	return _c
}

func NewMockSessionStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionStore {
	m := &MockSessionStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
