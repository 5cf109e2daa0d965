package mocks

import (
	"context"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSessionAPI struct {
	mock.Mock
}

type MockSessionAPI_Expecter struct {
	mock *mock.Mock
}

func (_m *MockSessionAPI) EXPECT() *MockSessionAPI_Expecter {
	return &MockSessionAPI_Expecter{mock: &_m.Mock}
}

func (_m *MockSessionAPI) WhoAmI(ctx context.Context) (domain.WhoAmI, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(domain.WhoAmI), ret.Error(1)
}

type MockSessionAPI_WhoAmI_Call struct {
	*mock.Call
}

func (_e *MockSessionAPI_Expecter) WhoAmI(ctx interface{}) *MockSessionAPI_WhoAmI_Call {
	return &MockSessionAPI_WhoAmI_Call{Call: _e.mock.On("WhoAmI", ctx)}
}

func (_c *MockSessionAPI_WhoAmI_Call) Run(run func(ctx context.Context)) *MockSessionAPI_WhoAmI_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context))
	})
	return _c
}

func (_c *MockSessionAPI_WhoAmI_Call) Return(who domain.WhoAmI, err error) *MockSessionAPI_WhoAmI_Call {
	_c.Call.Return(who, err)
	return _c
}

func (_m *MockSessionAPI) Login(ctx context.Context, role domain.Role, creds domain.Credentials) (domain.UserRecord, error) {
	ret := _m.Called(ctx, role, creds)
	return ret.Get(0).(domain.UserRecord), ret.Error(1)
}

type MockSessionAPI_Login_Call struct {
	*mock.Call
}

func (_e *MockSessionAPI_Expecter) Login(ctx interface{}, role interface{}, creds interface{}) *MockSessionAPI_Login_Call {
	return &MockSessionAPI_Login_Call{Call: _e.mock.On("Login", ctx, role, creds)}
}

func (_c *MockSessionAPI_Login_Call) Run(run func(ctx context.Context, role domain.Role, creds domain.Credentials)) *MockSessionAPI_Login_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(domain.Role), args[2].(domain.Credentials))
	})
	return _c
}

func (_c *MockSessionAPI_Login_Call) Return(user domain.UserRecord, err error) *MockSessionAPI_Login_Call {
	_c.Call.Return(user, err)
	return _c
}

func (_m *MockSessionAPI) Register(ctx context.Context, role domain.Role, reg domain.Registration) (string, error) {
	ret := _m.Called(ctx, role, reg)
	return ret.String(0), ret.Error(1)
}

type MockSessionAPI_Register_Call struct {
	*mock.Call
}

func (_e *MockSessionAPI_Expecter) Register(ctx interface{}, role interface{}, reg interface{}) *MockSessionAPI_Register_Call {
	return &MockSessionAPI_Register_Call{Call: _e.mock.On("Register", ctx, role, reg)}
}

func (_c *MockSessionAPI_Register_Call) Return(message string, err error) *MockSessionAPI_Register_Call {
	_c.Call.Return(message, err)
	return _c
}

func (_m *MockSessionAPI) Logout(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

type MockSessionAPI_Logout_Call struct {
	*mock.Call
}

func (_e *MockSessionAPI_Expecter) Logout(ctx interface{}) *MockSessionAPI_Logout_Call {
	return &MockSessionAPI_Logout_Call{Call: _e.mock.On("Logout", ctx)}
}

func (_c *MockSessionAPI_Logout_Call) Return(err error) *MockSessionAPI_Logout_Call {
	_c.Call.Return(err)
	return _c
}

func NewMockSessionAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionAPI {
	m := &MockSessionAPI{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
