package gumball

import (
	"bytes"
	"io"

	"github.com/stretchr/testify/mock"
)

// mockState 记录事件与生命周期调用的状态
type mockState struct {
	mock.Mock
	name string
}

func newMockState(name string) *mockState {
	s := &mockState{name: name}
	s.On("Enter", mock.Anything).Return()
	s.On("Exit", mock.Anything).Return()
	return s
}

func (s *mockState) Name() string       { return s.name }
func (s *mockState) Reason() string     { return "mock state " + s.name }
func (s *mockState) String() string     { return s.name }
func (s *mockState) Handles(Event) bool { return true }

func (s *mockState) InsertCoin(ctx Context)        { s.Called(ctx) }
func (s *mockState) EjectCoin(ctx Context)         { s.Called(ctx) }
func (s *mockState) Draw(ctx Context)              { s.Called(ctx) }
func (s *mockState) Refill(ctx Context, count int) { s.Called(ctx, count) }
func (s *mockState) Enter(ctx Context)             { s.Called(ctx) }
func (s *mockState) Exit(ctx Context)              { s.Called(ctx) }

// mockContext 供状态单独测试使用的上下文
type mockContext struct {
	mock.Mock
	out bytes.Buffer
}

func (c *mockContext) ChangeState(next State) { c.Called(next) }

func (c *mockContext) Dispense() (Gumball, bool) {
	args := c.Called()
	return args.Get(0).(Gumball), args.Bool(1)
}

func (c *mockContext) AddBalls(count int) error { return c.Called(count).Error(0) }
func (c *mockContext) IsEmpty() bool            { return c.Called().Bool(0) }
func (c *mockContext) IsWinner() bool           { return c.Called().Bool(0) }
func (c *mockContext) Output() io.Writer        { return &c.out }
