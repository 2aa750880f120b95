package gumball

import (
	"fmt"
	"io"
	"time"
)

// Event 表示投递给糖果机的外部事件
type Event string

const (
	EventInsertCoin Event = "insert_coin" // 投币
	EventEjectCoin  Event = "eject_coin"  // 退币
	EventDraw       Event = "draw"        // 转动手柄出球
	EventRefill     Event = "refill"      // 补货
)

// State 糖果机状态，每个状态决定如何响应四种事件
type State interface {
	fmt.Stringer

	// Name 返回状态名称
	Name() string
	// Reason 返回该状态下不支持某操作时的提示
	Reason() string
	// Handles 判断该状态是否处理指定事件
	Handles(event Event) bool

	InsertCoin(ctx Context)
	EjectCoin(ctx Context)
	Draw(ctx Context)
	Refill(ctx Context, count int)

	// Enter 进入状态时调用
	Enter(ctx Context)
	// Exit 离开状态时调用
	Exit(ctx Context)
}

// Context 状态处理事件时可访问的机器能力
type Context interface {
	// ChangeState 切换到新状态（先 Exit 旧状态，再 Enter 新状态）
	ChangeState(next State)
	// Dispense 出一颗球，库存为空时返回 false
	Dispense() (Gumball, bool)
	// AddBalls 增加库存
	AddBalls(count int) error
	IsEmpty() bool
	IsWinner() bool
	Output() io.Writer
}

// API 对外暴露的糖果机句柄
type API interface {
	InsertCoin()
	EjectCoin()
	Draw()
	Refill(count int)

	State() State
	BallCount() int
	IsEmpty() bool

	Output() io.Writer
	SetOutput(out io.Writer)
}

// Gumball 出货的糖果球
type Gumball struct {
	Color string `json:"color"`
}

func (g Gumball) String() string {
	return "A " + g.Color + " gumball comes rolling out the slot"
}

// Transition 一次状态切换记录
type Transition struct {
	From  State     `json:"-"`
	To    State     `json:"-"`
	Event Event     `json:"event,omitempty"`
	At    time.Time `json:"at"`
}

// Snapshot 机器状态快照
type Snapshot struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	BallCount int       `json:"ball_count"`
	Taken     time.Time `json:"taken"`
}
