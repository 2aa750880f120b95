package gumball

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/junbin-yang/go-gumball/pkg/logger"
)

var (
	_ Context = (*Machine)(nil)
	_ API     = (*Machine)(nil)
)

// Machine 糖果机，持有可变数据并把事件转发给当前状态。
// Machine 不是并发安全的，需要并发访问时使用 Synced。
type Machine struct {
	id        uuid.UUID
	state     State
	count     int
	out       io.Writer
	guard     WinGuard
	colors    []string
	rnd       *rand.Rand
	log       logger.Logger
	observers []Observer

	history      []Transition
	historyLimit int

	event   Event // 正在处理的事件
	changed bool  // 当前事件是否触发了状态切换
}

// Init 以指定初始状态创建机器，返回前调用一次初始状态的 Enter
func Init(initial State, opts ...Option) *Machine {
	m := &Machine{
		id:           uuid.New(),
		out:          os.Stdout,
		guard:        NewRandomWinGuard(DefaultWinProbability, nil),
		colors:       append([]string(nil), DefaultColors...),
		log:          logger.Nop(),
		historyLimit: defaultHistoryLimit,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.rnd == nil {
		seed := uint64(time.Now().UnixNano())
		m.rnd = rand.New(rand.NewPCG(seed, seed>>3|1))
	}
	if initial == nil {
		initial = SoldOut
	}

	m.state = initial
	m.state.Enter(m)

	m.log.Debug("糖果机已创建",
		logger.String("machine", m.id.String()),
		logger.String("state", initial.Name()),
	)
	return m
}

// New 创建默认机器：初始状态 SoldOut，库存为 0
func New(opts ...Option) *Machine {
	return Init(SoldOut, opts...)
}

// CreateMachine 创建默认机器并只暴露 API
func CreateMachine(opts ...Option) API {
	return New(opts...)
}

// InsertCoin 投币
func (m *Machine) InsertCoin() {
	m.handle(EventInsertCoin, func(s State) { s.InsertCoin(m) })
}

// EjectCoin 退币
func (m *Machine) EjectCoin() {
	m.handle(EventEjectCoin, func(s State) { s.EjectCoin(m) })
}

// Draw 转动手柄
func (m *Machine) Draw() {
	m.handle(EventDraw, func(s State) { s.Draw(m) })
}

// Refill 补货
func (m *Machine) Refill(count int) {
	m.handle(EventRefill, func(s State) { s.Refill(m, count) })
}

// handle 把事件转发给当前状态，没有发生状态切换即视为被拒绝
func (m *Machine) handle(event Event, forward func(State)) {
	m.event = event
	m.changed = false
	defer func() { m.event = "" }()

	from := m.state
	forward(from)

	if m.changed {
		return
	}
	m.log.Debug("事件未被处理",
		logger.String("machine", m.id.String()),
		logger.String("state", from.Name()),
		logger.String("event", string(event)),
	)
	for _, o := range m.observers {
		o.OnRejected(from, event)
	}
}

// ChangeState 切换状态：Exit 旧状态，更新当前状态，Enter 新状态。
// 即使新旧状态相同也会调用 Exit 与 Enter。
func (m *Machine) ChangeState(next State) {
	if next == nil {
		m.log.Warn("忽略空状态切换", logger.String("machine", m.id.String()))
		return
	}

	prev := m.state
	prev.Exit(m)
	m.state = next
	next.Enter(m)
	m.changed = true

	tr := Transition{From: prev, To: next, Event: m.event, At: time.Now()}
	m.record(tr)

	m.log.Debug("状态切换",
		logger.String("machine", m.id.String()),
		logger.String("from", prev.Name()),
		logger.String("to", next.Name()),
		logger.String("event", string(m.event)),
	)
	for _, o := range m.observers {
		o.OnTransition(tr)
	}
}

// Dispense 出一颗球，库存为 0 时不做任何事
func (m *Machine) Dispense() (Gumball, bool) {
	if m.count <= 0 {
		return Gumball{}, false
	}
	m.count--

	ball := Gumball{Color: m.colors[m.rnd.IntN(len(m.colors))]}
	m.log.Info("出球",
		logger.String("machine", m.id.String()),
		logger.String("color", ball.Color),
		logger.Int("remaining", m.count),
	)
	for _, o := range m.observers {
		o.OnDispense(ball, m.count)
	}
	return ball, true
}

// AddBalls 增加库存，数量不能为负
func (m *Machine) AddBalls(count int) error {
	if count < 0 {
		return fmt.Errorf("add %d balls: %w", count, ErrNegativeCount)
	}
	m.count += count

	m.log.Info("补货",
		logger.String("machine", m.id.String()),
		logger.Int("added", count),
		logger.Int("total", m.count),
	)
	for _, o := range m.observers {
		o.OnRefill(count, m.count)
	}
	return nil
}

// IsEmpty 库存是否为 0
func (m *Machine) IsEmpty() bool {
	return m.count == 0
}

// IsWinner 每次调用都重新判定，调用方需自行缓存结果
func (m *Machine) IsWinner() bool {
	return m.guard.IsWinner()
}

// State 返回当前状态
func (m *Machine) State() State {
	return m.state
}

// BallCount 返回库存
func (m *Machine) BallCount() int {
	return m.count
}

// ID 返回机器 ID
func (m *Machine) ID() uuid.UUID {
	return m.id
}

// Output 返回当前输出
func (m *Machine) Output() io.Writer {
	return m.out
}

// SetOutput 替换输出，nil 恢复为标准输出
func (m *Machine) SetOutput(out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	m.out = out
}

func (m *Machine) String() string {
	return fmt.Sprintf("GumballMachine{id: %s, state: %s, balls: %d}", m.id, m.state, m.count)
}
