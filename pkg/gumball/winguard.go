package gumball

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultWinProbability 默认中奖概率
const DefaultWinProbability = 0.1

// WinGuard 中奖判定，每次调用独立给出结果
type WinGuard interface {
	IsWinner() bool
}

// WinGuardFunc 函数适配器
type WinGuardFunc func() bool

func (f WinGuardFunc) IsWinner() bool { return f() }

// Fixed 返回固定结果的判定，用于测试
func Fixed(win bool) WinGuard {
	return WinGuardFunc(func() bool { return win })
}

// RandomWinGuard 按概率随机中奖，可并发调整概率
type RandomWinGuard struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	probability atomic.Uint64 // float64 bits
}

// NewRandomWinGuard 创建随机中奖判定，rnd 为 nil 时使用时间种子
func NewRandomWinGuard(probability float64, rnd *rand.Rand) *RandomWinGuard {
	if rnd == nil {
		seed := uint64(time.Now().UnixNano())
		rnd = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	g := &RandomWinGuard{rnd: rnd}
	g.SetProbability(probability)
	return g
}

// SetProbability 设置中奖概率，超出 [0,1] 的值会被截断
func (g *RandomWinGuard) SetProbability(p float64) {
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	g.probability.Store(math.Float64bits(p))
}

// Probability 返回当前中奖概率
func (g *RandomWinGuard) Probability() float64 {
	return math.Float64frombits(g.probability.Load())
}

// IsWinner 掷一次骰子
func (g *RandomWinGuard) IsWinner() bool {
	p := g.Probability()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64() < p
}
