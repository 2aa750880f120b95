package gumball

import (
	"io"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/junbin-yang/go-gumball/pkg/logger"
)

// DefaultColors 默认糖果颜色
var DefaultColors = []string{"red", "green", "blue", "yellow", "purple"}

// defaultHistoryLimit 默认保留的状态切换记录条数
const defaultHistoryLimit = 64

// Option 机器配置选项
type Option func(*Machine)

// WithOutput 设置输出
func WithOutput(out io.Writer) Option {
	return func(m *Machine) {
		m.SetOutput(out)
	}
}

// WithWinGuard 设置中奖判定
func WithWinGuard(guard WinGuard) Option {
	return func(m *Machine) {
		if guard != nil {
			m.guard = guard
		}
	}
}

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// WithObserver 添加观察者，可多次使用
func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

// WithColors 设置糖果颜色池
func WithColors(colors ...string) Option {
	return func(m *Machine) {
		if len(colors) > 0 {
			m.colors = append([]string(nil), colors...)
		}
	}
}

// WithRand 设置选择颜色用的随机源
func WithRand(rnd *rand.Rand) Option {
	return func(m *Machine) {
		if rnd != nil {
			m.rnd = rnd
		}
	}
}

// WithHistoryLimit 设置历史记录上限，0 表示不记录
func WithHistoryLimit(limit int) Option {
	return func(m *Machine) {
		if limit >= 0 {
			m.historyLimit = limit
		}
	}
}

// WithID 指定机器 ID
func WithID(id uuid.UUID) Option {
	return func(m *Machine) {
		m.id = id
	}
}
