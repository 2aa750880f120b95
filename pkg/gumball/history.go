package gumball

import (
	"time"

	"github.com/goccy/go-json"
)

// transitionJSON 序列化时用状态名代替状态值
type transitionJSON struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Event Event     `json:"event,omitempty"`
	At    time.Time `json:"at"`
}

// MarshalJSON 序列化切换记录
func (t Transition) MarshalJSON() ([]byte, error) {
	return json.Marshal(transitionJSON{
		From:  stateName(t.From),
		To:    stateName(t.To),
		Event: t.Event,
		At:    t.At,
	})
}

func stateName(s State) string {
	if s == nil {
		return ""
	}
	return s.Name()
}

// record 追加切换记录，超过上限时丢弃最旧的
func (m *Machine) record(tr Transition) {
	if m.historyLimit == 0 {
		return
	}
	m.history = append(m.history, tr)
	if over := len(m.history) - m.historyLimit; over > 0 {
		m.history = append(m.history[:0:0], m.history[over:]...)
	}
}

// History 返回状态切换历史的副本
func (m *Machine) History() []Transition {
	return append([]Transition{}, m.history...)
}

// ClearHistory 清空历史
func (m *Machine) ClearHistory() {
	m.history = nil
}

// Snapshot 生成当前快照
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		ID:        m.id.String(),
		State:     m.state.Name(),
		BallCount: m.count,
		Taken:     time.Now(),
	}
}
