package gumball

import (
	"io"
	"sync"
)

var _ API = (*Synced)(nil)

// Synced 用互斥锁串行化对 Machine 的访问，每次只处理一个事件
type Synced struct {
	mu sync.Mutex
	m  *Machine
}

// NewSynced 包装已有机器
func NewSynced(m *Machine) *Synced {
	return &Synced{m: m}
}

func (s *Synced) InsertCoin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.InsertCoin()
}

func (s *Synced) EjectCoin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.EjectCoin()
}

func (s *Synced) Draw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Draw()
}

func (s *Synced) Refill(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Refill(count)
}

// Fire 按事件分发
func (s *Synced) Fire(event Event, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Fire(event, count)
}

func (s *Synced) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.State()
}

func (s *Synced) BallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.BallCount()
}

func (s *Synced) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.IsEmpty()
}

func (s *Synced) Output() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Output()
}

func (s *Synced) SetOutput(out io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.SetOutput(out)
}

// Snapshot 生成快照
func (s *Synced) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Snapshot()
}

// History 返回切换历史
func (s *Synced) History() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.History()
}

// Do 在持锁期间访问底层机器
func (s *Synced) Do(fn func(m *Machine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.m)
}
