package gumball

import (
	"fmt"
	"sync"
)

// Fleet 按名称管理多台机器
type Fleet struct {
	mu       sync.RWMutex
	machines map[string]*Synced
}

// NewFleet 创建机器组
func NewFleet() *Fleet {
	return &Fleet{
		machines: make(map[string]*Synced),
	}
}

// Add 添加机器
func (f *Fleet) Add(name string, m *Machine) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.machines[name]; exists {
		return fmt.Errorf("%w: %s", ErrMachineExists, name)
	}
	f.machines[name] = NewSynced(m)
	return nil
}

// Remove 移除机器
func (f *Fleet) Remove(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.machines, name)
}

// Get 获取机器
func (f *Fleet) Get(name string) (*Synced, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, exists := f.machines[name]
	return s, exists
}

// Fire 向指定机器投递事件
func (f *Fleet) Fire(name string, event Event, count int) error {
	s, exists := f.Get(name)
	if !exists {
		return fmt.Errorf("%w: %s", ErrMachineNotFound, name)
	}
	return s.Fire(event, count)
}

// RefillAll 并发给所有机器补货，返回每台机器的结果。
// 补货后未进入 NoCoin 的机器返回 ErrRefillRejected。
func (f *Fleet) RefillAll(count int) map[string]error {
	machines := f.copyMachines()

	results := make(map[string]error, len(machines))
	if count < 0 {
		for name := range machines {
			results[name] = fmt.Errorf("%s: %w", name, ErrNegativeCount)
		}
		return results
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, s := range machines {
		wg.Add(1)
		go func(n string, s *Synced) {
			defer wg.Done()

			var err error
			s.Do(func(m *Machine) {
				from := m.State()
				m.Refill(count)
				if m.State() != NoCoin {
					err = fmt.Errorf("%w: %s in state %s", ErrRefillRejected, n, from)
				}
			})

			mu.Lock()
			results[n] = err
			mu.Unlock()
		}(name, s)
	}

	wg.Wait()
	return results
}

// States 返回所有机器的当前状态
func (f *Fleet) States() map[string]State {
	machines := f.copyMachines()

	states := make(map[string]State, len(machines))
	for name, s := range machines {
		states[name] = s.State()
	}
	return states
}

// Count 返回机器数量
func (f *Fleet) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.machines)
}

func (f *Fleet) copyMachines() map[string]*Synced {
	f.mu.RLock()
	defer f.mu.RUnlock()

	machines := make(map[string]*Synced, len(f.machines))
	for name, s := range f.machines {
		machines[name] = s
	}
	return machines
}
