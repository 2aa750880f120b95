package gumball

import (
	"fmt"
	"strings"
)

// Events 返回全部事件
func Events() []Event {
	return []Event{EventInsertCoin, EventEjectCoin, EventDraw, EventRefill}
}

var eventAliases = map[string]Event{
	"insert_coin": EventInsertCoin,
	"insert":      EventInsertCoin,
	"coin":        EventInsertCoin,
	"eject_coin":  EventEjectCoin,
	"eject":       EventEjectCoin,
	"draw":        EventDraw,
	"turn":        EventDraw,
	"refill":      EventRefill,
}

// ParseEvent 解析事件名称，支持常用别名，不区分大小写
func ParseEvent(name string) (Event, error) {
	if e, ok := eventAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return e, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEvent, name)
}

// Fire 按事件分发，count 只对 refill 有效
func (m *Machine) Fire(event Event, count int) error {
	switch event {
	case EventInsertCoin:
		m.InsertCoin()
	case EventEjectCoin:
		m.EjectCoin()
	case EventDraw:
		m.Draw()
	case EventRefill:
		m.Refill(count)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return nil
}
