package gumball

// Observer 接收机器内部发生的动作通知，回调在事件处理过程中同步执行
type Observer interface {
	OnTransition(tr Transition)
	OnDispense(ball Gumball, remaining int)
	OnRefill(added, total int)
	OnRejected(state State, event Event)
}

// ObserverFuncs 按需设置回调的 Observer 实现，未设置的回调忽略
type ObserverFuncs struct {
	Transition func(tr Transition)
	Dispense   func(ball Gumball, remaining int)
	Refill     func(added, total int)
	Rejected   func(state State, event Event)
}

func (o ObserverFuncs) OnTransition(tr Transition) {
	if o.Transition != nil {
		o.Transition(tr)
	}
}

func (o ObserverFuncs) OnDispense(ball Gumball, remaining int) {
	if o.Dispense != nil {
		o.Dispense(ball, remaining)
	}
}

func (o ObserverFuncs) OnRefill(added, total int) {
	if o.Refill != nil {
		o.Refill(added, total)
	}
}

func (o ObserverFuncs) OnRejected(state State, event Event) {
	if o.Rejected != nil {
		o.Rejected(state, event)
	}
}
