package gumball

import "fmt"

var (
	// ErrNegativeCount 补货数量为负数时返回
	ErrNegativeCount = fmt.Errorf("refill count must not be negative")

	// ErrUnknownEvent 事件名称无法识别时返回
	ErrUnknownEvent = fmt.Errorf("unknown event")

	// ErrMachineNotFound 机器不存在时返回
	ErrMachineNotFound = fmt.Errorf("machine not found")

	// ErrRefillRejected 机器在当前状态下拒绝补货时返回
	ErrRefillRejected = fmt.Errorf("refill rejected")

	// ErrMachineExists 同名机器已存在时返回
	ErrMachineExists = fmt.Errorf("machine already exists")
)
