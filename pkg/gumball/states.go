package gumball

import "fmt"

// 四个状态均为无数据的单例，所有机器共享
var (
	// NoCoin 等待投币
	NoCoin State = &noCoin{base{name: "NoCoin", reason: "You must put in a coin before you can continue"}}

	// HasCoin 已投币，等待出球或退币
	HasCoin State = &hasCoin{base{name: "HasCoin", reason: "You should draw to get your ball"}}

	// SoldOut 售罄，等待补货
	SoldOut State = &soldOut{base{name: "SoldOut", reason: "Machine is empty, waiting for refill"}}

	// Winner 中奖，再出一颗
	Winner State = &winner{base{name: "Winner", reason: "You should draw once more to get an extra ball"}}
)

// States 返回全部状态
func States() []State {
	return []State{NoCoin, HasCoin, SoldOut, Winner}
}

// StateByName 按名称查找状态
func StateByName(name string) (State, bool) {
	for _, s := range States() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// base 提供默认行为：任何事件都只输出 reason，不切换状态
type base struct {
	name   string
	reason string
}

func (b *base) Name() string   { return b.name }
func (b *base) Reason() string { return b.reason }
func (b *base) String() string { return b.name }

func (b *base) Handles(Event) bool { return false }

func (b *base) InsertCoin(ctx Context)    { b.unsupported(ctx) }
func (b *base) EjectCoin(ctx Context)     { b.unsupported(ctx) }
func (b *base) Draw(ctx Context)          { b.unsupported(ctx) }
func (b *base) Refill(ctx Context, _ int) { b.unsupported(ctx) }
func (b *base) Enter(Context)             {}
func (b *base) Exit(Context)              {}
func (b *base) unsupported(ctx Context)   { fmt.Fprintln(ctx.Output(), b.reason) }

type noCoin struct{ base }

func (s *noCoin) Handles(e Event) bool { return e == EventInsertCoin }

func (s *noCoin) InsertCoin(ctx Context) {
	if ctx.IsEmpty() {
		s.unsupported(ctx)
		return
	}
	ctx.ChangeState(HasCoin)
	fmt.Fprintln(ctx.Output(), "You inserted a coin")
}

type hasCoin struct{ base }

func (s *hasCoin) Handles(e Event) bool { return e == EventEjectCoin || e == EventDraw }

func (s *hasCoin) EjectCoin(ctx Context) {
	ctx.ChangeState(NoCoin)
	fmt.Fprintln(ctx.Output(), "Quarter returned")
}

func (s *hasCoin) Draw(ctx Context) {
	ball, ok := ctx.Dispense()
	if !ok {
		ctx.ChangeState(SoldOut)
		fmt.Fprintln(ctx.Output(), SoldOut.Reason())
		return
	}
	fmt.Fprintln(ctx.Output(), ball)

	// 先判断是否售罄，售罄后不再询问是否中奖
	switch {
	case ctx.IsEmpty():
		ctx.ChangeState(SoldOut)
	case ctx.IsWinner():
		ctx.ChangeState(Winner)
	default:
		ctx.ChangeState(NoCoin)
	}
}

type soldOut struct{ base }

func (s *soldOut) Handles(e Event) bool { return e == EventRefill }

// Refill 补货后进入 NoCoin；数量为 0 按不支持处理，机器保持 SoldOut
func (s *soldOut) Refill(ctx Context, count int) {
	if count == 0 {
		s.unsupported(ctx)
		return
	}
	if err := ctx.AddBalls(count); err != nil {
		fmt.Fprintln(ctx.Output(), err)
		return
	}
	ctx.ChangeState(NoCoin)
	fmt.Fprintf(ctx.Output(), "refilled with %d balls\n", count)
}

type winner struct{ base }

func (s *winner) Handles(e Event) bool { return e == EventDraw }

func (s *winner) Draw(ctx Context) {
	ball, ok := ctx.Dispense()
	if !ok {
		ctx.ChangeState(SoldOut)
		fmt.Fprintln(ctx.Output(), SoldOut.Reason())
		return
	}
	fmt.Fprintf(ctx.Output(), "YOU'RE A WINNER! A bonus %s gumball comes rolling out the slot\n", ball.Color)

	if ctx.IsEmpty() {
		ctx.ChangeState(SoldOut)
		return
	}
	ctx.ChangeState(NoCoin)
}
