package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/junbin-yang/go-gumball/pkg/gumball"
	"github.com/junbin-yang/go-gumball/pkg/logger"
)

// Console 行命令解释器，把输入的命令转换成机器事件
type Console struct {
	machine *Machine
	in      io.Reader
	out     io.Writer
	prompt  string
	gather  prometheus.Gatherer
	log     logger.Logger
}

// ConsoleOption 控制台选项
type ConsoleOption func(*Console)

// WithPrompt 设置提示符，空字符串表示不输出提示符
func WithPrompt(prompt string) ConsoleOption {
	return func(c *Console) {
		c.prompt = prompt
	}
}

// WithGatherer 设置 metrics 命令读取的指标来源
func WithGatherer(g prometheus.Gatherer) ConsoleOption {
	return func(c *Console) {
		c.gather = g
	}
}

// WithConsoleLogger 设置日志
func WithConsoleLogger(l logger.Logger) ConsoleOption {
	return func(c *Console) {
		if l != nil {
			c.log = l
		}
	}
}

// NewConsole 创建控制台
func NewConsole(m *Machine, in io.Reader, out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		machine: m,
		in:      in,
		out:     out,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run 逐行执行命令，遇到 quit、输入结束或 ctx 取消时返回。
// ctx 取消时若输入实现了 io.Closer 则关闭它，使读取协程退出；
// 否则读取协程会阻塞到下一次输入或进程退出。
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- sc.Err()
	}()

	c.showPrompt()
	for {
		select {
		case <-ctx.Done():
			if closer, ok := c.in.(io.Closer); ok {
				_ = closer.Close()
			}
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					return err
				default:
					return nil
				}
			}
			if c.Exec(line) {
				return nil
			}
			c.showPrompt()
		}
	}
}

func (c *Console) showPrompt() {
	if c.prompt != "" {
		fmt.Fprint(c.out, c.prompt)
	}
}

// Exec 执行一行命令，返回 true 表示退出
func (c *Console) Exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	cmd := strings.ToLower(fields[0])
	c.log.Debug("执行命令", logger.String("command", cmd), logger.String("line", line))

	switch cmd {
	case "quit", "exit":
		return true
	case "help", "?":
		c.help()
	case "status":
		c.status()
	case "history":
		c.history()
	case "metrics":
		c.metrics()
	default:
		c.fire(cmd, fields[1:])
	}
	return false
}

func (c *Console) fire(cmd string, args []string) {
	event, err := gumball.ParseEvent(cmd)
	if err != nil {
		fmt.Fprintf(c.out, "unknown command: %s (type help)\n", cmd)
		return
	}

	count := 0
	if event == gumball.EventRefill {
		if len(args) != 1 {
			fmt.Fprintln(c.out, "usage: refill <count>")
			return
		}
		if count, err = strconv.Atoi(args[0]); err != nil {
			fmt.Fprintf(c.out, "invalid count: %s\n", args[0])
			return
		}
	}

	if err := c.machine.Fire(event, count); err != nil {
		fmt.Fprintln(c.out, err)
	}
}

func (c *Console) help() {
	state := c.machine.State()
	fmt.Fprintf(c.out, "current state: %s\n", state)

	commands := []struct {
		usage string
		event gumball.Event
	}{
		{"insert      insert a coin", gumball.EventInsertCoin},
		{"eject       eject the coin", gumball.EventEjectCoin},
		{"draw        turn the crank", gumball.EventDraw},
		{"refill N    add N gumballs", gumball.EventRefill},
	}
	for _, cmd := range commands {
		mark := " "
		if state.Handles(cmd.event) {
			mark = "*"
		}
		fmt.Fprintf(c.out, " %s %s\n", mark, cmd.usage)
	}
	fmt.Fprintln(c.out, "   status      show machine status")
	fmt.Fprintln(c.out, "   history     show recent transitions")
	fmt.Fprintln(c.out, "   metrics     show machine metrics")
	fmt.Fprintln(c.out, "   quit        leave")
}

// statusView status 命令的输出
type statusView struct {
	gumball.Snapshot
	Name           string  `json:"name"`
	WinProbability float64 `json:"win_probability"`
}

func (c *Console) status() {
	c.writeJSON(statusView{
		Name:           c.machine.Name,
		Snapshot:       c.machine.Snapshot(),
		WinProbability: c.machine.Guard.Probability(),
	})
}

func (c *Console) history() {
	c.writeJSON(c.machine.History())
}

func (c *Console) writeJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		c.log.Error("序列化失败", logger.Err(err))
		fmt.Fprintln(c.out, err)
		return
	}
	fmt.Fprintln(c.out, string(data))
}

func (c *Console) metrics() {
	if c.gather == nil {
		fmt.Fprintln(c.out, "metrics disabled")
		return
	}

	families, err := c.gather.Gather()
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "gumball_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(c.out, mf); err != nil {
			fmt.Fprintln(c.out, err)
			return
		}
	}
}
