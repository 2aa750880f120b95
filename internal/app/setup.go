package app

import (
	"io"
	"math/rand/v2"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/junbin-yang/go-gumball/internal/config"
	"github.com/junbin-yang/go-gumball/pkg/gumball"
	"github.com/junbin-yang/go-gumball/pkg/logger"
)

// NewLogger 按配置创建日志，返回的 closer 用于关闭文件输出
func NewLogger(cfg config.LoggerConfig) (*logger.ZapLogger, io.Closer, error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	out, err := logOutput(cfg)
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	if c, ok := out.(io.Closer); ok && out != os.Stdout && out != os.Stderr {
		closer = c
	}
	return logger.New(out, level, logger.AddCaller()), closer, nil
}

func logOutput(cfg config.LoggerConfig) (io.Writer, error) {
	switch cfg.Output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}

	rc := &logger.RotateConfig{
		Filename:     cfg.Output,
		MaxSize:      cfg.MaxSize,
		MaxBackups:   cfg.MaxBackups,
		MaxAge:       cfg.MaxAge,
		Compress:     cfg.Compress,
		RotationTime: cfg.RotationTime,
		LocalTime:    true,
	}
	switch cfg.Rotate {
	case config.RotateSize:
		return logger.NewRotateBySize(rc), nil
	case config.RotateTime:
		return logger.NewRotateByTime(rc)
	}
	return os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Machine 应用持有的机器及其可调部件
type Machine struct {
	*gumball.Synced

	Name    string
	Guard   *gumball.RandomWinGuard
	Metrics *gumball.Metrics
}

// NewMachine 按配置组装机器，reg 为 nil 时指标不注册
func NewMachine(cfg config.MachineConfig, out io.Writer, log logger.Logger, reg prometheus.Registerer) (*Machine, error) {
	metrics, err := gumball.NewMetrics(reg, cfg.Name)
	if err != nil {
		return nil, err
	}

	var guardRand, colorRand *rand.Rand
	if cfg.Seed != 0 {
		guardRand = rand.New(rand.NewPCG(cfg.Seed, 1))
		colorRand = rand.New(rand.NewPCG(cfg.Seed, 2))
	}
	guard := gumball.NewRandomWinGuard(cfg.WinProbability, guardRand)

	m := gumball.New(
		gumball.WithOutput(out),
		gumball.WithWinGuard(guard),
		gumball.WithLogger(log),
		gumball.WithObserver(metrics),
		gumball.WithColors(cfg.Colors...),
		gumball.WithRand(colorRand),
		gumball.WithHistoryLimit(cfg.HistoryLimit),
	)
	if cfg.InitialBalls > 0 {
		m.Refill(cfg.InitialBalls)
	}

	return &Machine{
		Synced:  gumball.NewSynced(m),
		Name:    cfg.Name,
		Guard:   guard,
		Metrics: metrics,
	}, nil
}

// Apply 应用可热更新的配置项
func (m *Machine) Apply(cfg config.MachineConfig) {
	m.Guard.SetProbability(cfg.WinProbability)
}
