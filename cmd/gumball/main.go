package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/junbin-yang/go-gumball/internal/app"
	"github.com/junbin-yang/go-gumball/internal/config"
	pkgconfig "github.com/junbin-yang/go-gumball/pkg/config"
	"github.com/junbin-yang/go-gumball/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，默认按 ./gumball.yml、./configs/gumball.yml 等顺序查找")
	scriptPath := flag.String("script", "", "命令脚本路径，执行完毕后退出")
	watch := flag.Bool("watch", true, "配置文件变化时热更新中奖概率与日志级别")
	flag.Parse()

	if err := run(*configPath, *scriptPath, *watch); err != nil {
		fmt.Fprintf(os.Stderr, "gumball: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, scriptPath string, watch bool) error {
	// 1. 加载配置，找不到默认配置时使用内置默认值
	cfg := &config.Config{}
	mgr := pkgconfig.NewManager(cfg,
		pkgconfig.WithAppName("gumball"),
		pkgconfig.WithConfigWatch(watch, 0),
	)
	defer mgr.Close()

	if err := mgr.Load(configPath); err != nil {
		if configPath != "" {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return err
		}
	} else {
		cfg = mgr.Get()
	}

	// 2. 初始化日志
	log, closer, err := app.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer closer.Close()
	logger.ReplaceDefault(log)

	// 3. 指标与机器
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	machine, err := app.NewMachine(cfg.Machine, os.Stdout, log, reg)
	if err != nil {
		return fmt.Errorf("创建糖果机失败: %w", err)
	}

	mgr.OnChange(func(old, fresh *config.Config) {
		machine.Apply(fresh.Machine)
		if level, err := logger.ParseLevel(fresh.Logger.Level); err == nil {
			log.SetLevel(level)
		}
		log.Info("配置已更新",
			logger.Float64("win_probability", fresh.Machine.WinProbability),
			logger.String("level", fresh.Logger.Level),
		)
	})

	// 4. 控制台输入：脚本或标准输入
	var in io.Reader = os.Stdin
	prompt := cfg.App.Prompt
	if scriptPath != "" {
		f, err := os.Open(scriptPath)
		if err != nil {
			return fmt.Errorf("打开脚本失败: %w", err)
		}
		defer f.Close()
		in = f
		prompt = ""
	}

	console := app.NewConsole(machine, in, os.Stdout,
		app.WithPrompt(prompt),
		app.WithGatherer(reg),
		app.WithConsoleLogger(log),
	)

	// 5. 运行
	runner := app.NewRunner(
		app.WithShutdownTimeout(cfg.App.ShutdownTimeout),
		app.WithRunnerLogger(log),
	)
	if err := runner.Go("console", console.Run, app.Essential()); err != nil {
		return err
	}

	runner.OnStartup(func(ctx context.Context) error {
		log.Info("糖果机启动",
			logger.String("machine", cfg.Machine.Name),
			logger.Int("balls", machine.BallCount()),
			logger.String("config", mgr.Path()),
		)
		return nil
	})
	runner.OnShutdown(func(ctx context.Context) error {
		log.Info("糖果机退出", logger.String("state", machine.State().Name()))
		_ = log.Sync()
		return nil
	})

	return runner.Run(context.Background())
}
