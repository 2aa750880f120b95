package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/junbin-yang/go-gumball/pkg/logger"
)

// Config 糖果机应用配置
type Config struct {
	Machine MachineConfig `yaml:"machine" json:"machine" ini:"machine"`
	Logger  LoggerConfig  `yaml:"logger" json:"logger" ini:"logger"`
	App     AppConfig     `yaml:"app" json:"app" ini:"app"`
}

// MachineConfig 机器配置
type MachineConfig struct {
	Name           string   `yaml:"name" json:"name" ini:"name" env:"GUMBALL_MACHINE_NAME"`
	InitialBalls   int      `yaml:"initial_balls" json:"initial_balls" ini:"initial_balls" env:"GUMBALL_INITIAL_BALLS"`
	WinProbability float64  `yaml:"win_probability" json:"win_probability" ini:"win_probability" env:"GUMBALL_WIN_PROBABILITY"`
	Seed           uint64   `yaml:"seed" json:"seed" ini:"seed" env:"GUMBALL_SEED"` // 0 表示按时间取种子
	Colors         []string `yaml:"colors" json:"colors" ini:"colors,omitempty" env:"GUMBALL_COLORS"`
	HistoryLimit   int      `yaml:"history_limit" json:"history_limit" ini:"history_limit" env:"GUMBALL_HISTORY_LIMIT"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string        `yaml:"level" json:"level" ini:"level" env:"GUMBALL_LOG_LEVEL"`
	Output       string        `yaml:"output" json:"output" ini:"output" env:"GUMBALL_LOG_OUTPUT"` // stdout、stderr 或文件路径
	Rotate       string        `yaml:"rotate" json:"rotate" ini:"rotate" env:"GUMBALL_LOG_ROTATE"` // none、size 或 time
	MaxSize      int           `yaml:"max_size" json:"max_size" ini:"max_size"`
	MaxBackups   int           `yaml:"max_backups" json:"max_backups" ini:"max_backups"`
	MaxAge       int           `yaml:"max_age" json:"max_age" ini:"max_age"`
	Compress     bool          `yaml:"compress" json:"compress" ini:"compress"`
	RotationTime time.Duration `yaml:"rotation_time" json:"rotation_time" ini:"rotation_time"`
}

// AppConfig 运行配置
type AppConfig struct {
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" ini:"shutdown_timeout" env:"GUMBALL_SHUTDOWN_TIMEOUT"`
	Prompt          string        `yaml:"prompt" json:"prompt" ini:"prompt"`
}

// 日志轮转方式
const (
	RotateNone = "none"
	RotateSize = "size"
	RotateTime = "time"
)

// SetDefaults 填充默认值
func (c *Config) SetDefaults() {
	c.Machine = MachineConfig{
		Name:           "gumball",
		WinProbability: 0.1,
		Colors:         []string{"red", "green", "blue", "yellow", "purple"},
		HistoryLimit:   64,
	}
	c.Logger = LoggerConfig{
		Level:        "info",
		Output:       "stderr",
		Rotate:       RotateNone,
		MaxSize:      100,
		MaxBackups:   30,
		MaxAge:       30,
		Compress:     true,
		RotationTime: time.Hour,
	}
	c.App = AppConfig{
		ShutdownTimeout: 5 * time.Second,
		Prompt:          "> ",
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	m := c.Machine
	if m.Name == "" {
		return errors.New("machine.name is required")
	}
	if m.InitialBalls < 0 {
		return fmt.Errorf("machine.initial_balls must not be negative: %d", m.InitialBalls)
	}
	if m.WinProbability < 0 || m.WinProbability > 1 {
		return fmt.Errorf("machine.win_probability out of range [0,1]: %v", m.WinProbability)
	}
	if m.HistoryLimit < 0 {
		return fmt.Errorf("machine.history_limit must not be negative: %d", m.HistoryLimit)
	}

	l := c.Logger
	if _, err := logger.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("logger.level: %w", err)
	}
	switch l.Rotate {
	case "", RotateNone:
	case RotateSize, RotateTime:
		if l.Output == "" || l.Output == "stdout" || l.Output == "stderr" {
			return fmt.Errorf("logger.rotate %q requires a file output", l.Rotate)
		}
	default:
		return fmt.Errorf("unknown logger.rotate: %q", l.Rotate)
	}

	if c.App.ShutdownTimeout <= 0 {
		return errors.New("app.shutdown_timeout must be positive")
	}
	return nil
}
