package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/junbin-yang/go-gumball/pkg/config"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gumball", cfg.Machine.Name)
	assert.Equal(t, 0.1, cfg.Machine.WinProbability)
	assert.Equal(t, RotateNone, cfg.Logger.Rotate)
	assert.Equal(t, 5*time.Second, cfg.App.ShutdownTimeout)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"空名称":     func(c *Config) { c.Machine.Name = "" },
		"负库存":     func(c *Config) { c.Machine.InitialBalls = -1 },
		"概率过大":    func(c *Config) { c.Machine.WinProbability = 1.5 },
		"负历史上限":   func(c *Config) { c.Machine.HistoryLimit = -1 },
		"未知日志级别":  func(c *Config) { c.Logger.Level = "loud" },
		"未知轮转方式":  func(c *Config) { c.Logger.Rotate = "weekly" },
		"轮转需要文件":  func(c *Config) { c.Logger.Rotate = RotateSize },
		"退出超时非正数": func(c *Config) { c.App.ShutdownTimeout = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{}
			cfg.SetDefaults()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gumball.yml")
	content := `
machine:
  name: lobby
  initial_balls: 20
  win_probability: 0.25
  seed: 42
  colors: [red, white]
logger:
  level: debug
  output: ` + filepath.Join(dir, "gumball.log") + `
  rotate: size
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	mgr := pkgconfig.NewManager(&Config{})
	defer mgr.Close()
	require.NoError(t, mgr.Load(path))

	cfg := mgr.Get()
	assert.Equal(t, "lobby", cfg.Machine.Name)
	assert.Equal(t, 20, cfg.Machine.InitialBalls)
	assert.Equal(t, 0.25, cfg.Machine.WinProbability)
	assert.Equal(t, uint64(42), cfg.Machine.Seed)
	assert.Equal(t, []string{"red", "white"}, cfg.Machine.Colors)
	assert.Equal(t, 64, cfg.Machine.HistoryLimit, "未配置的字段保留默认值")
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, RotateSize, cfg.Logger.Rotate)
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gumball.yml")
	require.NoError(t, os.WriteFile(path, []byte("machine:\n  name: lobby\n"), 0644))

	t.Setenv("GUMBALL_WIN_PROBABILITY", "0.5")
	t.Setenv("GUMBALL_COLORS", "black,white")

	mgr := pkgconfig.NewManager(&Config{})
	defer mgr.Close()
	require.NoError(t, mgr.Load(path))

	assert.Equal(t, 0.5, mgr.Get().Machine.WinProbability)
	assert.Equal(t, []string{"black", "white"}, mgr.Get().Machine.Colors)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gumball.yml")
	require.NoError(t, os.WriteFile(path, []byte("machine:\n  win_probability: 3\n"), 0644))

	mgr := pkgconfig.NewManager(&Config{})
	defer mgr.Close()
	assert.Error(t, mgr.Load(path))
}
