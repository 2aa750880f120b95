package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type TestConfig struct {
	Machine struct {
		Name           string        `yaml:"name" json:"name" ini:"name" env:"TEST_MACHINE_NAME"`
		InitialBalls   int           `yaml:"initial_balls" json:"initial_balls" ini:"initial_balls" env:"TEST_MACHINE_BALLS"`
		WinProbability float64       `yaml:"win_probability" json:"win_probability" ini:"win_probability" env:"TEST_MACHINE_WIN"`
		Colors         []string      `yaml:"colors" json:"colors" ini:"colors,omitempty" env:"TEST_MACHINE_COLORS"`
		Idle           time.Duration `yaml:"idle" json:"idle" ini:"idle" env:"TEST_MACHINE_IDLE"`
		Verbose        bool          `yaml:"verbose" json:"verbose" ini:"verbose" env:"TEST_MACHINE_VERBOSE"`
	} `yaml:"machine" json:"machine" ini:"machine"`
}

const testYAML = `machine:
  name: lobby
  initial_balls: 20
  win_probability: 0.25
  colors: [red, green]
  idle: 3s
`

const testJSON = `{"machine": {"name": "hall", "initial_balls": 5, "win_probability": 0.5}}`

const testINI = `[machine]
name = kiosk
initial_balls = 7
win_probability = 0.75
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	return path
}

// 场景1：YAML 格式
func TestScenario1_BasicYAML(t *testing.T) {
	cm := NewManager(&TestConfig{})
	if err := cm.Load(writeFile(t, "gumball.yml", testYAML)); err != nil {
		t.Fatalf("加载YAML配置失败: %v", err)
	}

	cfg := cm.Get()
	if cfg.Machine.Name != "lobby" {
		t.Errorf("期望名称 lobby, 实际 %s", cfg.Machine.Name)
	}
	if cfg.Machine.InitialBalls != 20 {
		t.Errorf("期望库存 20, 实际 %d", cfg.Machine.InitialBalls)
	}
	if cfg.Machine.Idle != 3*time.Second {
		t.Errorf("期望 idle 3s, 实际 %v", cfg.Machine.Idle)
	}
	if len(cfg.Machine.Colors) != 2 {
		t.Errorf("期望 2 种颜色, 实际 %v", cfg.Machine.Colors)
	}
}

// 场景2：JSON 格式按后缀识别
func TestScenario2_JSONFormat(t *testing.T) {
	cm := NewManager(&TestConfig{})
	if err := cm.Load(writeFile(t, "gumball.json", testJSON)); err != nil {
		t.Fatalf("加载JSON配置失败: %v", err)
	}

	if got := cm.Get().Machine.WinProbability; got != 0.5 {
		t.Errorf("期望中奖概率 0.5, 实际 %v", got)
	}
}

// 场景3：无后缀文件强制格式
func TestScenario3_ForceFormat(t *testing.T) {
	cm := NewManager(&TestConfig{}, WithForceFormat(&JSONSerializer{}))
	if err := cm.Load(writeFile(t, "gumball_conf", testJSON)); err != nil {
		t.Fatalf("加载无后缀配置失败: %v", err)
	}

	if got := cm.Get().Machine.Name; got != "hall" {
		t.Errorf("期望名称 hall, 实际 %s", got)
	}
}

// 场景4：INI 格式
func TestScenario4_INIFormat(t *testing.T) {
	cm := NewManager(&TestConfig{})
	if err := cm.Load(writeFile(t, "gumball.ini", testINI)); err != nil {
		t.Fatalf("加载INI配置失败: %v", err)
	}

	cfg := cm.Get()
	if cfg.Machine.InitialBalls != 7 {
		t.Errorf("期望库存 7, 实际 %d", cfg.Machine.InitialBalls)
	}
	if cfg.Machine.WinProbability != 0.75 {
		t.Errorf("期望中奖概率 0.75, 实际 %v", cfg.Machine.WinProbability)
	}
}

// 场景5：环境变量覆盖
func TestScenario5_EnvOverride(t *testing.T) {
	t.Setenv("TEST_MACHINE_NAME", "env-machine")
	t.Setenv("TEST_MACHINE_BALLS", "99")
	t.Setenv("TEST_MACHINE_WIN", "0.9")
	t.Setenv("TEST_MACHINE_COLORS", "black, white")
	t.Setenv("TEST_MACHINE_IDLE", "1m")
	t.Setenv("TEST_MACHINE_VERBOSE", "true")

	cm := NewManager(&TestConfig{})
	if err := cm.Load(writeFile(t, "gumball.yml", testYAML)); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	cfg := cm.Get()
	if cfg.Machine.Name != "env-machine" {
		t.Errorf("期望名称 env-machine (环境变量), 实际 %s", cfg.Machine.Name)
	}
	if cfg.Machine.InitialBalls != 99 {
		t.Errorf("期望库存 99 (环境变量), 实际 %d", cfg.Machine.InitialBalls)
	}
	if cfg.Machine.WinProbability != 0.9 {
		t.Errorf("期望中奖概率 0.9 (环境变量), 实际 %v", cfg.Machine.WinProbability)
	}
	if len(cfg.Machine.Colors) != 2 || cfg.Machine.Colors[1] != "white" {
		t.Errorf("期望颜色 [black white] (环境变量), 实际 %v", cfg.Machine.Colors)
	}
	if cfg.Machine.Idle != time.Minute {
		t.Errorf("期望 idle 1m (环境变量), 实际 %v", cfg.Machine.Idle)
	}
	if !cfg.Machine.Verbose {
		t.Error("期望 Verbose=true (环境变量)")
	}
}

func TestEnvOverride_InvalidValue(t *testing.T) {
	t.Setenv("TEST_MACHINE_BALLS", "many")

	cm := NewManager(&TestConfig{})
	if err := cm.Load(writeFile(t, "gumball.yml", testYAML)); err == nil {
		t.Error("非法环境变量应返回错误")
	}
}

type validatedConfig struct {
	Balls    int `yaml:"balls"`
	Defaults bool
}

func (c *validatedConfig) SetDefaults() { c.Defaults = true }

func (c *validatedConfig) Validate() error {
	if c.Balls < 0 {
		return errors.New("balls must not be negative")
	}
	return nil
}

// 场景6：默认值与校验
func TestScenario6_DefaultsAndValidate(t *testing.T) {
	cm := NewManager[validatedConfig](nil)
	if err := cm.Load(writeFile(t, "ok.yml", "balls: 3\n")); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if !cm.Get().Defaults {
		t.Error("SetDefaults 未被调用")
	}

	bad := NewManager[validatedConfig](nil)
	if err := bad.Load(writeFile(t, "bad.yml", "balls: -1\n")); err == nil {
		t.Error("校验失败应返回错误")
	}
}

// 场景7：保存后重新加载
func TestScenario7_SaveConfig(t *testing.T) {
	path := writeFile(t, "gumball.yml", testYAML)

	cm := NewManager(&TestConfig{})
	if err := cm.Load(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	cm.Get().Machine.InitialBalls = 42
	if err := cm.Save(); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	cm2 := NewManager(&TestConfig{})
	if err := cm2.Load(path); err != nil {
		t.Fatalf("重新加载配置失败: %v", err)
	}
	if got := cm2.Get().Machine.InitialBalls; got != 42 {
		t.Errorf("期望库存 42, 实际 %d", got)
	}
}

// 场景8：手动重载触发回调
func TestScenario8_ReloadCallback(t *testing.T) {
	path := writeFile(t, "gumball.yml", testYAML)

	cm := NewManager(&TestConfig{})
	if err := cm.Load(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	var oldWin, newWin float64
	cm.OnChange(func(old, new *TestConfig) {
		oldWin = old.Machine.WinProbability
		newWin = new.Machine.WinProbability
	})

	_ = os.WriteFile(path, []byte("machine:\n  win_probability: 0.6\n"), 0644)
	if err := cm.Reload(); err != nil {
		t.Fatalf("重载配置失败: %v", err)
	}

	if oldWin != 0.25 || newWin != 0.6 {
		t.Errorf("回调参数错误: old=%v new=%v", oldWin, newWin)
	}
	if cm.Get().Machine.WinProbability != 0.6 {
		t.Errorf("重载后配置未更新: %v", cm.Get().Machine.WinProbability)
	}
}

func TestReload_KeepsOldOnError(t *testing.T) {
	path := writeFile(t, "gumball.yml", testYAML)

	cm := NewManager(&TestConfig{})
	if err := cm.Load(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	_ = os.WriteFile(path, []byte("machine: [broken"), 0644)
	if err := cm.Reload(); err == nil {
		t.Fatal("非法内容应返回错误")
	}
	if cm.Get().Machine.Name != "lobby" {
		t.Errorf("重载失败后应保留旧配置, 实际 %s", cm.Get().Machine.Name)
	}
}

// 场景9：文件变化自动重载
func TestScenario9_Watch(t *testing.T) {
	path := writeFile(t, "gumball.yml", testYAML)

	cm := NewManager(&TestConfig{}, WithConfigWatch(true, 50*time.Millisecond))
	defer cm.Close()
	if err := cm.Load(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	var reloaded atomic.Bool
	cm.OnChange(func(old, new *TestConfig) {
		if new.Machine.InitialBalls == 1 {
			reloaded.Store(true)
		}
	})

	_ = os.WriteFile(path, []byte("machine:\n  initial_balls: 1\n"), 0644)

	deadline := time.Now().Add(3 * time.Second)
	for !reloaded.Load() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if !reloaded.Load() {
		t.Error("文件修改后未自动重载")
	}
}

// 场景10：动态开关监听与重复关闭
func TestScenario10_DynamicWatchAndClose(t *testing.T) {
	cm := NewManager(&TestConfig{})
	if err := cm.Load(writeFile(t, "gumball.yml", testYAML)); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if err := cm.EnableWatch(true); err != nil {
		t.Fatalf("启用监听失败: %v", err)
	}
	if err := cm.EnableWatch(false); err != nil {
		t.Fatalf("停止监听失败: %v", err)
	}

	cm.Close()
	cm.Close()
}

// 场景11：按默认路径查找
func TestScenario11_DefaultPaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gumball.json"), []byte(testJSON), 0644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}

	cm := NewManager(&TestConfig{},
		WithAppName("gumball"),
		WithDefaultPaths(filepath.Join(dir, "missing", "{{.AppName}}"), filepath.Join(dir, "{{.AppName}}")),
	)
	if err := cm.Load(""); err != nil {
		t.Fatalf("默认路径加载失败: %v", err)
	}
	if cm.Path() != filepath.Join(dir, "gumball.json") {
		t.Errorf("配置路径错误: %s", cm.Path())
	}
	if cm.Get().Machine.Name != "hall" {
		t.Errorf("期望名称 hall, 实际 %s", cm.Get().Machine.Name)
	}

	empty := NewManager(&TestConfig{}, WithDefaultPaths(filepath.Join(dir, "nothing")))
	if err := empty.Load(""); err == nil {
		t.Error("找不到配置时应返回错误")
	}
}

func TestReplacePathVars(t *testing.T) {
	t.Setenv("GUMBALL_HOME", "/opt/gumball")

	result := replacePathVars("$GUMBALL_HOME/{{.AppName}}/config", map[string]string{"AppName": "lobby"})
	if result != "/opt/gumball/lobby/config" {
		t.Errorf("路径替换错误: %s", result)
	}
}

func TestValidateConfigPath(t *testing.T) {
	if err := validateConfigPath(""); err == nil {
		t.Error("空路径应返回错误")
	}
	if err := validateConfigPath(t.TempDir()); err == nil {
		t.Error("目录应返回错误")
	}
	if err := validateConfigPath(filepath.Join(t.TempDir(), "none.yml")); err == nil {
		t.Error("不存在的文件应返回错误")
	}
}

func TestSerializerGetName(t *testing.T) {
	cases := map[Serializer]string{
		&YAMLSerializer{}: "yaml",
		&JSONSerializer{}: "json",
		&INISerializer{}:  "ini",
	}
	for s, want := range cases {
		if s.GetName() != want {
			t.Errorf("序列化器名称错误: got %s, want %s", s.GetName(), want)
		}
	}
}

func TestINIMarshal(t *testing.T) {
	cfg := &TestConfig{}
	cfg.Machine.Name = "lobby"
	cfg.Machine.InitialBalls = 3

	data, err := (&INISerializer{}).Marshal(cfg)
	if err != nil {
		t.Fatalf("INI 序列化失败: %v", err)
	}

	var back TestConfig
	if err := (&INISerializer{}).Unmarshal(data, &back); err != nil {
		t.Fatalf("INI 反序列化失败: %v", err)
	}
	if back.Machine.Name != "lobby" || back.Machine.InitialBalls != 3 {
		t.Errorf("INI 往返结果错误: %+v", back.Machine)
	}
}
