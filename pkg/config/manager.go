package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/junbin-yang/go-gumball/pkg/logger"
)

// Defaulter 配置结构体可实现该接口，在解析前填充默认值
type Defaulter interface {
	SetDefaults()
}

// Validator 配置结构体可实现该接口，在解析及环境变量覆盖后校验
type Validator interface {
	Validate() error
}

// Manager 通用配置管理器
type Manager[T any] struct {
	options

	mu         sync.RWMutex
	instance   *T         // 当前配置
	configPath string     // 配置文件路径
	serializer Serializer // 当前使用的序列化器
	callbacks  []func(old, new *T)

	watcher   *fsnotify.Watcher
	watchQuit chan struct{}
	closeOnce sync.Once
}

// NewManager 创建配置管理器，cfg 为初始实例（可为 nil）
func NewManager[T any](cfg *T, opts ...Option) *Manager[T] {
	if cfg == nil {
		cfg = new(T)
	}

	cm := &Manager[T]{
		options:   defaultOptions(),
		instance:  cfg,
		watchQuit: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(&cm.options)
	}
	cm.serializer = cm.defaultSerializer
	return cm
}

// Load 加载配置文件，customPath 为空时按默认路径查找
func (cm *Manager[T]) Load(customPath string) error {
	cm.mu.Lock()

	// 1. 确定配置路径与格式
	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			cm.mu.Unlock()
			return fmt.Errorf("invalid custom config path: %w", err)
		}
		cm.configPath = customPath
		cm.chooseSerializer(customPath)
	} else {
		path, err := cm.findDefaultConfigPath()
		if err != nil {
			cm.mu.Unlock()
			return fmt.Errorf("default config not found: %w", err)
		}
		cm.configPath = path
	}

	// 2. 解析、覆盖、校验
	cfg, err := cm.decode(cm.instance)
	if err != nil {
		cm.mu.Unlock()
		return err
	}
	cm.instance = cfg
	cm.mu.Unlock()

	// 3. 启动配置监听（如果启用）
	if cm.watchEnabled {
		return cm.startWatch()
	}
	return nil
}

// Get 返回当前配置，重载后会返回新实例
func (cm *Manager[T]) Get() *T {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.instance
}

// Path 返回已加载的配置文件路径
func (cm *Manager[T]) Path() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// Save 保存当前配置到文件
func (cm *Manager[T]) Save() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.configPath == "" {
		return errors.New("config path not initialized")
	}

	data, err := cm.serializer.Marshal(cm.instance)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}

	// 先写入临时文件再替换，避免写坏原文件
	tmpPath := cm.configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp config failed: %w", err)
	}
	if err := os.Rename(tmpPath, cm.configPath); err != nil {
		return fmt.Errorf("rename temp config failed: %w", err)
	}
	return nil
}

// Reload 重新读取配置文件，成功后触发变更回调
func (cm *Manager[T]) Reload() error {
	cm.mu.Lock()
	if cm.configPath == "" {
		cm.mu.Unlock()
		return errors.New("config path not initialized")
	}

	// 新建实例，解析失败时保留旧配置
	fresh, err := cm.decode(new(T))
	if err != nil {
		cm.mu.Unlock()
		return err
	}

	old := cm.instance
	cm.instance = fresh
	callbacks := make([]func(old, new *T), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	// 回调在锁外执行
	for _, callback := range callbacks {
		callback(old, fresh)
	}
	return nil
}

// OnChange 注册配置变更回调
func (cm *Manager[T]) OnChange(callback func(old, new *T)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, callback)
}

// EnableWatch 动态启用/禁用配置监听
func (cm *Manager[T]) EnableWatch(enable bool) error {
	cm.mu.Lock()
	cm.watchEnabled = enable
	hasPath := cm.configPath != ""
	cm.mu.Unlock()

	if enable && hasPath {
		return cm.startWatch()
	}
	cm.stopWatch()
	return nil
}

// Close 停止监听并释放资源，可重复调用
func (cm *Manager[T]) Close() {
	cm.closeOnce.Do(func() {
		close(cm.watchQuit)
		cm.stopWatch()
	})
}

/* ------------------------------ 内部方法 ------------------------------ */

// decode 读取文件到 cfg，并应用默认值、环境变量与校验
func (cm *Manager[T]) decode(cfg *T) (*T, error) {
	if d, ok := any(cfg).(Defaulter); ok {
		d.SetDefaults()
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}
	if err := cm.serializer.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal failed (%s): %w", cm.serializer.GetName(), err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides failed: %w", err)
	}

	if v, ok := any(cfg).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validate config failed: %w", err)
		}
	}
	return cfg, nil
}

// chooseSerializer 强制格式 > 后缀识别 > 默认
func (cm *Manager[T]) chooseSerializer(path string) {
	if cm.forceFormat != nil {
		cm.serializer = cm.forceFormat
		return
	}

	ext := filepath.Ext(path)
	for _, format := range cm.supportedFormats {
		if format.GetFileExt() == ext || (format.GetName() == "yaml" && ext == ".yaml") {
			cm.serializer = format
			return
		}
	}
	cm.serializer = cm.defaultSerializer
}

// findDefaultConfigPath 按模板依次查找默认配置
func (cm *Manager[T]) findDefaultConfigPath() (string, error) {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	for _, pathTpl := range cm.defaultPaths {
		basePath := replacePathVars(pathTpl, map[string]string{
			"AppName": cm.appName,
			"ExecDir": execDir,
		})

		// 先尝试无后缀文件
		if err := validateConfigPath(basePath); err == nil {
			cm.chooseSerializer(basePath)
			return basePath, nil
		}

		for _, format := range cm.supportedFormats {
			fullPath := basePath + format.GetFileExt()
			if err := validateConfigPath(fullPath); err == nil {
				cm.serializer = format
				if cm.forceFormat != nil {
					cm.serializer = cm.forceFormat
				}
				return fullPath, nil
			}
		}
	}

	return "", errors.New("no valid config file found (tried default paths and formats)")
}

// startWatch 启动配置文件监听
func (cm *Manager[T]) startWatch() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher failed: %w", err)
	}
	// 监听所在目录，兼容编辑器先删除再重建文件的写法
	if err := watcher.Add(filepath.Dir(cm.configPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("add watch path failed: %w", err)
	}

	cm.watcher = watcher
	go cm.watchLoop(watcher, cm.configPath)
	return nil
}

// stopWatch 停止配置文件监听
func (cm *Manager[T]) stopWatch() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.watcher != nil {
		cm.watcher.Close()
		cm.watcher = nil
	}
}

// watchLoop 监听文件变化，防抖后自动重载
func (cm *Manager[T]) watchLoop(watcher *fsnotify.Watcher, path string) {
	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	target := filepath.Clean(path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(cm.watchDebounce)
			}

		case <-debounce.C:
			if err := cm.Reload(); err != nil {
				cm.log.Warn("配置自动重载失败", logger.String("path", path), logger.Err(err))
			} else {
				cm.log.Info("配置已自动重载", logger.String("path", path))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			cm.log.Warn("配置监听错误", logger.Err(err))

		case <-cm.watchQuit:
			return
		}
	}
}
