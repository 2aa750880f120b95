package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/junbin-yang/go-gumball/pkg/logger"
)

var (
	// ErrWorkerExists 同名协程已注册
	ErrWorkerExists = errors.New("worker already exists")

	// ErrShutdownTimeout 退出超时
	ErrShutdownTimeout = errors.New("shutdown timeout")

	// ErrAlreadyRunning 重复启动
	ErrAlreadyRunning = errors.New("runner already running")
)

// RunFunc 协程运行函数，ctx 取消时应尽快返回
type RunFunc func(ctx context.Context) error

// HookFunc 启动/退出钩子
type HookFunc func(ctx context.Context) error

// worker 受管协程
type worker struct {
	name      string
	run       RunFunc
	stop      HookFunc
	essential bool // 退出后整个 Runner 随之退出
}

// WorkerOption 协程选项
type WorkerOption func(*worker)

// WithStop 设置停止函数，退出时按注册的逆序调用
func WithStop(fn HookFunc) WorkerOption {
	return func(w *worker) {
		w.stop = fn
	}
}

// Essential 协程返回（无论是否出错）即触发退出
func Essential() WorkerOption {
	return func(w *worker) {
		w.essential = true
	}
}

// Runner 管理协程生命周期：启动钩子、信号、超时退出
type Runner struct {
	mu              sync.Mutex
	workers         []*worker
	names           map[string]struct{}
	onStartup       []HookFunc
	onShutdown      []HookFunc
	signals         []os.Signal
	shutdownTimeout time.Duration
	log             logger.Logger
	running         bool
	wg              sync.WaitGroup
}

// RunnerOption Runner 选项
type RunnerOption func(*Runner)

// WithSignals 设置监听的信号
func WithSignals(signals ...os.Signal) RunnerOption {
	return func(r *Runner) {
		r.signals = signals
	}
}

// WithShutdownTimeout 设置退出超时
func WithShutdownTimeout(timeout time.Duration) RunnerOption {
	return func(r *Runner) {
		if timeout > 0 {
			r.shutdownTimeout = timeout
		}
	}
}

// WithRunnerLogger 设置日志
func WithRunnerLogger(l logger.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRunner 创建 Runner
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		names:           make(map[string]struct{}),
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		shutdownTimeout: 30 * time.Second,
		log:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Go 注册协程，需在 Run 之前调用
func (r *Runner) Go(name string, run RunFunc, opts ...WorkerOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}
	if _, exists := r.names[name]; exists {
		return fmt.Errorf("%w: %s", ErrWorkerExists, name)
	}

	w := &worker{name: name, run: run}
	for _, opt := range opts {
		opt(w)
	}
	r.workers = append(r.workers, w)
	r.names[name] = struct{}{}
	return nil
}

// OnStartup 注册启动钩子，任一失败则不启动协程
func (r *Runner) OnStartup(fn HookFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onStartup = append(r.onStartup, fn)
}

// OnShutdown 注册退出钩子，所有协程退出后调用
func (r *Runner) OnShutdown(fn HookFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onShutdown = append(r.onShutdown, fn)
}

// Run 启动所有协程并阻塞，直到收到信号、ctx 取消、关键协程退出或任一协程出错
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	workers := append([]*worker(nil), r.workers...)
	startup := append([]HookFunc(nil), r.onStartup...)
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, fn := range startup {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("startup hook: %w", err)
		}
	}

	errCh := make(chan error, len(workers))
	doneCh := make(chan string, len(workers))
	for _, w := range workers {
		r.wg.Add(1)
		go func(w *worker) {
			defer r.wg.Done()
			r.log.Debug("协程启动", logger.String("worker", w.name))

			err := w.run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.log.Error("协程异常退出", logger.String("worker", w.name), logger.Err(err))
				errCh <- fmt.Errorf("worker %s: %w", w.name, err)
				return
			}
			r.log.Debug("协程退出", logger.String("worker", w.name))
			if w.essential {
				doneCh <- w.name
			}
		}(w)
	}

	sigCh := make(chan os.Signal, 1)
	if len(r.signals) > 0 {
		signal.Notify(sigCh, r.signals...)
		defer signal.Stop(sigCh)
	}

	var runErr error
	select {
	case sig := <-sigCh:
		r.log.Info("收到退出信号", logger.String("signal", sig.String()))
	case name := <-doneCh:
		r.log.Info("关键协程已结束", logger.String("worker", name))
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	cancel()
	if err := r.shutdown(workers); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// shutdown 逆序调用停止函数，等待协程退出后执行退出钩子
func (r *Runner) shutdown(workers []*worker) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.shutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(workers) - 1; i >= 0; i-- {
		if w := workers[i]; w.stop != nil {
			if err := w.stop(ctx); err != nil {
				errs = append(errs, fmt.Errorf("stop %s: %w", w.name, err))
			}
		}
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r.log.Warn("等待协程退出超时", logger.Duration("timeout", r.shutdownTimeout))
		return errors.Join(append(errs, ErrShutdownTimeout)...)
	}

	r.mu.Lock()
	hooks := append([]HookFunc(nil), r.onShutdown...)
	r.mu.Unlock()
	for _, fn := range hooks {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
