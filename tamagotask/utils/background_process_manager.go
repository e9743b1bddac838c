package utils

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BackgroundProcessManager manages all background goroutines with proper lifecycle control
type BackgroundProcessManager struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processes map[string]*ProcessInfo
	mu        sync.RWMutex
}

type ProcessInfo struct {
	name        string
	cancel      context.CancelFunc
	description string
}

// NewBackgroundProcessManager creates a new process manager
func NewBackgroundProcessManager() *BackgroundProcessManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &BackgroundProcessManager{
		ctx:       ctx,
		cancel:    cancel,
		processes: make(map[string]*ProcessInfo),
	}
}

// StartProcess registers and starts a background process
func (bpm *BackgroundProcessManager) StartProcess(name, description string, fn func(ctx context.Context)) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	if _, exists := bpm.processes[name]; exists {
		slog.Warn("Process already exists, stopping existing one", slog.String("name", name))
		bpm.stopProcessLocked(name)
	}

	processCtx, processCancel := context.WithCancel(bpm.ctx)
	bpm.processes[name] = &ProcessInfo{
		name:        name,
		cancel:      processCancel,
		description: description,
	}

	bpm.wg.Add(1)
	go func() {
		defer bpm.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background process panic",
					slog.String("process", name),
					slog.Any("panic", r))
			}
		}()

		slog.Info("Starting background process",
			slog.String("process", name),
			slog.String("description", description))

		fn(processCtx)

		slog.Info("Background process ended",
			slog.String("process", name))
	}()
}

// StartTicker runs fn at the given interval until the manager shuts down.
// The first run happens immediately rather than after one interval.
func (bpm *BackgroundProcessManager) StartTicker(name, description string, interval time.Duration, fn func(ctx context.Context)) {
	bpm.StartProcess(name, description, func(ctx context.Context) {
		fn(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	})
}

// StopProcess stops a specific background process
func (bpm *BackgroundProcessManager) StopProcess(name string) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	bpm.stopProcessLocked(name)
}

func (bpm *BackgroundProcessManager) stopProcessLocked(name string) {
	if info, exists := bpm.processes[name]; exists {
		info.cancel()
		delete(bpm.processes, name)
	}
}

// Shutdown stops every process and waits up to timeout for them to finish.
func (bpm *BackgroundProcessManager) Shutdown(timeout time.Duration) {
	bpm.cancel()

	done := make(chan struct{})
	go func() {
		bpm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("All background processes stopped")
	case <-time.After(timeout):
		slog.Warn("Timed out waiting for background processes to stop",
			slog.Duration("timeout", timeout))
	}
}
