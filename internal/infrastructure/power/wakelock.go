// Package power 提供系统休眠抑制能力
// 生成运行期间阻止宿主机休眠，运行结束后立即释放
package power

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"inkwell-book-api/pkg/logger"
	"inkwell-book-api/pkg/metrics"
)

// Lock 一次持有中的休眠抑制
type Lock interface {
	// Release 释放抑制，幂等
	Release()
}

// Coordinator 休眠抑制协调器
type Coordinator interface {
	// Acquire 获取休眠抑制；平台不支持时返回 nil Lock 且不报错
	Acquire(ctx context.Context, reason string) (Lock, error)
}

// SystemdCoordinator 基于 systemd-inhibit 的实现
// 以子进程方式持有 inhibitor，进程退出即释放，天然防泄漏
type SystemdCoordinator struct {
	binPath string
	enabled bool
}

// NewSystemdCoordinator 创建协调器
// enabled 为 false 或宿主机没有 systemd-inhibit 时退化为空操作
func NewSystemdCoordinator(enabled bool) *SystemdCoordinator {
	c := &SystemdCoordinator{enabled: enabled}
	if !enabled {
		return c
	}
	path, err := exec.LookPath("systemd-inhibit")
	if err != nil {
		c.enabled = false
		return c
	}
	c.binPath = path
	return c
}

// Acquire 获取休眠抑制
func (c *SystemdCoordinator) Acquire(ctx context.Context, reason string) (Lock, error) {
	log := logger.FromContext(ctx)

	if !c.enabled {
		log.Debug("wake lock unavailable, continuing without inhibitor")
		metrics.WakeLockAcquired.WithLabelValues("unavailable").Inc()
		return noopLock{}, nil
	}

	// sleep infinity 让 inhibitor 一直持有，Release 时杀掉子进程
	cmd := exec.Command(c.binPath,
		"--what=sleep:idle",
		"--who=inkwell-book-api",
		fmt.Sprintf("--why=%s", reason),
		"--mode=block",
		"sleep", "infinity",
	)
	if err := cmd.Start(); err != nil {
		log.Warn("failed to start systemd-inhibit, continuing without wake lock", "error", err)
		metrics.WakeLockAcquired.WithLabelValues("unavailable").Inc()
		return noopLock{}, nil
	}

	log.Info("wake lock acquired", "reason", reason, "pid", cmd.Process.Pid)
	metrics.WakeLockAcquired.WithLabelValues("held").Inc()

	return &systemdLock{cmd: cmd}, nil
}

type systemdLock struct {
	cmd  *exec.Cmd
	once sync.Once
}

// Release 释放抑制，幂等
func (l *systemdLock) Release() {
	l.once.Do(func() {
		if l.cmd.Process != nil {
			l.cmd.Process.Kill()
			l.cmd.Wait()
		}
	})
}

type noopLock struct{}

func (noopLock) Release() {}
