package generation

import "sync"

// Guard 进程内并发守卫
// 同一项目同时只允许一条生成管线运行，跨进程约束由任务表的
// 非终态唯一性检查兜底
type Guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewGuard 创建并发守卫
func NewGuard() *Guard {
	return &Guard{
		active: make(map[string]struct{}),
	}
}

// TryAcquire 尝试占用项目，已被占用时返回 false
func (g *Guard) TryAcquire(projectID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.active[projectID]; held {
		return false
	}
	g.active[projectID] = struct{}{}
	return true
}

// Release 释放项目占用，幂等
func (g *Guard) Release(projectID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, projectID)
}

// Held 检查项目是否被占用
func (g *Guard) Held(projectID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.active[projectID]
	return held
}
