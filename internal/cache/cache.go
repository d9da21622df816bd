// Package cache 帖子列表页缓存的接口和进程内实现
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL 页面缓存时间
const DefaultTTL = 20 * time.Second

const (
	ViewerAnonymous     = "anon"
	ViewerAuthenticated = "auth"
)

// Key 缓存键：作用域 + 页码 + 访问者分组
type Key struct {
	Scope  string
	Page   string
	Viewer string
}

func (k Key) String() string {
	return k.Scope + ":" + k.Page + ":" + k.Viewer
}

// ViewerBucket 按是否登录分组，不按用户区分
func ViewerBucket(userID uint64) string {
	if userID == 0 {
		return ViewerAnonymous
	}
	return ViewerAuthenticated
}

// Lookup 一次查询的结果，Gen 是查询时的缓存代数
type Lookup struct {
	Value []byte
	Hit   bool
	Gen   uint64
}

// PageCache 有时效的页面缓存，Invalidate 清空全部页面。
// Set 必须带上 Get 返回的代数，期间发生过 Invalidate 的写入不会被读到
type PageCache interface {
	Get(ctx context.Context, key Key) (Lookup, error)
	Set(ctx context.Context, key Key, gen uint64, value []byte) error
	Invalidate(ctx context.Context) error
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory 进程内实现，时钟可注入。过期条目每个 TTL 周期在 Set 时清理一次
type Memory struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	gen       uint64
	lastSweep time.Time
	entries   map[Key]entry
}

func NewMemory(ttl time.Duration, now func() time.Time) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Memory{ttl: ttl, now: now, lastSweep: now(), entries: make(map[Key]entry)}
}

func (m *Memory) Get(_ context.Context, key Key) (Lookup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := Lookup{Gen: m.gen}
	e, ok := m.entries[key]
	if !ok {
		return res, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return res, nil
	}
	res.Value, res.Hit = e.value, true
	return res, nil
}

func (m *Memory) Set(_ context.Context, key Key, gen uint64, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return nil
	}
	now := m.now()
	if now.Sub(m.lastSweep) >= m.ttl {
		m.sweep(now)
	}
	m.entries[key] = entry{value: value, expiresAt: now.Add(m.ttl)}
	return nil
}

// sweep 调用方持有锁
func (m *Memory) sweep(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.lastSweep = now
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.entries = make(map[Key]entry)
	return nil
}

// Len 当前保存的条目数，包括尚未清理的过期条目
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
