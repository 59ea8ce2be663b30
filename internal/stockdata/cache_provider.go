package stockdata

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// CacheProvider 行情与报告缓存的统一接口，Redis不可用时退化为进程内实现
type CacheProvider interface {
	Get(key string, dest any) error
	Set(key string, value any, expiration time.Duration) error
}

var (
	errCacheMiss    = errors.New("缓存未命中")
	errCacheExpired = errors.New("缓存已过期")
	errCacheNil     = errors.New("缓存未初始化")
)

type memoryEntry struct {
	payload  []byte
	deadline time.Time // 零值表示永不过期
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.deadline.IsZero() && now.After(e.deadline)
}

// InMemoryCacheProvider 进程内JSON缓存，过期键在读取时惰性清理
type InMemoryCacheProvider struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewInMemoryCacheProvider() *InMemoryCacheProvider {
	return &InMemoryCacheProvider{entries: make(map[string]memoryEntry)}
}

func (p *InMemoryCacheProvider) Get(key string, dest any) error {
	if p == nil {
		return errCacheNil
	}
	p.mu.RLock()
	entry, ok := p.entries[key]
	p.mu.RUnlock()
	if !ok || len(entry.payload) == 0 {
		return errCacheMiss
	}
	if entry.expired(time.Now()) {
		p.mu.Lock()
		delete(p.entries, key)
		p.mu.Unlock()
		return errCacheExpired
	}
	return json.Unmarshal(entry.payload, dest)
}

func (p *InMemoryCacheProvider) Set(key string, value any, expiration time.Duration) error {
	if p == nil {
		return errCacheNil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := memoryEntry{payload: payload}
	if expiration > 0 {
		entry.deadline = time.Now().Add(expiration)
	}
	p.mu.Lock()
	p.entries[key] = entry
	p.mu.Unlock()
	return nil
}

var cacheProvider CacheProvider = NewInMemoryCacheProvider()

// SetCacheProvider 替换缓存实现，传nil时恢复为进程内缓存
func SetCacheProvider(p CacheProvider) {
	if p == nil {
		cacheProvider = NewInMemoryCacheProvider()
		return
	}
	cacheProvider = p
}

func getCacheProvider() CacheProvider {
	if cacheProvider == nil {
		cacheProvider = NewInMemoryCacheProvider()
	}
	return cacheProvider
}
