package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

// RedisProvider Redis缓存，方法签名与stockdata.CacheProvider一致
type RedisProvider struct {
	client *redis.Client
}

// NewRedisProvider 连接Redis，连接失败时返回错误由调用方降级
func NewRedisProvider(addr string) (*RedisProvider, error) {
	if addr == "" {
		return nil, fmt.Errorf("未配置Redis地址")
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}
	return &RedisProvider{client: client}, nil
}

// Get 读取并反序列化缓存
func (p *RedisProvider) Get(key string, dest any) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("Redis未初始化")
	}
	data, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set 序列化并写入缓存
func (p *RedisProvider) Set(key string, value any, expiration time.Duration) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("Redis未初始化")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, key, data, expiration).Err()
}

// Delete 删除缓存
func (p *RedisProvider) Delete(key string) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("Redis未初始化")
	}
	return p.client.Del(ctx, key).Err()
}

// Close 关闭连接
func (p *RedisProvider) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
