package thirdpart

import (
	"sync"
	"time"
)

// RateLimiter 令牌桶限流器，保护对 BitJita 的出站调用。
// 桶初始为空（启动时不允许突发），按 ratePerMin/60 每秒连续回填，
// 上限 capacity。Acquire 阻塞直到拿到令牌。
type RateLimiter struct {
	ratePerSec float64
	capacity   float64

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// NewRateLimiter ratePerMin 最小为 1；capacity <= 0 时取 min(ratePerMin, 10)。
func NewRateLimiter(ratePerMin int, capacity int) *RateLimiter {
	if ratePerMin < 1 {
		ratePerMin = 1
	}
	c := float64(capacity)
	if capacity <= 0 {
		c = float64(min(ratePerMin, 10))
	}
	return &RateLimiter{
		ratePerSec: float64(ratePerMin) / 60.0,
		capacity:   c,
		last:       time.Now(),
	}
}

// Acquire 阻塞直到 cost 个令牌可用并扣除。并发安全；
// 回填+扣除在锁内判定，睡眠在锁外进行，避免阻塞其他调用方的记账。
func (r *RateLimiter) Acquire(cost float64) {
	if cost <= 0 {
		cost = 1
	}
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.last).Seconds()
		r.tokens = min(r.capacity, r.tokens+elapsed*r.ratePerSec)
		r.last = now
		if r.tokens >= cost {
			r.tokens -= cost
			r.mu.Unlock()
			return
		}
		needed := cost - r.tokens
		r.mu.Unlock()

		wait := time.Duration(needed / r.ratePerSec * float64(time.Second))
		time.Sleep(wait + 10*time.Millisecond)
	}
}

// Capacity 桶容量（测试用）
func (r *RateLimiter) Capacity() float64 { return r.capacity }
