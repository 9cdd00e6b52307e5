package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type visitor struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter is a per-IP token bucket. When a Redis client is attached the
// buckets are replaced by shared fixed-window counters so limits hold across
// replicas; without one it degrades to local in-memory state.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     float64 // tokens per second
	burst    float64 // max tokens

	rdb    *redis.Client
	window time.Duration
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rps,
		burst:    float64(burst),
		window:   time.Second,
	}
	go rl.cleanup()
	return rl
}

// WithRedis switches the limiter to shared counters. Call before serving.
func (rl *RateLimiter) WithRedis(rdb *redis.Client) *RateLimiter {
	rl.rdb = rdb
	return rl
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr

		if rl.rdb != nil {
			allowed, err := rl.allowRedis(r.Context(), ip)
			if err == nil {
				if !allowed {
					tooManyRequests(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			// Redis down: fall through to local buckets.
		}

		if !rl.allowLocal(ip) {
			tooManyRequests(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allowLocal(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{tokens: rl.burst, lastSeen: time.Now()}
		rl.visitors[ip] = v
	}

	elapsed := time.Since(v.lastSeen).Seconds()
	v.tokens += elapsed * rl.rate
	if v.tokens > rl.burst {
		v.tokens = rl.burst
	}
	v.lastSeen = time.Now()

	if v.tokens < 1 {
		return false
	}
	v.tokens--
	return true
}

func (rl *RateLimiter) allowRedis(ctx context.Context, ip string) (bool, error) {
	key := "ratelimit:" + ip + ":" + strconv.FormatInt(time.Now().Unix(), 10)

	count, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		// Without the TTL the window key never dies; treat a failed Expire
		// like a failed Incr and let the caller fall back to local buckets.
		if err := rl.rdb.Expire(ctx, key, rl.window+time.Second).Err(); err != nil {
			return false, err
		}
	}
	return float64(count) <= rl.burst, nil
}

func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func tooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
}
