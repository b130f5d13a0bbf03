package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc picks the identity a limit applies to. ok=false skips the limit.
type KeyFunc func(*gin.Context) (string, bool)

// KeyByIP limits per client address.
func KeyByIP(c *gin.Context) (string, bool) {
	return "ip:" + c.ClientIP(), true
}

// KeyByAccount limits per authenticated player. Requires JWT to run first.
func KeyByAccount(c *gin.Context) (string, bool) {
	id, ok := TelegramID(c)
	if !ok {
		return "", false
	}
	return "tg:" + strconv.FormatInt(id, 10), true
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter is the token-bucket fallback used when Redis is absent.
type localLimiter struct {
	name   string
	limit  rate.Limit
	burst  int
	window time.Duration
	key    KeyFunc

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	sweeps   int
}

func newLocalLimiter(name string, maxRequests int, window time.Duration, key KeyFunc) *localLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &localLimiter{
		name:     name,
		limit:    rate.Limit(float64(maxRequests) / window.Seconds()),
		burst:    maxRequests,
		window:   window,
		key:      key,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

func (l *localLimiter) get(key string) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweeps++
	if l.sweeps >= 5000 {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.ttl {
				delete(l.visitors, k)
			}
		}
		l.sweeps = 0
	}

	if v, ok := l.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

func (l *localLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := l.key(c)
		if !ok {
			c.Next()
			return
		}
		if !l.get(ident).Allow() {
			blocked(c, l.name, l.window)
			return
		}
		RLRequests.WithLabelValues(l.name).Inc()
		c.Next()
	}
}
