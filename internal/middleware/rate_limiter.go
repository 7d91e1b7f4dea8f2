package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"veredapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// window counts requests of one client inside a fixed window.
type window struct {
	count int
	end   time.Time
}

// limiter is a per-IP fixed-window counter. Expired entries are purged in
// the background so addresses that never come back do not accumulate.
type limiter struct {
	name   string
	limit  int
	period time.Duration

	mu      sync.Mutex
	clients map[string]*window
	purge   sync.Once
	now     func() time.Time
}

func newLimiter(name string, limit int, period time.Duration) *limiter {
	return &limiter{name: name, limit: limit, period: period, clients: map[string]*window{}, now: time.Now}
}

// allow records one request from ip and reports whether it fits the window,
// together with the window's end.
func (l *limiter) allow(ip string) (bool, time.Time) {
	l.purge.Do(func() { go l.purgeLoop() })

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	w, ok := l.clients[ip]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

const purgeInterval = 5 * time.Minute

func (l *limiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		now := l.now()
		purged := 0
		for ip, w := range l.clients {
			if now.After(w.end) {
				delete(l.clients, ip)
				purged++
			}
		}
		remaining := len(l.clients)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Str("limiter", l.name).
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter entries purged")
		}
	}
}

func (l *limiter) handler(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(end).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits PIN attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter("login", 20, time.Minute).
		handler("Demasiadas tentativas de login. Tente novamente dentro de 1 minuto.")
}

// SelfOrderRateLimiter throttles orders placed from the table QR code.
func SelfOrderRateLimiter() gin.HandlerFunc {
	return newLimiter("self-order", 10, time.Minute).
		handler("Demasiados pedidos seguidos. Chame um empregado.")
}

// RateLimiter is the general API limiter.
func RateLimiter(limit int, period time.Duration) gin.HandlerFunc {
	return newLimiter("api", limit, period).
		handler("Demasiados pedidos. Tente novamente dentro de momentos.")
}
