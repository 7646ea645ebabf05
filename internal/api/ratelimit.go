package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// CallerRateLimiter hands out one token bucket per caller. Buckets idle
// long enough to have refilled completely are evicted; a fresh bucket is
// indistinguishable from them.
type CallerRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*callerLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewCallerRateLimiter allows perMinute events per caller with the given burst.
func NewCallerRateLimiter(perMinute float64, burst int) *CallerRateLimiter {
	l := &CallerRateLimiter{
		limiters: make(map[string]*callerLimiter),
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
		idleTTL:  time.Hour,
		now:      time.Now,
	}
	if l.limit > 0 {
		l.idleTTL = time.Duration(float64(burst) / float64(l.limit) * float64(time.Second))
	}
	l.lastSweep = l.now()
	return l
}

// Limiter returns the bucket of the given caller, creating it on first use.
func (l *CallerRateLimiter) Limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		for k, cl := range l.limiters {
			if now.Sub(cl.lastSeen) >= l.idleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	cl, ok := l.limiters[key]
	if !ok {
		cl = &callerLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// Middleware rejects requests of callers that exhausted their bucket.
// It must run after AuthMiddleware.
func (l *CallerRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := caller(r).UserID
		if key == "" {
			key = r.RemoteAddr
		}

		reservation := l.Limiter(key).Reserve()
		if !reservation.OK() {
			jsonError(w, http.StatusTooManyRequests, "submissions disabled")
			return
		}
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(int(delay.Round(time.Second)/time.Second)+1))
			jsonError(w, http.StatusTooManyRequests, "too many submissions, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
