package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	rateWindow = time.Minute
	// при таком числе ключей из таблицы выкидываются истёкшие окна
	pruneThreshold = 4096
)

type rateWindowState struct {
	count   int
	resetAt time.Time
}

// RateLimiter считает запросы в минуту на пользователя сессии, а до входа на ip.
// Один лимитер ставится и на публичные маршруты, и после Auth на защищённые
type RateLimiter struct {
	rpm int
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*rateWindowState
}

// NewRateLimiter с rpm <= 0 ничего не ограничивает
func NewRateLimiter(rpm int) *RateLimiter {
	return &RateLimiter{
		rpm:     rpm,
		now:     time.Now,
		windows: make(map[string]*rateWindowState),
	}
}

// Allow засчитывает запрос ключа и говорит, укладывается ли он в лимит
func (l *RateLimiter) Allow(key string) (remaining int, resetAt time.Time, ok bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) >= pruneThreshold {
		for k, state := range l.windows {
			if now.After(state.resetAt) {
				delete(l.windows, k)
			}
		}
	}

	state, exists := l.windows[key]
	if !exists || now.After(state.resetAt) {
		state = &rateWindowState{resetAt: now.Add(rateWindow)}
		l.windows[key] = state
	}
	if state.count >= l.rpm {
		return 0, state.resetAt, false
	}
	state.count++
	return l.rpm - state.count, state.resetAt, true
}

func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l.rpm <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remaining, resetAt, ok := l.Allow(clientKey(r))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.rpm))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !ok {
			retryAfter := int(resetAt.Sub(l.now()).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeJSONError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "слишком много запросов, попробуйте позже")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if u := UserFromContext(r.Context()); u != nil {
		return "user:" + u.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
