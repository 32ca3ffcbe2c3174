package auth

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Login attempts are throttled per client IP: 30 per minute with a burst of
// 15, enough headroom for a shared NAT without letting online guessing run.
// Entries idle past loginLimiterIdleTTL are swept once the map reaches
// loginLimiterSweepSize, so the map cannot grow with one entry per IP forever.
const (
	loginLimiterIdleTTL   = time.Hour
	loginLimiterSweepSize = 1024
)

type loginThrottle struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	loginLimiters   = map[string]*loginThrottle{}
	loginLimitersMu sync.Mutex
)

func loginLimiter(ip string) *rate.Limiter {
	loginLimitersMu.Lock()
	defer loginLimitersMu.Unlock()

	now := time.Now()
	if len(loginLimiters) >= loginLimiterSweepSize {
		for key, entry := range loginLimiters {
			if now.Sub(entry.lastSeen) > loginLimiterIdleTTL {
				delete(loginLimiters, key)
			}
		}
	}

	entry, ok := loginLimiters[ip]
	if !ok {
		entry = &loginThrottle{limiter: rate.NewLimiter(rate.Limit(30.0/60.0), 15)}
		loginLimiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func allowLogin(r *http.Request) bool {
	return loginLimiter(clientIP(r)).Allow()
}
