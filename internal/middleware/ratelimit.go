package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type loginWindow struct {
	attempts int
	resets   time.Time
}

// RateLimit caps attempts per client IP inside a fixed window. The facade
// mounts it on the login route so a scripted password guess against an
// institution account burns out after `limit` tries; rejected attempts get
// a 429 with Retry-After. The cap comes from LOGIN_RATE_PER_MINUTE.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var mu sync.Mutex
	windows := make(map[string]*loginWindow)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			now := time.Now()

			mu.Lock()
			win, ok := windows[ip]
			if !ok || now.After(win.resets) {
				sweepExpired(windows, now)
				win = &loginWindow{resets: now.Add(per)}
				windows[ip] = win
			}
			if win.attempts >= limit {
				wait := time.Until(win.resets)
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			win.attempts++
			mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

// sweepExpired drops windows whose reset time has passed so the map does not
// grow with every IP that ever tried to log in. Caller holds mu.
func sweepExpired(windows map[string]*loginWindow, now time.Time) {
	for ip, win := range windows {
		if now.After(win.resets) {
			delete(windows, ip)
		}
	}
}

// clientIPForRateLimit prefers the first valid X-Forwarded-For hop so the
// limiter still keys on the real client when the gateway sits behind a
// reverse proxy, and falls back to the socket address.
func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
