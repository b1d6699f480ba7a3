// Package ratelimit throttles sign-in and sign-up attempts.
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	// Sign-in limits
	LoginMaxAttempts  int           // Failed sign-ins per email before lockout (default: 5)
	LoginWindow       time.Duration // Window the failures are counted in (default: 15m)
	LoginLockout      time.Duration // Lockout duration after max failures (default: 15m)
	LoginMaxIPPerHour int           // Max sign-in attempts per IP per hour (default: 30)

	// Sign-up limits
	SignupMaxIPPerHour int // Max sign-ups per IP per hour (default: 10)

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		LoginMaxAttempts:   5,
		LoginWindow:        15 * time.Minute,
		LoginLockout:       15 * time.Minute,
		LoginMaxIPPerHour:  30,
		SignupMaxIPPerHour: 10,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

// entry tracks request counts and timestamps.
type entry struct {
	count    int
	firstAt  time.Time // First request in window
	lastAt   time.Time // Most recent request
	lockedAt time.Time // When lockout started (zero if not locked)
}

// Limiter implements per-email and per-IP limits for auth forms.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	// Keyed by hash of email or IP
	loginByID  map[string]*entry
	loginByIP  map[string]*entry
	signupByIP map[string]*entry
}

// New creates a new rate limiter with the given config. Zero fields take the
// defaults.
func New(cfg *Config) *Limiter {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}
	if cfg.LoginMaxAttempts <= 0 {
		cfg.LoginMaxAttempts = defaults.LoginMaxAttempts
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = defaults.LoginWindow
	}
	if cfg.LoginLockout <= 0 {
		cfg.LoginLockout = defaults.LoginLockout
	}
	if cfg.LoginMaxIPPerHour <= 0 {
		cfg.LoginMaxIPPerHour = defaults.LoginMaxIPPerHour
	}
	if cfg.SignupMaxIPPerHour <= 0 {
		cfg.SignupMaxIPPerHour = defaults.SignupMaxIPPerHour
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Limiter{
		config:     cfg,
		clock:      clock,
		loginByID:  make(map[string]*entry),
		loginByIP:  make(map[string]*entry),
		signupByIP: make(map[string]*entry),
	}
}

// CheckLogin checks if a sign-in attempt is allowed.
// Does NOT record the attempt - call RecordLoginFailure when the credentials are rejected.
func (l *Limiter) CheckLogin(email, ip string) LimitResult {
	now := l.clock.Now()
	idKey := l.hashKey("login:id:", normalizeIdentifier(email))
	ipKey := l.hashKey("login:ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.loginByID[idKey]; e != nil {
		if !e.lockedAt.IsZero() {
			elapsed := now.Sub(e.lockedAt)
			if elapsed < l.config.LoginLockout {
				return LimitResult{
					Allowed:    false,
					RetryAfter: l.config.LoginLockout - elapsed,
					Reason:     "lockout",
				}
			}
			// Lockout expired - will be reset on the next failure
		}
	}

	if e := l.loginByIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.LoginMaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// RecordLoginFailure records rejected credentials.
// Returns true if max attempts reached and lockout was triggered.
func (l *Limiter) RecordLoginFailure(email, ip string) (lockedOut bool) {
	now := l.clock.Now()
	idKey := l.hashKey("login:id:", normalizeIdentifier(email))
	ipKey := l.hashKey("login:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.loginByID[idKey]
	switch {
	case e == nil:
		e = &entry{count: 1, firstAt: now, lastAt: now}
		l.loginByID[idKey] = e
	case !e.lockedAt.IsZero() && now.Sub(e.lockedAt) >= l.config.LoginLockout,
		e.lockedAt.IsZero() && now.Sub(e.firstAt) >= l.config.LoginWindow:
		// Lockout or counting window expired, reset
		e = &entry{count: 1, firstAt: now, lastAt: now}
		l.loginByID[idKey] = e
	default:
		e.count++
		e.lastAt = now
	}
	if e.count >= l.config.LoginMaxAttempts && e.lockedAt.IsZero() {
		e.lockedAt = now
		lockedOut = true
	}

	l.bumpIP(l.loginByIP, ipKey, now)
	return lockedOut
}

// ResetLogin clears the failure counter after a successful sign-in.
func (l *Limiter) ResetLogin(email string) {
	idKey := l.hashKey("login:id:", normalizeIdentifier(email))
	l.mu.Lock()
	delete(l.loginByID, idKey)
	l.mu.Unlock()
}

// CheckSignup checks if another account may be created from ip.
func (l *Limiter) CheckSignup(ip string) LimitResult {
	now := l.clock.Now()
	ipKey := l.hashKey("signup:ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.signupByIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.SignupMaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}
	return LimitResult{Allowed: true}
}

// RecordSignup records a sign-up attempt from ip.
func (l *Limiter) RecordSignup(ip string) {
	now := l.clock.Now()
	ipKey := l.hashKey("signup:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.bumpIP(l.signupByIP, ipKey, now)
}

func (l *Limiter) bumpIP(entries map[string]*entry, key string, now time.Time) {
	e := entries[key]
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		entries[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

func (l *Limiter) hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// normalizeIdentifier lowercases the identifier to prevent case-based bypass.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// Prune drops entries that can no longer limit anything. The scheduler calls
// it periodically.
func (l *Limiter) Prune() int {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	maxAge := l.config.LoginLockout + l.config.LoginWindow
	for k, e := range l.loginByID {
		if now.Sub(e.lastAt) > maxAge {
			delete(l.loginByID, k)
			removed++
		}
	}
	for _, entries := range []map[string]*entry{l.loginByIP, l.signupByIP} {
		for k, e := range entries {
			if now.Sub(e.lastAt) > time.Hour {
				delete(entries, k)
				removed++
			}
		}
	}
	return removed
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost IP from X-Forwarded-For (added by your proxy).
// When trustProxy is false, ignores X-Forwarded-For entirely (prevents spoofing).
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Use RIGHTMOST IP - this is the one your proxy added, not user-supplied
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				// Skip private/internal IPs to find the real client
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			// All IPs are private, use the last one
			return strings.TrimSpace(parts[len(parts)-1])
		}

		// Check X-Real-IP (set by nginx)
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	// Fall back to RemoteAddr (direct connection or untrusted proxy)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port (e.g., Unix socket or malformed)
		// Try to parse as IP directly, otherwise return as-is
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		// Last resort: strip anything after last colon that looks like a port
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

// privateNetworks holds parsed CIDR ranges for private/reserved IPs.
// Parsed once at package init for efficiency.
var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10", // Link-local
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP checks if an IP is in a private/reserved range.
// Handles both IPv4 and IPv4-mapped IPv6 addresses (e.g., ::ffff:192.168.1.1).
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	// Convert IPv4-mapped IPv6 to IPv4 for consistent matching
	// e.g., ::ffff:192.168.1.1 -> 192.168.1.1
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}

	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// SanitizeIdentifier masks an identifier for logging.
func SanitizeIdentifier(identifier string) string {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if strings.Contains(identifier, "@") {
		parts := strings.Split(identifier, "@")
		if len(parts[0]) > 2 {
			return parts[0][:2] + "***@" + parts[1]
		}
		return "***@" + parts[1]
	}
	return "***"
}

// LogRateLimitExceeded logs a rate limit event with sanitized identifier.
func LogRateLimitExceeded(limitType, identifier, ip, reason string) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Str("type", limitType).
		Str("identifier", SanitizeIdentifier(identifier)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Auth rate limit exceeded")
}
