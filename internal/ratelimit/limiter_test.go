package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheckLogin_LockoutAfterMaxFailures(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		LoginMaxAttempts:  3,
		LoginWindow:       15 * time.Minute,
		LoginLockout:      10 * time.Minute,
		LoginMaxIPPerHour: 100,
		Clock:             clock,
	})

	email := "ana@example.com"
	ip := "192.168.1.1"

	for i := 0; i < 2; i++ {
		if result := limiter.CheckLogin(email, ip); !result.Allowed {
			t.Fatalf("attempt %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		if limiter.RecordLoginFailure(email, ip) {
			t.Fatalf("attempt %d should not trigger lockout", i+1)
		}
	}

	if !limiter.RecordLoginFailure(email, ip) {
		t.Fatal("third failure should trigger lockout")
	}

	clock.Advance(4 * time.Minute)
	result := limiter.CheckLogin(email, ip)
	if result.Allowed {
		t.Fatal("request during lockout should be blocked")
	}
	if result.Reason != "lockout" {
		t.Errorf("Expected reason 'lockout', got '%s'", result.Reason)
	}
	if result.RetryAfter != 6*time.Minute {
		t.Errorf("Expected RetryAfter 6m, got %v", result.RetryAfter)
	}

	clock.Advance(6 * time.Minute)
	if result := limiter.CheckLogin(email, ip); !result.Allowed {
		t.Fatalf("request after lockout should be allowed, got blocked: %s", result.Reason)
	}
	if limiter.RecordLoginFailure(email, ip) {
		t.Fatal("first failure after lockout should start a new count")
	}
}

func TestCheckLogin_WindowExpiryResetsCount(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		LoginMaxAttempts: 2,
		LoginWindow:      5 * time.Minute,
		Clock:            clock,
	})

	email := "ana@example.com"
	ip := "192.168.1.1"

	limiter.RecordLoginFailure(email, ip)
	clock.Advance(6 * time.Minute)
	if limiter.RecordLoginFailure(email, ip) {
		t.Fatal("failure outside the window should not trigger lockout")
	}
	if !limiter.RecordLoginFailure(email, ip) {
		t.Fatal("second failure inside the window should trigger lockout")
	}
}

func TestCheckLogin_ResetOnSuccess(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{LoginMaxAttempts: 2, Clock: clock})

	email := "ana@example.com"
	ip := "192.168.1.1"

	limiter.RecordLoginFailure(email, ip)
	limiter.ResetLogin(email)
	if limiter.RecordLoginFailure(email, ip) {
		t.Fatal("counter should restart after a successful sign-in")
	}
}

func TestCheckLogin_EmailNormalization(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{LoginMaxAttempts: 1, Clock: clock})

	limiter.RecordLoginFailure("Ana@Example.com ", "192.168.1.1")

	result := limiter.CheckLogin("ana@example.com", "192.168.1.2")
	if result.Allowed {
		t.Fatal("case variant of a locked email should be blocked")
	}
}

func TestCheckLogin_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		LoginMaxAttempts:  100,
		LoginMaxIPPerHour: 3,
		Clock:             clock,
	})

	ip := "192.168.1.1"
	for i := 0; i < 3; i++ {
		limiter.RecordLoginFailure("user"+string(rune('a'+i))+"@example.com", ip)
	}

	result := limiter.CheckLogin("other@example.com", ip)
	if result.Allowed {
		t.Fatal("request over the IP limit should be blocked")
	}
	if result.Reason != "ip_hourly_limit" {
		t.Errorf("Expected reason 'ip_hourly_limit', got '%s'", result.Reason)
	}

	if result := limiter.CheckLogin("other@example.com", "192.168.1.2"); !result.Allowed {
		t.Fatal("another IP should be allowed")
	}

	clock.Advance(time.Hour)
	if result := limiter.CheckLogin("other@example.com", ip); !result.Allowed {
		t.Fatal("IP limit should expire after an hour")
	}
}

func TestCheckSignup_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{SignupMaxIPPerHour: 2, Clock: clock})

	ip := "203.0.113.9"
	for i := 0; i < 2; i++ {
		if result := limiter.CheckSignup(ip); !result.Allowed {
			t.Fatalf("sign-up %d should be allowed", i+1)
		}
		limiter.RecordSignup(ip)
	}

	if result := limiter.CheckSignup(ip); result.Allowed {
		t.Fatal("third sign-up within the hour should be blocked")
	}
}

func TestGetClientIP_TrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "TrustProxy=true, XFF rightmost public IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50", // Rightmost non-private
		},
		{
			name:       "TrustProxy=true, XFF all private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1", // Last one when all private
		},
		{
			name:       "TrustProxy=true, X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "TrustProxy=false, ignores XFF",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100", // Uses RemoteAddr, ignores spoofed XFF
		},
		{
			name:       "TrustProxy=false, ignores X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
		{
			name:       "No headers, RemoteAddr only",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: true,
			expected:   "192.168.1.100",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			got := GetClientIP(r, tt.trustProxy)
			if got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetClientIP_SpoofingPrevention(t *testing.T) {
	// Attacker sends fake X-Forwarded-For header
	r, _ := http.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4") // Attacker-supplied
	r.RemoteAddr = "192.168.1.100:54321"       // Real connection

	// With TrustProxy=false, the fake header is ignored
	got := GetClientIP(r, false)
	if got != "192.168.1.100" {
		t.Errorf("Should ignore X-Forwarded-For when TrustProxy=false, got %q", got)
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"JOHN.DOE@EXAMPLE.COM", "jo***@example.com"}, // Normalized to lowercase
		{"ab@example.com", "***@example.com"},
		{"a@example.com", "***@example.com"},
		{"not-an-email", "***"},
		{"", "***"},
		{"  User@Example.Com  ", "us***@example.com"}, // Trimmed and lowercased
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeIdentifier(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	limiter := New(nil)

	if limiter == nil {
		t.Fatal("New(nil) should return a valid limiter")
	}
	if limiter.config.LoginMaxAttempts != 5 {
		t.Error("New(nil) should use default config")
	}
}

func TestNew_ZeroFieldsUseDefaults(t *testing.T) {
	limiter := New(&Config{LoginMaxAttempts: 2})

	if limiter.config.LoginMaxAttempts != 2 {
		t.Errorf("LoginMaxAttempts = %d, want 2", limiter.config.LoginMaxAttempts)
	}
	if limiter.config.LoginLockout != 15*time.Minute {
		t.Errorf("LoginLockout = %v, want 15m", limiter.config.LoginLockout)
	}
	if limiter.config.SignupMaxIPPerHour != 10 {
		t.Errorf("SignupMaxIPPerHour = %d, want 10", limiter.config.SignupMaxIPPerHour)
	}
}

func TestPrune(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{Clock: clock})

	limiter.RecordLoginFailure("ana@example.com", "192.168.1.1")
	limiter.RecordSignup("192.168.1.1")

	if removed := limiter.Prune(); removed != 0 {
		t.Fatalf("fresh entries should survive, removed %d", removed)
	}

	clock.Advance(2 * time.Hour)
	if removed := limiter.Prune(); removed != 3 {
		t.Fatalf("expected 3 stale entries removed, got %d", removed)
	}
}

func TestConcurrentAccess(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		LoginMaxAttempts:   1000,
		LoginMaxIPPerHour:  1000,
		SignupMaxIPPerHour: 1000,
		Clock:              clock,
	})

	var wg sync.WaitGroup
	numGoroutines := 50
	numOps := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				if limiter.CheckLogin("user@example.com", "192.168.1.1").Allowed {
					limiter.RecordLoginFailure("user@example.com", "192.168.1.1")
				}
				if limiter.CheckSignup("192.168.1.2").Allowed {
					limiter.RecordSignup("192.168.1.2")
				}
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				limiter.ResetLogin("user@example.com")
				limiter.Prune()
			}
		}()
	}

	wg.Wait()
	// If we get here without race detector complaints, test passes
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		// IPv4 private ranges
		{"10.0.0.1", true},
		{"10.255.255.255", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"192.168.1.1", true},
		{"192.168.255.255", true},
		{"127.0.0.1", true},
		// IPv6 private/reserved
		{"::1", true},
		{"fc00::1", true},
		{"fe80::1", true}, // Link-local
		// IPv4-mapped IPv6 addresses (must match their IPv4 equivalents)
		{"::ffff:10.0.0.1", true},
		{"::ffff:192.168.1.1", true},
		{"::ffff:172.16.0.1", true},
		{"::ffff:127.0.0.1", true},
		{"::ffff:8.8.8.8", false},   // Public IP in IPv4-mapped format
		{"::ffff:1.1.1.1", false},   // Public IP in IPv4-mapped format
		// Public IPs
		{"203.0.113.50", false},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
		{"2001:4860:4860::8888", false}, // Google DNS IPv6
		// Invalid
		{"invalid", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			got := isPrivateIP(tt.ip)
			if got != tt.expected {
				t.Errorf("isPrivateIP(%q) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}
