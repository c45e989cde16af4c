package util

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veterinary-salons/backend/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestLogger creates a test logger that captures output and returns it for assertions
// along with a cleanup function to restore the original logger
func setupTestLogger() (*bytes.Buffer, func()) {
	buf := &bytes.Buffer{}
	originalLogger := securityLogger
	securityLogger = log.New(buf, "[SECURITY] ", log.LstdFlags|log.Lmsgprefix)
	cleanup := func() {
		securityLogger = originalLogger
	}
	return buf, cleanup
}

// assertLogContains checks if the log output contains all expected substrings
func assertLogContains(t *testing.T, output string, expected []string) {
	for _, expectedSubstr := range expected {
		if !strings.Contains(output, expectedSubstr) {
			t.Errorf("Log output missing expected substring %q\nGot: %s", expectedSubstr, output)
		}
	}
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes newlines",
			input:    "hello\nworld",
			expected: "hello world",
		},
		{
			name:     "removes carriage returns",
			input:    "hello\rworld",
			expected: "hello world",
		},
		{
			name:     "removes tabs",
			input:    "hello\tworld",
			expected: "hello world",
		},
		{
			name:     "truncates long values",
			input:    strings.Repeat("a", 250),
			expected: strings.Repeat("a", 200) + "...",
		},
		{
			name:     "handles normal strings",
			input:    "normal string",
			expected: "normal string",
		},
		{
			name:     "handles empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "combines multiple issues",
			input:    "line1\nline2\rline3\ttab",
			expected: "line1 line2 line3 tab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeLogValue(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeLogValue() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestLogSecurityEventBasic(t *testing.T) {
	buf, cleanup := setupTestLogger()
	defer cleanup()

	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    "123",
		Email:     "user@example.com",
		IP:        "192.168.1.1",
		UserAgent: "Mozilla/5.0",
		Message:   "Login successful",
	})

	assertLogContains(t, buf.String(), []string{
		"Event=LOGIN_SUCCESS",
		"UserID=123",
		"Email=user@example.com",
		"IP=192.168.1.1",
		"UserAgent=Mozilla/5.0",
		"Message=Login successful",
	})
}

func TestLogSecurityEventSanitization(t *testing.T) {
	buf, cleanup := setupTestLogger()
	defer cleanup()

	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		UserID:    "456",
		Email:     "user@example.com",
		IP:        "192.168.1.2",
		UserAgent: "Chrome",
		Message:   "Failed\nlogin\rattempt",
	})

	assertLogContains(t, buf.String(), []string{
		"Event=LOGIN_FAILURE",
		"Message=Failed login attempt",
	})
}

func TestLogSecurityEventWithDetails(t *testing.T) {
	buf, cleanup := setupTestLogger()
	defer cleanup()

	LogSecurityEvent(SecurityEvent{
		EventType: EventSuspiciousActivity,
		UserID:    "789",
		Email:     "suspicious@example.com",
		IP:        "10.0.0.1",
		UserAgent: "Bot",
		Message:   "Suspicious activity detected",
		Details: map[string]interface{}{
			"reason": "multiple IPs",
			"count":  5,
		},
	})

	assertLogContains(t, buf.String(), []string{
		"Event=SUSPICIOUS_ACTIVITY",
		"DetailsCount=2",
	})
}

func TestLogSecurityEventEmptyFields(t *testing.T) {
	buf, cleanup := setupTestLogger()
	defer cleanup()

	LogSecurityEvent(SecurityEvent{
		EventType: EventUnauthorizedAccess,
		UserID:    "",
		Email:     "",
		IP:        "10.0.0.2",
		UserAgent: "",
		Message:   "Access denied",
	})

	assertLogContains(t, buf.String(), []string{
		"Event=UNAUTHORIZED_ACCESS",
		"Message=Access denied",
	})
}

func TestLoginLogging(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func()
		contains []string
	}{
		{
			name:    "LogLoginSuccess",
			logFunc: func() { LogLoginSuccess(123, "user@example.com", "192.168.1.1", "Mozilla/5.0") },
			contains: []string{
				"Event=LOGIN_SUCCESS",
				"UserID=123",
				"Email=user@example.com",
				"UserAgent=Mozilla/5.0",
				"Message=User logged in successfully",
			},
		},
		{
			name:    "LogLoginFailure",
			logFunc: func() { LogLoginFailure("user@example.com", "192.168.1.1", "Mozilla/5.0", "invalid password") },
			contains: []string{
				"Event=LOGIN_FAILURE",
				"Email=user@example.com",
				"Message=Login failed: invalid password",
			},
		},
		{
			name:     "LogLogout",
			logFunc:  func() { LogLogout(456, "user@example.com", "192.168.1.2", "Chrome") },
			contains: []string{"Event=LOGOUT", "UserID=456", "Message=User logged out"},
		},
		{
			name:     "LogSignup",
			logFunc:  func() { LogSignup(7, "groomer@example.com", "supplier", "192.168.1.2", "Chrome") },
			contains: []string{"Event=SIGNUP_SUCCESS", "UserID=7", "Message=New supplier account"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, cleanup := setupTestLogger()
			defer cleanup()

			tt.logFunc()
			assertLogContains(t, buf.String(), tt.contains)
		})
	}
}

func TestAccountAndAccessLogging(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func()
		contains []string
	}{
		{
			name:    "LogAccountLocked",
			logFunc: func() { LogAccountLocked(789, "locked@example.com", "192.168.1.3", "too many failed attempts") },
			contains: []string{
				"Event=ACCOUNT_LOCKED",
				"UserID=789",
				"Message=Account locked: too many failed attempts",
			},
		},
		{
			name:     "LogEmailVerified",
			logFunc:  func() { LogEmailVerified(5, "owner@example.com", "192.168.1.3") },
			contains: []string{"Event=EMAIL_VERIFIED", "UserID=5"},
		},
		{
			name:     "LogRecoveryRequested",
			logFunc:  func() { LogRecoveryRequested(5, "owner@example.com", "192.168.1.3") },
			contains: []string{"Event=RECOVERY_REQUESTED", "Message=Password recovery code sent"},
		},
		{
			name:     "LogPasswordChanged",
			logFunc:  func() { LogPasswordChanged(5, "owner@example.com", "192.168.1.3") },
			contains: []string{"Event=PASSWORD_CHANGED", "sessions revoked"},
		},
		{
			name: "LogUnauthorizedAccess",
			logFunc: func() {
				LogUnauthorizedAccess("101", "user@example.com", "192.168.1.4", "/api/v1/customers/2/pets", "not the owner")
			},
			contains: []string{
				"Event=UNAUTHORIZED_ACCESS",
				"UserID=101",
				"Message=Unauthorized access to /api/v1/customers/2/pets: not the owner",
			},
		},
		{
			name:    "LogRateLimitExceeded",
			logFunc: func() { LogRateLimitExceeded("user@example.com", "192.168.1.5", "/api/v1/auth/signin") },
			contains: []string{
				"Event=RATE_LIMIT_EXCEEDED",
				"Message=Rate limit exceeded for endpoint: /api/v1/auth/signin",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, cleanup := setupTestLogger()
			defer cleanup()

			tt.logFunc()
			assertLogContains(t, buf.String(), tt.contains)
		})
	}
}

func TestLogSecurityEvent_PersistsToDB(t *testing.T) {
	_, cleanup := setupTestLogger()
	defer cleanup()

	dsn := fmt.Sprintf("file:testdb_seclog_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.SecurityLog{}))

	SetSecurityLoggerDB(db)
	defer SetSecurityLoggerDB(nil)

	LogSecurityEvent(SecurityEvent{
		EventType: EventSuspiciousActivity,
		UserID:    "9",
		Email:     "a@example.com",
		IP:        "10.0.0.1",
		Message:   "line1\nline2",
		Details:   map[string]interface{}{"attempts": 3},
	})

	var stored model.SecurityLog
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, string(EventSuspiciousActivity), stored.EventType)
	assert.Equal(t, "line1 line2", stored.Message)
	assert.Empty(t, stored.Location, "private addresses are not resolved")
	assert.JSONEq(t, `{"attempts":3}`, string(stored.Details))
}
