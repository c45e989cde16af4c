package util

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/veterinary-salons/backend/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventSignupSuccess      SecurityEventType = "SIGNUP_SUCCESS"
	EventLogout             SecurityEventType = "LOGOUT"
	EventAccountLocked      SecurityEventType = "ACCOUNT_LOCKED"
	EventEmailVerified      SecurityEventType = "EMAIL_VERIFIED"
	EventRecoveryRequested  SecurityEventType = "RECOVERY_REQUESTED"
	EventPasswordChanged    SecurityEventType = "PASSWORD_CHANGED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventSuspiciousActivity SecurityEventType = "SUSPICIOUS_ACTIVITY"
	EventEndpointCall       SecurityEventType = "ENDPOINT_CALL"
)

// SecurityEvent represents a security event to be logged
type SecurityEvent struct {
	EventType SecurityEventType
	UserID    string
	Email     string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

var (
	securityLogger = log.New(os.Stdout, "[SECURITY] ", log.LstdFlags|log.Lmsgprefix)
	securityMu     sync.RWMutex
	securityDB     *gorm.DB
)

// SetSecurityLoggerDB sets the gorm DB the security events are persisted to.
// Pass nil to stop persisting.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityMu.Lock()
	defer securityMu.Unlock()
	securityDB = db
}

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

// LogSecurityEvent writes the event to the security log and persists it
// best-effort when a DB has been set.
func LogSecurityEvent(event SecurityEvent) {
	msg := fmt.Sprintf("Event=%s UserID=%s Email=%s IP=%s UserAgent=%s Message=%s",
		sanitizeLogValue(string(event.EventType)),
		sanitizeLogValue(event.UserID),
		sanitizeLogValue(event.Email),
		sanitizeLogValue(event.IP),
		sanitizeLogValue(event.UserAgent),
		sanitizeLogValue(event.Message),
	)
	if len(event.Details) > 0 {
		// details go to the DB only
		msg = fmt.Sprintf("%s DetailsCount=%d", msg, len(event.Details))
	}
	securityLogger.Println(msg)

	securityMu.RLock()
	db := securityDB
	securityMu.RUnlock()
	if db == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}
	entry := model.SecurityLog{
		EventType: string(event.EventType),
		UserID:    sanitizeLogValue(event.UserID),
		Email:     sanitizeLogValue(event.Email),
		IP:        sanitizeLogValue(event.IP),
		Location:  sanitizeLogValue(GetIPLocation(event.IP).String()),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Message:   sanitizeLogValue(event.Message),
		Details:   details,
	}
	if err := db.Create(&entry).Error; err != nil {
		securityLogger.Printf("Failed to persist security event: %v", err)
	}
}

func userIDString(userID uint) string {
	if userID == 0 {
		return ""
	}
	return fmt.Sprintf("%d", userID)
}

// LogLoginSuccess logs a successful login event
func LogLoginSuccess(userID uint, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    userIDString(userID),
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged in successfully",
	})
}

// LogLoginFailure logs a failed login attempt
func LogLoginFailure(email, ip, userAgent, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", reason),
	})
}

// LogSignup logs a new account.
func LogSignup(userID uint, email, profileType, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventSignupSuccess,
		UserID:    userIDString(userID),
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("New %s account", profileType),
	})
}

// LogLogout logs a logout event
func LogLogout(userID uint, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLogout,
		UserID:    userIDString(userID),
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged out",
	})
}

// LogAccountLocked logs when an account is locked
func LogAccountLocked(userID uint, email, ip string, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventAccountLocked,
		UserID:    userIDString(userID),
		Email:     email,
		IP:        ip,
		Message:   fmt.Sprintf("Account locked: %s", reason),
	})
}

// LogEmailVerified logs a confirmed email address.
func LogEmailVerified(userID uint, email, ip string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventEmailVerified,
		UserID:    userIDString(userID),
		Email:     email,
		IP:        ip,
		Message:   "Email address confirmed",
	})
}

// LogRecoveryRequested logs a password recovery request.
func LogRecoveryRequested(userID uint, email, ip string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRecoveryRequested,
		UserID:    userIDString(userID),
		Email:     email,
		IP:        ip,
		Message:   "Password recovery code sent",
	})
}

// LogPasswordChanged logs a password reset; all sessions were revoked.
func LogPasswordChanged(userID uint, email, ip string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventPasswordChanged,
		UserID:    userIDString(userID),
		Email:     email,
		IP:        ip,
		Message:   "Password changed through recovery, sessions revoked",
	})
}

// LogUnauthorizedAccess logs unauthorized access attempts
func LogUnauthorizedAccess(userID string, email, ip, resource, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventUnauthorizedAccess,
		UserID:    userID,
		Email:     email,
		IP:        ip,
		Message:   fmt.Sprintf("Unauthorized access to %s: %s", resource, reason),
	})
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(email, ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		Email:     email,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}

// GetSecurityLoggerForTest returns the current security logger for testing purposes
func GetSecurityLoggerForTest() *log.Logger {
	return securityLogger
}

// SetSecurityLoggerForTest sets a custom logger for testing purposes
func SetSecurityLoggerForTest(logger *log.Logger) {
	securityLogger = logger
}
