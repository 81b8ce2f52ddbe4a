package util

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ariebrainware/hospital-booking/model"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// AuditEventType represents different types of audit events
type AuditEventType string

const (
	EventLoginSuccess       AuditEventType = "LOGIN_SUCCESS"
	EventLoginFailure       AuditEventType = "LOGIN_FAILURE"
	EventLogout             AuditEventType = "LOGOUT"
	EventUnauthorizedAccess AuditEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  AuditEventType = "RATE_LIMIT_EXCEEDED"
	EventPatientCreated     AuditEventType = "PATIENT_CREATED"
	EventAppointmentBooked  AuditEventType = "APPOINTMENT_BOOKED"
	EventAppointmentDeleted AuditEventType = "APPOINTMENT_DELETED"
	EventNotificationFailed AuditEventType = "NOTIFICATION_FAILED"
	EventEndpointCall       AuditEventType = "ENDPOINT_CALL"
)

// AuditEvent represents an audit event to be logged
type AuditEvent struct {
	EventType AuditEventType
	Actor     string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
	// LogOnly events go to the audit log stream but never to the sink.
	// Anonymous callers must not be able to add rows to the store.
	LogOnly bool
}

// AuditSink persists audit entries. Both record store backends implement it.
type AuditSink interface {
	RecordAudit(ctx context.Context, entry *model.AuditLog) error
}

var (
	auditMu     sync.RWMutex
	auditLogger zerolog.Logger
	auditSink   AuditSink
)

func init() {
	auditLogger = zerolog.New(os.Stdout).With().Timestamp().Str("channel", "audit").Logger()
}

// SetAuditSink sets the store used to persist audit events.
// Call this during application startup after the record store is initialized.
func SetAuditSink(sink AuditSink) {
	auditMu.Lock()
	defer auditMu.Unlock()
	auditSink = sink
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

func formatLocation(loc IPLocation) string {
	switch {
	case loc.City != "" && loc.Country != "":
		return fmt.Sprintf("%s/%s", loc.City, loc.Country)
	case loc.Country != "":
		return loc.Country
	default:
		return loc.City
	}
}

// LogAuditEvent logs an audit event and persists it best-effort.
func LogAuditEvent(event AuditEvent) {
	auditMu.RLock()
	logger := auditLogger
	sink := auditSink
	auditMu.RUnlock()

	logEvent := logger.Info().
		Str("event", sanitizeLogValue(string(event.EventType))).
		Str("actor", sanitizeLogValue(event.Actor)).
		Str("ip", sanitizeLogValue(event.IP)).
		Str("user_agent", sanitizeLogValue(event.UserAgent))
	if len(event.Details) > 0 {
		// details are persisted, not logged
		logEvent = logEvent.Int("details_count", len(event.Details))
	}
	logEvent.Msg(sanitizeLogValue(event.Message))

	if sink == nil || event.LogOnly {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}

	entry := model.AuditLog{
		EventType: string(event.EventType),
		Actor:     sanitizeLogValue(event.Actor),
		IP:        sanitizeLogValue(event.IP),
		Location:  sanitizeLogValue(formatLocation(GetIPLocation(event.IP))),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Action:    sanitizeLogValue(event.Message),
		Details:   details,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sink.RecordAudit(ctx, &entry); err != nil {
		logger.Warn().Err(err).Msg("failed to persist audit event")
	}
}

// LogLoginSuccess logs a successful login event
func LogLoginSuccess(actor, ip, userAgent string) {
	LogAuditEvent(AuditEvent{
		EventType: EventLoginSuccess,
		Actor:     actor,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "Admin logged in successfully",
	})
}

// LogLoginFailure logs a failed login attempt
func LogLoginFailure(actor, ip, userAgent, reason string) {
	LogAuditEvent(AuditEvent{
		EventType: EventLoginFailure,
		Actor:     actor,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", reason),
		LogOnly:   true,
	})
}

// LogLogout logs a logout event
func LogLogout(actor, ip, userAgent string) {
	LogAuditEvent(AuditEvent{
		EventType: EventLogout,
		Actor:     actor,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "Admin logged out",
	})
}

// LogUnauthorizedAccess logs unauthorized access attempts
func LogUnauthorizedAccess(ip, resource string) {
	LogAuditEvent(AuditEvent{
		EventType: EventUnauthorizedAccess,
		IP:        ip,
		Message:   fmt.Sprintf("Unauthorized access to %s", resource),
		LogOnly:   true,
	})
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(ip, endpoint string) {
	LogAuditEvent(AuditEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
		LogOnly:   true,
	})
}

func currentAuditLogger() zerolog.Logger {
	auditMu.RLock()
	defer auditMu.RUnlock()
	return auditLogger
}

// GetAuditLoggerForTest returns the current audit logger for testing purposes
func GetAuditLoggerForTest() zerolog.Logger {
	return currentAuditLogger()
}

// SetAuditLoggerForTest sets a custom logger for testing purposes
func SetAuditLoggerForTest(logger zerolog.Logger) {
	auditMu.Lock()
	defer auditMu.Unlock()
	auditLogger = logger
}
