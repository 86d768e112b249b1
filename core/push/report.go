package push

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Report summarizes one delivery attempt.
type Report struct {
	Endpoint   string
	StatusCode int
	Success    bool
	Expired    bool
	Reason     string
	// Payload is the request body that was sent.
	Payload []byte
	// RetryAfter is the push service's Retry-After hint, zero when absent.
	RetryAfter time.Duration
	// Cause is the transport error when no response was received.
	Cause error
}

// NewReport derives a report from a status code: success is 2xx, expired is 404 or 410.
func NewReport(endpoint string, status int, reason string) *Report {
	r := &Report{
		Endpoint:   endpoint,
		StatusCode: status,
		Success:    status >= 200 && status < 300,
		Expired:    status == http.StatusNotFound || status == http.StatusGone,
		Reason:     reason,
	}
	if r.Reason == "" {
		r.Reason = statusReason(status)
	}
	return r
}

// NewFailureReport records an attempt that produced no response.
func NewFailureReport(endpoint string, err error) *Report {
	r := &Report{Endpoint: endpoint, Cause: err}
	if err != nil {
		r.Reason = err.Error()
	}
	return r
}

// Err returns nil for a successful attempt, otherwise ErrSubscriptionExpired
// or ErrTransportFailure with the reason attached.
func (r *Report) Err() error {
	switch {
	case r.Success:
		return nil
	case r.Expired:
		return ErrSubscriptionExpired.WithMetadata(r.metadata())
	case r.Cause != nil:
		return ErrTransportFailure.WithMetadata(r.metadata()).WithCause(r.Cause)
	default:
		return ErrTransportFailure.WithMetadata(r.metadata())
	}
}

func (r *Report) metadata() map[string]string {
	md := map[string]string{"endpoint": r.Endpoint, "reason": r.Reason}
	if r.StatusCode != 0 {
		md["status"] = fmt.Sprint(r.StatusCode)
	}
	return md
}

type reportJSON struct {
	Success  bool   `json:"success"`
	Expired  bool   `json:"expired"`
	Reason   string `json:"reason"`
	Endpoint string `json:"endpoint"`
	Payload  []byte `json:"payload"`
}

// MarshalJSON emits {success, expired, reason, endpoint, payload}.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		Success:  r.Success,
		Expired:  r.Expired,
		Reason:   r.Reason,
		Endpoint: r.Endpoint,
		Payload:  r.Payload,
	})
}

func statusReason(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("%d %s", status, text)
	}
	return fmt.Sprint(status)
}
