package models

import "time"

// Send modes recorded in delivery reports.
const (
	ModeEach       = "each"
	ModeMulticast  = "multicast"
	ModeCallNotify = "call_notify"
	ModeCallCancel = "call_cancel"
)

// Report statuses.
const (
	StatusDelivered = "delivered"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// DeliveryReport summarizes one send request for the delivery log and the
// report exchange. Tokens inside Details are already redacted.
type DeliveryReport struct {
	RequestID  string           `json:"request_id"`
	Endpoint   string           `json:"endpoint"`
	Mode       string           `json:"mode"`
	Provider   string           `json:"provider"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Details    []DeliveryResult `json:"details"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewDeliveryReport builds a report from aggregated results.
func NewDeliveryReport(requestID, endpoint, mode, provider string, results SendResults) *DeliveryReport {
	return &DeliveryReport{
		RequestID:  requestID,
		Endpoint:   endpoint,
		Mode:       mode,
		Provider:   provider,
		Successful: results.Successful,
		Failed:     results.Failed,
		Details:    results.Details,
		CreatedAt:  time.Now().UTC(),
	}
}

// Status condenses the counts into delivered, partial or failed.
func (r *DeliveryReport) Status() string {
	switch {
	case r.Failed == 0:
		return StatusDelivered
	case r.Successful == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}
