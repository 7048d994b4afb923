package models

// ResponseEnvelope is the canonical response shape of the relay.
type ResponseEnvelope struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Error     string       `json:"error,omitempty"`
	MessageID string       `json:"message_id,omitempty"`
	Results   *SendResults `json:"results,omitempty"`
	Data      interface{}  `json:"data,omitempty"`
}

// DeliveryResult is the outcome of one token's delivery. MessageID and Error
// serialize as null when absent.
type DeliveryResult struct {
	Token     string  `json:"token"`
	Success   bool    `json:"success"`
	MessageID *string `json:"message_id"`
	Error     *string `json:"error"`
}

// Delivered builds a successful result for token.
func Delivered(token, messageID string) DeliveryResult {
	return DeliveryResult{
		Token:     RedactToken(token),
		Success:   true,
		MessageID: &messageID,
	}
}

// Undelivered builds a failed result for token.
func Undelivered(token, errMsg string) DeliveryResult {
	return DeliveryResult{
		Token:   RedactToken(token),
		Success: false,
		Error:   &errMsg,
	}
}

// SendResults aggregates per-token outcomes in input order.
type SendResults struct {
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Details    []DeliveryResult `json:"details"`
}

// NewSendResults counts successes and failures over details.
func NewSendResults(details []DeliveryResult) SendResults {
	res := SendResults{Details: details}
	if res.Details == nil {
		res.Details = []DeliveryResult{}
	}
	for _, d := range res.Details {
		if d.Success {
			res.Successful++
		} else {
			res.Failed++
		}
	}
	return res
}

const redactedPrefixLen = 10

// RedactToken keeps the first ten characters of a device token for logs and responses.
func RedactToken(token string) string {
	if r := []rune(token); len(r) > redactedPrefixLen {
		token = string(r[:redactedPrefixLen])
	}
	return token + "..."
}
