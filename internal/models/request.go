package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxMulticastTokens is the FCM limit for a single multicast call.
const MaxMulticastTokens = 500

// Supported call types for call alerts.
const (
	CallTypeVideo = "video"
	CallTypeVoice = "voice"
)

// NotificationRequest is the body of the standard and batch send endpoints.
// Token is accepted as a single-recipient alias for Tokens.
type NotificationRequest struct {
	Token  string                 `json:"token,omitempty"`
	Tokens []string               `json:"tokens" binding:"required,min=1,dive,required"`
	Title  string                 `json:"title" binding:"required"`
	Body   string                 `json:"body" binding:"required"`
	Data   map[string]interface{} `json:"data"`
	Badge  *int                   `json:"badge,omitempty" binding:"omitempty,min=0"`
}

// Normalize folds the single-token alias into Tokens, trims tokens and
// defaults Data. It runs before validation.
func (r *NotificationRequest) Normalize() {
	if len(r.Tokens) == 0 && r.Token != "" {
		r.Tokens = []string{r.Token}
	}
	for i, token := range r.Tokens {
		r.Tokens[i] = strings.TrimSpace(token)
	}
	if r.Data == nil {
		r.Data = map[string]interface{}{}
	}
}

// DataStrings returns the custom data as the string map FCM requires.
func (r *NotificationRequest) DataStrings() map[string]string {
	return toStringMap(r.Data)
}

// CallNotificationRequest is the body of the incoming-call alert endpoint.
type CallNotificationRequest struct {
	TargetToken string `json:"target_token" binding:"required"`
	CallerID    string `json:"caller_id" binding:"required"`
	CallerName  string `json:"caller_name" binding:"required"`
	CallType    string `json:"call_type" binding:"required,oneof=video voice"`
	ChannelName string `json:"channel_name" binding:"required"`
	CallID      string `json:"call_id,omitempty"`
}

// Normalize lowercases the call type and defaults CallID to the channel name.
func (r *CallNotificationRequest) Normalize() {
	r.CallType = strings.ToLower(strings.TrimSpace(r.CallType))
	if r.CallID == "" {
		r.CallID = r.ChannelName
	}
}

// CancelCallRequest is the body of the call cancellation endpoint.
type CancelCallRequest struct {
	TargetToken string `json:"target_token" binding:"required"`
	CallID      string `json:"call_id,omitempty"`
}

func (r *CancelCallRequest) Normalize() {}

// toStringMap keeps strings as sent and encodes every other value as JSON.
func toStringMap(vars map[string]interface{}) map[string]string {
	result := make(map[string]string, len(vars))
	for k, v := range vars {
		switch val := v.(type) {
		case string:
			result[k] = val
		case nil:
			result[k] = ""
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				result[k] = fmt.Sprint(val)
				continue
			}
			result[k] = string(encoded)
		}
	}
	return result
}
