package services

import (
	"fmt"
	"time"

	"firebase.google.com/go/v4/messaging"

	"github.com/CyberwizD/push-relay/internal/models"
)

const (
	defaultSound     = "default"
	callChannelID    = "calls_channel"
	callIcon         = "@mipmap/ic_launcher"
	callColor        = "#FF4081"
	callCategory     = "INCOMING_CALL"
	androidPriority  = "high"
	apnsPriorityNow  = "10"
	apnsPriorityWake = "5"
)

// Data payload type markers for call signaling.
const (
	TypeIncomingCall  = "incoming_call"
	TypeCallCancelled = "call_cancelled"
)

// BuildStandardMessage shapes a title/body notification for a single token.
func BuildStandardMessage(token string, req *models.NotificationRequest) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: req.Title,
			Body:  req.Body,
		},
		Data:    req.DataStrings(),
		Android: standardAndroidConfig(),
		APNS:    standardAPNSConfig(req.Badge),
	}
}

// BuildMulticastMessage shapes the same notification for many tokens.
func BuildMulticastMessage(req *models.NotificationRequest) *messaging.MulticastMessage {
	tokens := make([]string, len(req.Tokens))
	copy(tokens, req.Tokens)
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: req.Title,
			Body:  req.Body,
		},
		Data:    req.DataStrings(),
		Android: standardAndroidConfig(),
		APNS:    standardAPNSConfig(req.Badge),
	}
}

func standardAndroidConfig() *messaging.AndroidConfig {
	return &messaging.AndroidConfig{
		Priority: androidPriority,
		Notification: &messaging.AndroidNotification{
			Sound: defaultSound,
		},
	}
}

func standardAPNSConfig(badge *int) *messaging.APNSConfig {
	aps := &messaging.Aps{Sound: defaultSound}
	if badge != nil {
		b := *badge
		aps.Badge = &b
	}
	return &messaging.APNSConfig{
		Headers: map[string]string{"apns-priority": apnsPriorityNow},
		Payload: &messaging.APNSPayload{Aps: aps},
	}
}

// CallPayload returns the data payload of an incoming-call alert.
func CallPayload(req *models.CallNotificationRequest, now time.Time) map[string]string {
	return map[string]string{
		"type":         TypeIncomingCall,
		"caller_id":    req.CallerID,
		"caller_name":  req.CallerName,
		"call_type":    req.CallType,
		"channel_name": req.ChannelName,
		"call_id":      req.CallID,
		"timestamp":    now.UTC().Format(time.RFC3339Nano),
	}
}

// BuildCallMessage shapes a high-priority, wake-capable incoming-call alert.
func BuildCallMessage(req *models.CallNotificationRequest, data map[string]string) *messaging.Message {
	title := fmt.Sprintf("Incoming %s call", req.CallType)
	body := fmt.Sprintf("%s is calling you", req.CallerName)

	return &messaging.Message{
		Token: req.TargetToken,
		Data:  data,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority:     androidPriority,
			DirectBootOK: true,
			Notification: &messaging.AndroidNotification{
				Title:     title,
				Body:      body,
				Icon:      callIcon,
				Color:     callColor,
				Sound:     defaultSound,
				ChannelID: callChannelID,
				Priority:  messaging.PriorityHigh,
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": apnsPriorityNow},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound:            defaultSound,
					Category:         callCategory,
					ContentAvailable: true,
					MutableContent:   true,
				},
			},
		},
	}
}

// BuildCancelMessage shapes a data-only message withdrawing a call alert.
func BuildCancelMessage(req *models.CancelCallRequest, now time.Time) *messaging.Message {
	return &messaging.Message{
		Token: req.TargetToken,
		Data: map[string]string{
			"type":      TypeCallCancelled,
			"call_id":   req.CallID,
			"timestamp": now.UTC().Format(time.RFC3339Nano),
		},
		Android: &messaging.AndroidConfig{
			Priority: androidPriority,
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  apnsPriorityWake,
				"apns-push-type": "background",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{ContentAvailable: true},
			},
		},
	}
}
