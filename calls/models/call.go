package models

import "time"

// CallType distinguishes voice from video calls.
type CallType string

const (
	CallVoice CallType = "voice"
	CallVideo CallType = "video"
)

// CallDirection records who initiated the call.
type CallDirection string

const (
	CallIncoming CallDirection = "incoming"
	CallOutgoing CallDirection = "outgoing"
)

// CallStatus is the terminal outcome of a call.
type CallStatus string

const (
	CallAnswered CallStatus = "answered"
	CallMissed   CallStatus = "missed"
	CallDeclined CallStatus = "declined"
)

// Call is one entry in the call history, newest first.
type Call struct {
	ID               string        `json:"id"`
	ContactID        string        `json:"contact_id"`
	ContactName      string        `json:"contact_name"`
	ContactAvatarURL string        `json:"contact_avatar_url"`
	Type             CallType      `json:"type"`
	Direction        CallDirection `json:"direction"`
	Status           CallStatus    `json:"status"`
	Timestamp        time.Time     `json:"timestamp"`
	// DurationSeconds is zero for missed and declined calls.
	DurationSeconds int `json:"duration_seconds,omitempty"`
}
