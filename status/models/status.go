package models

import "time"

// StatusType distinguishes text-card updates from image updates.
type StatusType string

const (
	StatusText  StatusType = "text"
	StatusImage StatusType = "image"
)

// StatusUpdate is a single ephemeral story entry.
type StatusUpdate struct {
	ID      string     `json:"id"`
	Type    StatusType `json:"type"`
	Content string     `json:"content"`
	// BackgroundColor applies to text updates only.
	BackgroundColor string    `json:"background_color,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	Viewed          bool      `json:"viewed,omitempty"`
	// DurationMillis is how long the viewer shows this update.
	DurationMillis int `json:"duration_millis,omitempty"`
}

// ContactStatus groups a contact's updates for the status tray.
type ContactStatus struct {
	ContactID        string         `json:"contact_id"`
	ContactName      string         `json:"contact_name"`
	ContactAvatarURL string         `json:"contact_avatar_url"`
	Updates          []StatusUpdate `json:"updates"`
}
