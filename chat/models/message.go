package models

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Status tracks delivery progress of a user-authored message.
// It only ever advances: sending -> sent -> delivered -> read.
type Status string

const (
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// statusRank orders statuses so advances can be checked for monotonicity.
var statusRank = map[Status]int{
	StatusSending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// Before reports whether s comes strictly before other in the delivery
// progression. Unknown statuses never advance.
func (s Status) Before(other Status) bool {
	sr, ok1 := statusRank[s]
	or, ok2 := statusRank[other]
	return ok1 && ok2 && sr < or
}

// SuggestionType distinguishes quick replies from action shortcuts.
type SuggestionType string

const (
	SuggestionMessage SuggestionType = "message"
	SuggestionAction  SuggestionType = "action"
)

// ActionClearChat is the reserved action payload that clears the active chat.
const ActionClearChat = "ACTION_CLEAR_CHAT"

// Suggestion is a quick-reply affordance attached to an AI message.
type Suggestion struct {
	Label   string         `json:"label"`
	Type    SuggestionType `json:"type"`
	Payload string         `json:"payload"`
}

// GroundingSource is a citation returned by the responder.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ReplyRef is a shallow snapshot of a quoted message taken at quote
// time. It is intentionally denormalized: editing or deleting the
// original later does not change it.
type ReplyRef struct {
	ID       string `json:"id"`
	Sender   Sender `json:"sender"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	HasAudio bool   `json:"has_audio,omitempty"`
}

// Message is a single entry in a chat's message sequence.
type Message struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Sender     Sender    `json:"sender"`
	SenderID   string    `json:"sender_id,omitempty"`
	SenderName string    `json:"sender_name,omitempty"`

	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	// AudioData holds base64 encoded audio, either a recorded voice
	// message or cached TTS output.
	AudioData string  `json:"audio_data,omitempty"`
	Duration  float64 `json:"duration,omitempty"`

	Status             Status            `json:"status,omitempty"`
	Suggestions        []Suggestion      `json:"suggestions,omitempty"`
	GroundingSources   []GroundingSource `json:"grounding_sources,omitempty"`
	ReplyTo            *ReplyRef         `json:"reply_to,omitempty"`
	DeletedForEveryone bool              `json:"deleted_for_everyone,omitempty"`

	// Transient UI flags. They are serialized for simplicity but
	// cleared whenever a snapshot is loaded.
	IsLoading      bool   `json:"is_loading,omitempty"`
	LoadingText    string `json:"loading_text,omitempty"`
	IsDeleting     bool   `json:"is_deleting,omitempty"`
	IsPlayingAudio bool   `json:"is_playing_audio,omitempty"`
}

// Tombstone blanks all content-carrying fields, leaving only identity
// metadata behind. Calling it on an already tombstoned message is a no-op.
func (m *Message) Tombstone() {
	m.Text = ""
	m.ImageURL = ""
	m.VideoURL = ""
	m.AudioData = ""
	m.Duration = 0
	m.Suggestions = nil
	m.GroundingSources = nil
	m.DeletedForEveryone = true
}

// ClearTransient resets the per-operation UI flags. Used when restoring
// a persisted snapshot so a crash mid-operation cannot leave a message
// stuck in a loading or deleting state.
func (m *Message) ClearTransient() {
	m.IsLoading = false
	m.LoadingText = ""
	m.IsDeleting = false
	m.IsPlayingAudio = false
}
