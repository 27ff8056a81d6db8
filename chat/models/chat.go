package models

// Member is a participant in a group chat. Exactly one member per
// group has IsUser set; all others are AI personas with their own
// system instruction.
type Member struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	AvatarURL         string `json:"avatar_url"`
	SystemInstruction string `json:"system_instruction"`
	IsUser            bool   `json:"is_user,omitempty"`
}

// Chat is a conversation thread, either one-on-one with a single AI
// persona or a group with several. Messages are kept in insertion
// order, which is also display order.
type Chat struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	AvatarURL         string    `json:"avatar_url"`
	SystemInstruction string    `json:"system_instruction"`
	Messages          []Message `json:"messages"`
	IsGroup           bool      `json:"is_group,omitempty"`
	Members           []Member  `json:"members,omitempty"`
	// LastResponderIndex is the round-robin cursor into the AI member
	// list. -1 means no member has responded yet. Only meaningful when
	// IsGroup is set.
	LastResponderIndex int `json:"last_responder_index,omitempty"`
}

// AIMembers returns the group's AI personas in member order, skipping
// the local user.
func (c *Chat) AIMembers() []Member {
	if !c.IsGroup {
		return nil
	}
	var out []Member
	for _, m := range c.Members {
		if !m.IsUser {
			out = append(out, m)
		}
	}
	return out
}

// FindMessage returns a pointer into the chat's message slice, or nil.
func (c *Chat) FindMessage(id string) *Message {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i]
		}
	}
	return nil
}

// Normalize enforces structural invariants after deserialization:
// non-group chats carry no member list and no responder cursor, and
// transient message flags are cleared.
func (c *Chat) Normalize() {
	if !c.IsGroup {
		c.Members = nil
		c.LastResponderIndex = 0
	}
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	for i := range c.Messages {
		c.Messages[i].ClearTransient()
	}
}

// ChatBlueprint describes a 1:1 chat to create: everything except the
// identity and message sequence, which the store synthesizes.
type ChatBlueprint struct {
	Name              string `json:"name"`
	AvatarURL         string `json:"avatar_url"`
	SystemInstruction string `json:"system_instruction"`
}

// Snapshot is the unit persisted to and restored from storage.
type Snapshot struct {
	Chats        []Chat `json:"chats"`
	ActiveChatID string `json:"active_chat_id"`
}
