package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusBefore(t *testing.T) {
	assert.True(t, StatusSending.Before(StatusSent))
	assert.True(t, StatusSending.Before(StatusRead))
	assert.True(t, StatusSent.Before(StatusDelivered))
	assert.True(t, StatusDelivered.Before(StatusRead))

	assert.False(t, StatusRead.Before(StatusDelivered))
	assert.False(t, StatusSent.Before(StatusSent))
	assert.False(t, Status("bogus").Before(StatusRead))
	assert.False(t, StatusSending.Before(Status("bogus")))
}

func TestTombstoneBlanksContentKeepsIdentity(t *testing.T) {
	msg := Message{
		ID:        "m1",
		Sender:    SenderUser,
		Text:      "secret",
		ImageURL:  "https://example.com/img.png",
		VideoURL:  "https://example.com/vid.mp4",
		AudioData: "base64",
		Duration:  4.2,
		Status:    StatusDelivered,
		Suggestions: []Suggestion{
			{Label: "x", Type: SuggestionMessage, Payload: "x"},
		},
		GroundingSources: []GroundingSource{{Title: "Source", URI: "https://example.com"}},
		ReplyTo:          &ReplyRef{ID: "m0", Text: "original"},
	}

	msg.Tombstone()

	assert.True(t, msg.DeletedForEveryone)
	assert.Empty(t, msg.Text)
	assert.Empty(t, msg.ImageURL)
	assert.Empty(t, msg.VideoURL)
	assert.Empty(t, msg.AudioData)
	assert.Zero(t, msg.Duration)
	assert.Nil(t, msg.Suggestions)
	assert.Nil(t, msg.GroundingSources)

	// Identity and thread structure survive.
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, SenderUser, msg.Sender)
	assert.Equal(t, StatusDelivered, msg.Status)
	assert.NotNil(t, msg.ReplyTo)

	// A second tombstone changes nothing.
	msg.Tombstone()
	assert.True(t, msg.DeletedForEveryone)
}

func TestAIMembersSkipsUser(t *testing.T) {
	chat := Chat{
		IsGroup: true,
		Members: []Member{
			{ID: "current-user", IsUser: true},
			{ID: "m-a", Name: "A"},
			{ID: "m-b", Name: "B"},
		},
	}

	members := chat.AIMembers()
	assert.Len(t, members, 2)
	assert.Equal(t, "m-a", members[0].ID)

	solo := Chat{}
	assert.Nil(t, solo.AIMembers())
}
