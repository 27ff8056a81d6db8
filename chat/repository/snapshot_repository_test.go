package repository

import (
	"testing"
	"time"

	"ws-chatt/backend/chat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	repo := NewSnapshotRepository(NewMemoryStore())

	saved := &models.Snapshot{
		ActiveChatID: "chat-1",
		Chats: []models.Chat{
			{
				ID:   "chat-1",
				Name: "Ada",
				Messages: []models.Message{
					{ID: "m1", Sender: models.SenderUser, Text: "hi", Status: models.StatusRead, Timestamp: time.Now().UTC()},
				},
			},
			{
				ID:      "group-1",
				Name:    "Team",
				IsGroup: true,
				Members: []models.Member{
					{ID: "current-user", Name: "You", IsUser: true},
					{ID: "m-ada", Name: "Ada"},
				},
				LastResponderIndex: 1,
			},
		},
	}
	require.NoError(t, repo.SaveSnapshot(saved))

	loaded, err := repo.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, "chat-1", loaded.ActiveChatID)
	require.Len(t, loaded.Chats, 2)
	assert.Equal(t, "hi", loaded.Chats[0].Messages[0].Text)
	assert.Equal(t, 1, loaded.Chats[1].LastResponderIndex)
}

func TestLoadSnapshotMissingKey(t *testing.T) {
	repo := NewSnapshotRepository(NewMemoryStore())

	_, err := repo.LoadSnapshot()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSnapshotMalformedJSON(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(SnapshotKey, []byte("][ garbage")))

	_, err := NewSnapshotRepository(store).LoadSnapshot()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSnapshotEmptyChatList(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(SnapshotKey, []byte(`{"chats":[],"active_chat_id":""}`)))

	_, err := NewSnapshotRepository(store).LoadSnapshot()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSnapshotNormalizesChats(t *testing.T) {
	store := NewMemoryStore()
	repo := NewSnapshotRepository(store)

	// A non-group chat with leftover group fields and a message stuck
	// mid-operation, as a crash during an edit could leave behind.
	require.NoError(t, repo.SaveSnapshot(&models.Snapshot{
		ActiveChatID: "chat-1",
		Chats: []models.Chat{{
			ID:                 "chat-1",
			Name:               "Ada",
			Members:            []models.Member{{ID: "stray"}},
			LastResponderIndex: 3,
			Messages: []models.Message{
				{ID: "m1", Sender: models.SenderAI, IsLoading: true, LoadingText: "Generating...", IsDeleting: true, IsPlayingAudio: true},
			},
		}},
	}))

	loaded, err := repo.LoadSnapshot()
	require.NoError(t, err)

	chat := loaded.Chats[0]
	assert.Nil(t, chat.Members)
	assert.Zero(t, chat.LastResponderIndex)

	msg := chat.Messages[0]
	assert.False(t, msg.IsLoading)
	assert.Empty(t, msg.LoadingText)
	assert.False(t, msg.IsDeleting)
	assert.False(t, msg.IsPlayingAudio)
}

func TestContactsRoundTrip(t *testing.T) {
	repo := NewSnapshotRepository(NewMemoryStore())

	_, err := repo.LoadContacts()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SaveContacts([]models.UserContact{{ID: "c1", Name: "Dana"}}))

	contacts, err := repo.LoadContacts()
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Dana", contacts[0].Name)
}
