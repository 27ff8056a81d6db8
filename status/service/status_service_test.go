package service

import (
	"testing"
	"time"

	chatmodels "ws-chatt/backend/chat/models"
	"ws-chatt/backend/chat/repository"
	"ws-chatt/backend/pkg/clock"
	statusmodels "ws-chatt/backend/status/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStatusService(store repository.Store) *StatusService {
	if store == nil {
		store = repository.NewMemoryStore()
	}
	clk := clock.NewInstant(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	chats := []chatmodels.Chat{
		{ID: "ai-assistant-chat", Name: "AI Assistant", AvatarURL: "https://example.com/ai.png"},
		{ID: "chat-ada", Name: "Ada"},
	}
	return NewStatusService(store, chats, clk, nil)
}

func TestSeedsAssistantStatus(t *testing.T) {
	svc := newTestStatusService(nil)

	statuses := svc.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, "ai-assistant-chat", statuses[0].ContactID)
	require.Len(t, statuses[0].Updates, 1)

	update := statuses[0].Updates[0]
	assert.Equal(t, statusmodels.StatusText, update.Type)
	assert.False(t, update.Viewed)
	assert.Equal(t, 5000, update.DurationMillis)
}

func TestMarkViewedPersists(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newTestStatusService(store)

	first := svc.Statuses()[0]
	svc.MarkViewed(first.ContactID, first.Updates[0].ID)

	assert.True(t, svc.Statuses()[0].Updates[0].Viewed)

	restored := newTestStatusService(store)
	assert.True(t, restored.Statuses()[0].Updates[0].Viewed)
}

func TestMarkViewedUnknownIDIsNoOp(t *testing.T) {
	svc := newTestStatusService(nil)

	svc.MarkViewed("nobody", "nothing")

	assert.False(t, svc.Statuses()[0].Updates[0].Viewed)
}

func TestAddUserStatusCreatesOwnEntry(t *testing.T) {
	svc := newTestStatusService(nil)

	added := svc.AddUserStatus(statusmodels.StatusUpdate{
		Type:            statusmodels.StatusText,
		Content:         "Out hiking",
		BackgroundColor: "#128C7E",
	})
	require.NotEmpty(t, added.ID)
	assert.False(t, added.Timestamp.IsZero())

	statuses := svc.Statuses()
	require.Len(t, statuses, 2)
	mine := statuses[1]
	assert.Equal(t, "My status", mine.ContactName)
	require.Len(t, mine.Updates, 1)
	assert.Equal(t, "Out hiking", mine.Updates[0].Content)

	// Second update lands in the same entry.
	svc.AddUserStatus(statusmodels.StatusUpdate{Type: statusmodels.StatusText, Content: "Back home"})
	statuses = svc.Statuses()
	require.Len(t, statuses, 2)
	assert.Len(t, statuses[1].Updates, 2)
}
