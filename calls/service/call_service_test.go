package service

import (
	"testing"
	"time"

	callmodels "ws-chatt/backend/calls/models"
	chatmodels "ws-chatt/backend/chat/models"
	"ws-chatt/backend/chat/repository"
	"ws-chatt/backend/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChats() []chatmodels.Chat {
	return []chatmodels.Chat{
		{ID: "chat-ada", Name: "Ada", AvatarURL: "https://example.com/ada.png"},
		{ID: "chat-grace", Name: "Grace", AvatarURL: "https://example.com/grace.png"},
		{ID: "group-1", Name: "Team", IsGroup: true},
	}
}

func newTestCallService(store repository.Store) *CallService {
	if store == nil {
		store = repository.NewMemoryStore()
	}
	clk := clock.NewInstant(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewCallService(store, testChats(), clk, nil)
}

func TestSeedsDemoHistoryFromContacts(t *testing.T) {
	svc := newTestCallService(nil)

	history := svc.History()
	require.Len(t, history, 2)

	assert.Equal(t, "chat-ada", history[0].ContactID)
	assert.Equal(t, callmodels.CallVideo, history[0].Type)
	assert.Equal(t, callmodels.CallAnswered, history[0].Status)
	assert.Equal(t, 125, history[0].DurationSeconds)

	assert.Equal(t, "chat-grace", history[1].ContactID)
	assert.Equal(t, callmodels.CallMissed, history[1].Status)
	assert.Zero(t, history[1].DurationSeconds)
}

func TestNoSeedWithFewerThanTwoContacts(t *testing.T) {
	store := repository.NewMemoryStore()
	clk := clock.NewInstant(time.Now())
	svc := NewCallService(store, []chatmodels.Chat{{ID: "only", Name: "Only"}}, clk, nil)

	assert.Empty(t, svc.History())
}

func TestAddCallPrependsAndPersists(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newTestCallService(store)

	added := svc.AddCall(callmodels.Call{
		ContactID:   "chat-ada",
		ContactName: "Ada",
		Type:        callmodels.CallVoice,
		Direction:   callmodels.CallOutgoing,
		Status:      callmodels.CallDeclined,
	})
	assert.NotEmpty(t, added.ID)

	history := svc.History()
	require.Len(t, history, 3)
	assert.Equal(t, added.ID, history[0].ID)

	// A new service over the same store sees the persisted log, not the seed.
	restored := newTestCallService(store)
	require.Len(t, restored.History(), 3)
	assert.Equal(t, added.ID, restored.History()[0].ID)
}

func TestMalformedHistoryReseeds(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(CallsKey, []byte("[broken")))

	svc := newTestCallService(store)
	assert.Len(t, svc.History(), 2)
}
