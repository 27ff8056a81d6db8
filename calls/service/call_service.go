package service

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	callmodels "ws-chatt/backend/calls/models"
	chatmodels "ws-chatt/backend/chat/models"
	"ws-chatt/backend/chat/repository"
	"ws-chatt/backend/pkg/clock"
	"ws-chatt/backend/pkg/logger"

	"github.com/google/uuid"
)

// CallsKey is the storage slot for the call history.
const CallsKey = "ws-chatt:calls"

// CallService owns the call history log. Like the chat snapshot, the
// history is loaded once at startup and re-persisted on every change;
// malformed stored data is replaced with seeded demo entries.
type CallService struct {
	mu    sync.Mutex
	calls []callmodels.Call

	store repository.Store
	clock clock.Clock
	log   *logger.Logger
}

// NewCallService loads the persisted history, seeding demo entries
// from the given chats when storage is empty or unreadable.
func NewCallService(store repository.Store, chats []chatmodels.Chat, clk clock.Clock, log *logger.Logger) *CallService {
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	s := &CallService{store: store, clock: clk, log: log}
	s.load(chats)
	return s
}

func (s *CallService) load(chats []chatmodels.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Get(CallsKey)
	if err == nil {
		var calls []callmodels.Call
		if json.Unmarshal(data, &calls) == nil {
			s.calls = calls
			return
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.LogError(err, "failed to load call history, seeding defaults")
	}

	s.calls = s.seedCalls(chats)
	s.persistLocked()
}

// seedCalls fabricates a small demo history from the first two 1:1
// contacts, mirroring what a fresh install shows.
func (s *CallService) seedCalls(chats []chatmodels.Chat) []callmodels.Call {
	var contacts []chatmodels.Chat
	for _, chat := range chats {
		if !chat.IsGroup {
			contacts = append(contacts, chat)
		}
	}
	if len(contacts) < 2 {
		return []callmodels.Call{}
	}

	now := s.clock.Now()
	return []callmodels.Call{
		{
			ID:               "call-" + uuid.NewString(),
			ContactID:        contacts[0].ID,
			ContactName:      contacts[0].Name,
			ContactAvatarURL: contacts[0].AvatarURL,
			Type:             callmodels.CallVideo,
			Direction:        callmodels.CallOutgoing,
			Status:           callmodels.CallAnswered,
			Timestamp:        now.Add(-time.Hour),
			DurationSeconds:  125,
		},
		{
			ID:               "call-" + uuid.NewString(),
			ContactID:        contacts[1].ID,
			ContactName:      contacts[1].Name,
			ContactAvatarURL: contacts[1].AvatarURL,
			Type:             callmodels.CallVoice,
			Direction:        callmodels.CallIncoming,
			Status:           callmodels.CallMissed,
			Timestamp:        now.Add(-24 * time.Hour),
		},
	}
}

func (s *CallService) persistLocked() {
	data, err := json.Marshal(s.calls)
	if err != nil {
		s.log.LogError(err, "failed to marshal call history")
		return
	}
	if err := s.store.Set(CallsKey, data); err != nil {
		s.log.LogError(err, "failed to persist call history")
	}
}

// History returns the call log, newest first.
func (s *CallService) History() []callmodels.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]callmodels.Call(nil), s.calls...)
}

// AddCall prepends a call to the history and persists it.
func (s *CallService) AddCall(call callmodels.Call) callmodels.Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	call.ID = "call-" + uuid.NewString()
	if call.Timestamp.IsZero() {
		call.Timestamp = s.clock.Now()
	}
	s.calls = append([]callmodels.Call{call}, s.calls...)
	s.persistLocked()
	return call
}
