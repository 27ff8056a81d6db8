package service

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	chatmodels "ws-chatt/backend/chat/models"
	"ws-chatt/backend/chat/repository"
	"ws-chatt/backend/pkg/clock"
	"ws-chatt/backend/pkg/logger"
	statusmodels "ws-chatt/backend/status/models"

	"github.com/google/uuid"
)

// StatusKey is the storage slot for contact status updates.
const StatusKey = "ws-chatt:status"

// userStatusID marks the local user's own status entry.
const userStatusID = "user-status"

// StatusService owns the ephemeral status updates shown in the status
// tray. Persistence follows the same snapshot discipline as chats:
// load once, re-save on every change, treat garbage as absence.
type StatusService struct {
	mu       sync.Mutex
	statuses []statusmodels.ContactStatus

	store repository.Store
	clock clock.Clock
	log   *logger.Logger
}

// NewStatusService loads persisted statuses, seeding demo content from
// the given chats when storage is empty or unreadable.
func NewStatusService(store repository.Store, chats []chatmodels.Chat, clk clock.Clock, log *logger.Logger) *StatusService {
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	s := &StatusService{store: store, clock: clk, log: log}
	s.load(chats)
	return s
}

func (s *StatusService) load(chats []chatmodels.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Get(StatusKey)
	if err == nil {
		var statuses []statusmodels.ContactStatus
		if json.Unmarshal(data, &statuses) == nil {
			s.statuses = statuses
			return
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.LogError(err, "failed to load statuses, seeding defaults")
	}

	s.statuses = s.seedStatuses(chats)
	s.persistLocked()
}

// seedStatuses gives the default AI assistant a welcome status so the
// tray is not empty on first run. Contacts without updates are omitted.
func (s *StatusService) seedStatuses(chats []chatmodels.Chat) []statusmodels.ContactStatus {
	now := s.clock.Now()
	var out []statusmodels.ContactStatus
	for _, chat := range chats {
		if chat.IsGroup || chat.Name != "AI Assistant" {
			continue
		}
		out = append(out, statusmodels.ContactStatus{
			ContactID:        chat.ID,
			ContactName:      chat.Name,
			ContactAvatarURL: chat.AvatarURL,
			Updates: []statusmodels.StatusUpdate{{
				ID:              chat.ID + "-s1",
				Type:            statusmodels.StatusText,
				Content:         "I can now help with real-time location based queries!",
				BackgroundColor: "#25D366",
				Timestamp:       now.Add(-time.Hour),
				DurationMillis:  5000,
			}},
		})
	}
	if out == nil {
		out = []statusmodels.ContactStatus{}
	}
	return out
}

func (s *StatusService) persistLocked() {
	data, err := json.Marshal(s.statuses)
	if err != nil {
		s.log.LogError(err, "failed to marshal statuses")
		return
	}
	if err := s.store.Set(StatusKey, data); err != nil {
		s.log.LogError(err, "failed to persist statuses")
	}
}

// Statuses returns all contact statuses.
func (s *StatusService) Statuses() []statusmodels.ContactStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]statusmodels.ContactStatus(nil), s.statuses...)
}

// MarkViewed flags a single update as seen.
func (s *StatusService) MarkViewed(contactID, updateID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.statuses {
		if s.statuses[i].ContactID != contactID {
			continue
		}
		for j := range s.statuses[i].Updates {
			if s.statuses[i].Updates[j].ID == updateID {
				s.statuses[i].Updates[j].Viewed = true
				s.persistLocked()
				return
			}
		}
	}
}

// AddUserStatus appends an update to the local user's own status,
// creating the entry on first use.
func (s *StatusService) AddUserStatus(update statusmodels.StatusUpdate) statusmodels.StatusUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	update.ID = "status-" + uuid.NewString()
	if update.Timestamp.IsZero() {
		update.Timestamp = s.clock.Now()
	}

	for i := range s.statuses {
		if s.statuses[i].ContactID == userStatusID {
			s.statuses[i].Updates = append(s.statuses[i].Updates, update)
			s.persistLocked()
			return update
		}
	}

	s.statuses = append(s.statuses, statusmodels.ContactStatus{
		ContactID:        userStatusID,
		ContactName:      "My status",
		ContactAvatarURL: "https://picsum.photos/seed/ws-chatt-user/50/50",
		Updates:          []statusmodels.StatusUpdate{update},
	})
	s.persistLocked()
	return update
}
