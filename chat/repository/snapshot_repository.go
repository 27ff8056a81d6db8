package repository

import (
	"encoding/json"
	"errors"

	"ws-chatt/backend/chat/models"
)

// Storage keys. A single key holds the full chat snapshot; contacts
// live under their own key, mirroring the two-slot layout the store
// has always used.
const (
	SnapshotKey = "ws-chatt:storage"
	ContactsKey = "ws-chatt:user-contacts"
)

// SnapshotRepository serializes chat state into a Store. Malformed or
// missing data on load is reported as ErrNotFound so callers can fall
// back to a default state without inspecting the failure.
type SnapshotRepository struct {
	store Store
}

// NewSnapshotRepository wraps the given key-value store.
func NewSnapshotRepository(store Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

// LoadSnapshot reads and validates the persisted snapshot. Unreadable
// bytes, invalid JSON, and an empty chat list are all treated the same
// as an absent key.
func (r *SnapshotRepository) LoadSnapshot() (*models.Snapshot, error) {
	data, err := r.store.Get(SnapshotKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, ErrNotFound
	}
	if len(snapshot.Chats) == 0 {
		return nil, ErrNotFound
	}

	for i := range snapshot.Chats {
		snapshot.Chats[i].Normalize()
	}
	return &snapshot, nil
}

// SaveSnapshot writes the full snapshot back to storage.
func (r *SnapshotRepository) SaveSnapshot(snapshot *models.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.store.Set(SnapshotKey, data)
}

// LoadContacts reads the user contact list. Malformed data is treated
// as absent, same as the snapshot.
func (r *SnapshotRepository) LoadContacts() ([]models.UserContact, error) {
	data, err := r.store.Get(ContactsKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var contacts []models.UserContact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, ErrNotFound
	}
	return contacts, nil
}

// SaveContacts writes the user contact list back to storage.
func (r *SnapshotRepository) SaveContacts(contacts []models.UserContact) error {
	data, err := json.Marshal(contacts)
	if err != nil {
		return err
	}
	return r.store.Set(ContactsKey, data)
}
