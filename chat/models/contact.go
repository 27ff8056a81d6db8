package models

// UserContact is a phonebook entry created by the user. Contacts are
// persisted separately from the chat snapshot.
type UserContact struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
