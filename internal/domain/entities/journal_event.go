package entities

import "time"

// JournalEvent announces that a process changed the shared override journal.
// Followers reload the journal from the store; the event carries no state.
type JournalEvent struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"` // disable, enable, note
	Origin    string    `json:"origin"`    // id of the journal instance that wrote
	UpdatedAt time.Time `json:"updated_at"`
}
