package domain

import "time"

// Playlist is a user-curated list of records.
type Playlist struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	RecordIDs []string  `json:"record_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRecord reports whether the playlist already contains the record.
func (p *Playlist) HasRecord(recordID string) bool {
	for _, id := range p.RecordIDs {
		if id == recordID {
			return true
		}
	}
	return false
}
