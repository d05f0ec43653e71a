package models

// JournalEntry is one travel journal entry as returned by the API.
// Dates are YYYY-MM-DD and timestamps YYYY-MM-DD HH:MM:SS regardless of
// which database engine stored them.
type JournalEntry struct {
	ID          int64  `json:"id"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
	Highlights  string `json:"highlights"`
	PhotoLinks  string `json:"photo_links"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// EntryInput is the writable part of an entry, used for both create and
// update. Absent optional fields are stored as empty strings.
type EntryInput struct {
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
	Highlights  string `json:"highlights"`
	PhotoLinks  string `json:"photo_links"`
}
