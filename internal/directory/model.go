package directory

import "time"

// Entry is the directory record of a live room.
type Entry struct {
	Code      string    `json:"code"`
	HostID    string    `json:"hostId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LookupResponse is returned by GET /rooms/:code.
type LookupResponse struct {
	Code      string    `json:"code"`
	HostID    string    `json:"hostId"`
	Players   []string  `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}
