package model

// ChangeEvent is emitted after every durable commit of a seat status
// change and fanned out to all live subscribers of the library's room.
// Events for the same seat are delivered in commit order; there is no
// ordering guarantee across seats.  Subscribers that miss events
// rebuild their state from a fresh snapshot.
type ChangeEvent struct {
	LibraryID   uint64 `json:"library_id"`
	SeatID      uint64 `json:"seat_id"`
	Shift       string `json:"shift"`
	Status      Status `json:"status"`
	Actor       string `json:"actor"`
	Override    bool   `json:"override,omitempty"`
	CommitSeq   uint64 `json:"commit_seq"`
	CommittedAt string `json:"committed_at"` // RFC3339 UTC
}
