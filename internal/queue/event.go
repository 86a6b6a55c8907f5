// Package queue defines message payloads exchanged over the message broker.
package queue

// SeatStatusChangedEvent is published after every durable commit of a
// seat status change, including admin overrides.  It carries enough
// information for downstream consumers to build an audit trail without
// querying the primary database.
type SeatStatusChangedEvent struct {
	LibraryID   uint64 `json:"library_id"`
	SeatID      uint64 `json:"seat_id"`
	Shift       string `json:"shift"`
	Status      string `json:"status"`
	Actor       string `json:"actor"`
	Override    bool   `json:"override"`
	CommitSeq   uint64 `json:"commit_seq"`
	CommittedAt string `json:"committed_at"`
}
