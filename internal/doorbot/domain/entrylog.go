package domain

import "time"

// Location is a named physical entry point.
type Location struct {
	ID   string
	Name string
}

// EntryLogEntry is one append-only audit record per scan. The RFID is stored
// raw: it may be a tag that was never registered, and the location may not
// resolve to a known Location. Entries are never updated or deleted.
type EntryLogEntry struct {
	ID          int64
	RFID        string
	EntryTime   time.Time
	IsActiveTag bool
	IsFoundTag  bool

	// Location is the resolved location name, empty when the scan referenced
	// an unknown door. FullName is the member's name at query time (joined,
	// empty for unknown tags); it is not stored on the row.
	Location string
	FullName string
}
