package entities

// ReadingStatus is the status vocabulary the UI and controller speak.
type ReadingStatus string

const (
	StatusWantToRead ReadingStatus = "want_to_read"
	StatusReading    ReadingStatus = "reading"
	StatusCompleted  ReadingStatus = "completed"
)

// Persisted status vocabulary. "to-read" is a historical artifact: the first
// schema shipped with that spelling and existing rows still carry it, so the
// mapping is kept rather than migrated.
const (
	storeStatusToRead    = "to-read"
	storeStatusReading   = "reading"
	storeStatusCompleted = "completed"
)

// Valid reports whether s is one of the three known UI statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusWantToRead, StatusReading, StatusCompleted:
		return true
	}
	return false
}

// ToStoreStatus translates a UI status into the persisted vocabulary.
// Unrecognized input maps to the safe default rather than failing.
func ToStoreStatus(s ReadingStatus) string {
	switch s {
	case StatusReading:
		return storeStatusReading
	case StatusCompleted:
		return storeStatusCompleted
	default:
		return storeStatusToRead
	}
}

// FromStoreStatus translates a persisted status back into the UI vocabulary.
// Any unrecognized persisted value maps to want_to_read; rows written by
// older schema versions must never break reads.
func FromStoreStatus(s string) ReadingStatus {
	switch s {
	case storeStatusReading:
		return StatusReading
	case storeStatusCompleted:
		return StatusCompleted
	default:
		return StatusWantToRead
	}
}
