package model

import "time"

// Base contains common fields for all catalog and clinic records
type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Record statuses shared by the catalog resources
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// StatusFilter values accepted by list endpoints. "all" is ignored.
var StatusFilter = []string{StatusActive, StatusInactive}

// RecordID lets generic services re-read a record after writing it.
func (b *Base) RecordID() int64 { return b.ID }
