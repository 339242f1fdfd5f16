package entities

import "time"

// Batch represents one upload's worth of patient rows. A batch is immutable
// once its rows are written, but it may transiently exist with zero rows
// between creation and population.
type Batch struct {
	ID        string    `json:"id" db:"id"`
	Label     string    `json:"label" db:"label"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
