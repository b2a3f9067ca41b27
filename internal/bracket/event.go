package bracket

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
)

// Event owns one or more brackets. Status is the only field the engine
// mutates, and only through the completion watcher.
type Event struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	StartsAt  *time.Time  `db:"starts_at" json:"starts_at,omitempty"`
	EndsAt    *time.Time  `db:"ends_at" json:"ends_at,omitempty"`
	Status    EventStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
