package entities

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh identifier for any entity.
func NewID() string {
	return uuid.NewString()
}

// Day truncates t to midnight UTC. Date-only fields are stored this way.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar day n days after t.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// transitions maps a status to the statuses reachable from it.
type transitions[S ~string] map[S][]S

func (t transitions[S]) allows(from, to S) bool {
	return slices.Contains(t[from], to)
}

// move applies to when the table allows it.
func move[S ~string](entity string, table transitions[S], current *S, to S) error {
	if !table.allows(*current, to) {
		return transitionError(entity, *current, to)
	}
	*current = to
	return nil
}
