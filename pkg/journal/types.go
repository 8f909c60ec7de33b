package journal

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrDayNotFound   = errors.New("day not found")
	ErrEmptyText     = errors.New("entry text cannot be empty")
	ErrEmptyReason   = errors.New("miss reason cannot be empty")
	ErrDayNotMissed  = errors.New("day is not a missed day")
	ErrInvalidDate   = errors.New("invalid date")
)

// Day is one row of the calendar ledger.
type Day struct {
	Date       string `json:"date" yaml:"date"`
	MissReason string `json:"miss_reason,omitempty" yaml:"miss_reason,omitempty"`
}

// Entry is a single logged learning note.
type Entry struct {
	ID        int64     `json:"id" yaml:"id"`
	Date      string    `json:"date" yaml:"date"`
	Text      string    `json:"text" yaml:"text"`
	Tags      string    `json:"tags,omitempty" yaml:"tags,omitempty"` // normalized "a, b"; empty when the entry has none
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// TagList returns the entry's tags as a slice.
func (e Entry) TagList() []string {
	return SplitTags(e.Tags)
}

// querier is satisfied by both *sql.DB and *sql.Tx so helpers can run inside
// or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
