// Package notestore provides storage interfaces and implementations for
// the notes managed by the notesmcp service.
package notestore

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/localrivet/notesmcp/internal/errortypes"
)

// ErrNotFound is returned when an operation references a note id that is
// not present in the store.
var ErrNotFound = errors.New("note not found")

// Note is a user-authored record.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTag reports whether the note carries exactly the given tag.
func (n Note) HasTag(tag string) bool {
	return slices.Contains(n.Tags, tag)
}

// Matches reports whether query is a case-insensitive substring of the
// title or the content. The empty query matches every note.
func (n Note) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Content), q)
}

func (n Note) clone() Note {
	n.Tags = cloneTags(n.Tags)
	return n
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// Patch describes an update. A nil field leaves the current value unchanged;
// a non-nil field replaces it, even when it points at an empty value.
type Patch struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// Store defines the interface for storing and querying notes.
type Store interface {
	// Create stores a new note under a freshly assigned id.
	Create(title, content string, tags []string) (Note, error)

	// Update applies the patch and refreshes UpdatedAt.
	Update(id int64, patch Patch) (Note, error)

	// Delete removes a note and returns it.
	Delete(id int64) (Note, error)

	// Get returns a single note.
	Get(id int64) (Note, error)

	// List returns every note, or only those tagged exactly with tag when
	// tag is non-empty, ordered by id.
	List(tag string) ([]Note, error)

	// Search returns the notes whose title or content contains query,
	// ignoring case, ordered by id.
	Search(query string) ([]Note, error)

	// Count returns the number of notes currently stored.
	Count() (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Clock returns the current time. Stores take one so tests can pin time.
type Clock func() time.Time

// Option configures a store.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock overrides the time source used for CreatedAt and UpdatedAt.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// now strips the monotonic reading and normalises to UTC so stored and
// returned values compare and serialise identically.
func (o options) now() time.Time {
	return o.clock().Round(0).UTC()
}

// laterOf keeps UpdatedAt from falling behind CreatedAt when the clock steps back.
func laterOf(createdAt, now time.Time) time.Time {
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

func notFound(id int64) error {
	return errortypes.NotFoundError(ErrNotFound, fmt.Sprintf("Note %d not found", id)).
		WithField("note_id", id)
}
