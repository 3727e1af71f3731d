package notestore

import (
	"fmt"
	"sync"
	"time"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"

	"github.com/localrivet/notesmcp/internal/errortypes"
)

// MemoryDSN opens a private in-memory database that disappears with the connection.
const MemoryDSN = ":memory:"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS note_tags (
	note_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY (note_id, position)
);
CREATE INDEX IF NOT EXISTS note_tags_tag ON note_tags (tag);`

// SQLiteStore is a Store backed by a single SQLite connection. AUTOINCREMENT
// keeps ids strictly increasing across deletions.
type SQLiteStore struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	opts options
}

// NewSQLiteStore creates a SQLiteStore. Call Initialize before use.
func NewSQLiteStore(opts ...Option) *SQLiteStore {
	return &SQLiteStore{opts: buildOptions(opts)}
}

// Initialize opens the database at dbPath and creates the schema.
// An empty path opens an in-memory database.
func (s *SQLiteStore) Initialize(dbPath string) error {
	if dbPath == "" {
		dbPath = MemoryDSN
	}

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to open SQLite database").WithField("path", dbPath)
	}

	if err := sqlitex.ExecScript(conn, schemaSQL); err != nil {
		conn.Close()
		return errortypes.DatabaseError(err, "failed to create schema")
	}

	s.conn = conn
	return nil
}

// Close closes the underlying connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Create stores a new note under a freshly assigned id.
func (s *SQLiteStore) Create(title, content string, tags []string) (note Note, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer sqlitex.Save(s.conn)(&err)

	now := s.opts.now()
	stmt, err := s.conn.Prepare(`INSERT INTO notes (title, content, created_at, updated_at) VALUES (?, ?, ?, ?);`)
	if err != nil {
		return Note{}, errortypes.DatabaseError(err, "failed to prepare insert statement")
	}
	defer stmt.Reset()

	stmt.BindText(1, title)
	stmt.BindText(2, content)
	stmt.BindInt64(3, now.UnixNano())
	stmt.BindInt64(4, now.UnixNano())

	if _, err = stmt.Step(); err != nil {
		return Note{}, errortypes.DatabaseError(err, "failed to insert note")
	}

	id := s.conn.LastInsertRowID()
	if err = s.writeTags(id, tags); err != nil {
		return Note{}, err
	}

	return Note{
		ID:        id,
		Title:     title,
		Content:   content,
		Tags:      cloneTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update applies the patch and refreshes UpdatedAt.
func (s *SQLiteStore) Update(id int64, patch Patch) (note Note, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer sqlitex.Save(s.conn)(&err)

	note, err = s.get(id)
	if err != nil {
		return Note{}, err
	}

	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	note.UpdatedAt = laterOf(note.CreatedAt, s.opts.now())

	err = sqlitex.Exec(s.conn, `UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?;`,
		nil, note.Title, note.Content, note.UpdatedAt.UnixNano(), id)
	if err != nil {
		return Note{}, errortypes.DatabaseError(err, "failed to update note").WithField("note_id", id)
	}

	if patch.Tags != nil {
		if err = s.deleteTags(id); err != nil {
			return Note{}, err
		}
		if err = s.writeTags(id, *patch.Tags); err != nil {
			return Note{}, err
		}
		note.Tags = cloneTags(*patch.Tags)
	}

	return note, nil
}

// Delete removes a note and returns it.
func (s *SQLiteStore) Delete(id int64) (note Note, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer sqlitex.Save(s.conn)(&err)

	note, err = s.get(id)
	if err != nil {
		return Note{}, err
	}

	if err = sqlitex.Exec(s.conn, `DELETE FROM notes WHERE id = ?;`, nil, id); err != nil {
		return Note{}, errortypes.DatabaseError(err, "failed to delete note").WithField("note_id", id)
	}
	if err = s.deleteTags(id); err != nil {
		return Note{}, err
	}

	return note, nil
}

// Get returns a single note.
func (s *SQLiteStore) Get(id int64) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

// List returns every note, or only those carrying tag, ordered by id.
func (s *SQLiteStore) List(tag string) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tag == "" {
		return s.query(`SELECT id, title, content, created_at, updated_at FROM notes ORDER BY id;`)
	}
	return s.query(`
	SELECT id, title, content, created_at, updated_at FROM notes
	WHERE id IN (SELECT note_id FROM note_tags WHERE tag = ?)
	ORDER BY id;`, tag)
}

// Search returns the notes whose title or content contains query. Matching
// runs in Go so case folding is the same as MemoryStore's.
func (s *SQLiteStore) Search(query string) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.query(`SELECT id, title, content, created_at, updated_at FROM notes ORDER BY id;`)
	if err != nil {
		return nil, err
	}

	results := make([]Note, 0, len(all))
	for _, note := range all {
		if note.Matches(query) {
			results = append(results, note)
		}
	}
	return results, nil
}

// Count returns the number of stored notes.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := sqlitex.Exec(s.conn, `SELECT COUNT(*) FROM notes;`, func(stmt *sqlite.Stmt) error {
		count = stmt.ColumnInt(0)
		return nil
	})
	if err != nil {
		return 0, errortypes.DatabaseError(err, "failed to count notes")
	}
	return count, nil
}

func (s *SQLiteStore) get(id int64) (Note, error) {
	notes, err := s.query(`SELECT id, title, content, created_at, updated_at FROM notes WHERE id = ?;`, id)
	if err != nil {
		return Note{}, err
	}
	if len(notes) == 0 {
		return Note{}, notFound(id)
	}
	return notes[0], nil
}

// query runs a notes SELECT and attaches each note's tags in position order.
func (s *SQLiteStore) query(selectSQL string, args ...interface{}) ([]Note, error) {
	notes := make([]Note, 0)

	err := sqlitex.Exec(s.conn, selectSQL, func(stmt *sqlite.Stmt) error {
		notes = append(notes, Note{
			ID:        stmt.ColumnInt64(0),
			Title:     stmt.ColumnText(1),
			Content:   stmt.ColumnText(2),
			Tags:      []string{},
			CreatedAt: time.Unix(0, stmt.ColumnInt64(3)).UTC(),
			UpdatedAt: time.Unix(0, stmt.ColumnInt64(4)).UTC(),
		})
		return nil
	}, args...)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to query notes")
	}

	for i := range notes {
		if err := s.loadTags(&notes[i]); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

// loadTags reads one note's tags through the (note_id, position) key.
func (s *SQLiteStore) loadTags(note *Note) error {
	err := sqlitex.Exec(s.conn, `SELECT tag FROM note_tags WHERE note_id = ? ORDER BY position;`,
		func(stmt *sqlite.Stmt) error {
			note.Tags = append(note.Tags, stmt.ColumnText(0))
			return nil
		}, note.ID)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to query note tags").WithField("note_id", note.ID)
	}
	return nil
}

func (s *SQLiteStore) writeTags(id int64, tags []string) error {
	stmt, err := s.conn.Prepare(`INSERT INTO note_tags (note_id, position, tag) VALUES (?, ?, ?);`)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to prepare tag insert statement")
	}

	for i, tag := range tags {
		stmt.BindInt64(1, id)
		stmt.BindInt64(2, int64(i))
		stmt.BindText(3, tag)
		_, err := stmt.Step()
		stmt.Reset()
		if err != nil {
			return errortypes.DatabaseError(fmt.Errorf("tag %q: %w", tag, err), "failed to insert note tag").
				WithField("note_id", id)
		}
	}
	return nil
}

func (s *SQLiteStore) deleteTags(id int64) error {
	if err := sqlitex.Exec(s.conn, `DELETE FROM note_tags WHERE note_id = ?;`, nil, id); err != nil {
		return errortypes.DatabaseError(err, "failed to delete note tags").WithField("note_id", id)
	}
	return nil
}
