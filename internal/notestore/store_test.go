package notestore

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localrivet/notesmcp/internal/errortypes"
)

// fakeClock hands out strictly increasing timestamps one second apart.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type storeFactory func(t *testing.T, opts ...Option) Store

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T, opts ...Option) Store {
			return NewMemoryStore(opts...)
		},
		"sqlite": func(t *testing.T, opts ...Option) Store {
			s := NewSQLiteStore(opts...)
			require.NoError(t, s.Initialize(MemoryDSN))
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, newStore storeFactory)) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestSequentialIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t)
		for want := int64(1); want <= 5; want++ {
			note, err := s.Create("title", "content", nil)
			require.NoError(t, err)
			assert.Equal(t, want, note.ID)
		}
		count, err := s.Count()
		require.NoError(t, err)
		assert.Equal(t, 5, count)
	})
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t)

		a, err := s.Create("A", "first", nil)
		require.NoError(t, err)
		b, err := s.Create("B", "second", nil)
		require.NoError(t, err)
		require.Equal(t, int64(1), a.ID)
		require.Equal(t, int64(2), b.ID)

		_, err = s.Delete(a.ID)
		require.NoError(t, err)

		c, err := s.Create("C", "third", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), c.ID)

		// B must survive the create that a size-derived id would have clobbered.
		got, err := s.Get(b.ID)
		require.NoError(t, err)
		assert.Equal(t, "B", got.Title)
	})
}

func TestCreateSetsTimestampsAndTags(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		clock := newFakeClock()
		s := newStore(t, WithClock(clock.Now))

		note, err := s.Create("t", "c", nil)
		require.NoError(t, err)
		assert.NotNil(t, note.Tags)
		assert.Empty(t, note.Tags)
		assert.True(t, note.CreatedAt.Equal(note.UpdatedAt))

		tagged, err := s.Create("t", "c", []string{"b", "a", "b"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "b"}, tagged.Tags)
	})
}

func TestCreateGetRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t, WithClock(newFakeClock().Now))

		created, err := s.Create("Shopping", "milk, eggs", []string{"home", "todo"})
		require.NoError(t, err)

		got, err := s.Get(created.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(created, got); diff != "" {
			t.Errorf("Get() mismatch (-created +got):\n%s", diff)
		}
	})
}

func TestTimestampsAreUTC(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		zone := time.FixedZone("UTC+5", 5*60*60)
		clock := func() time.Time {
			return time.Date(2025, 3, 1, 17, 0, 0, 0, zone)
		}
		s := newStore(t, WithClock(clock))

		created, err := s.Create("Zoned", "body", nil)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, created.CreatedAt.Location())

		got, err := s.Get(created.ID)
		require.NoError(t, err)

		createdJSON, err := json.Marshal(created)
		require.NoError(t, err)
		gotJSON, err := json.Marshal(got)
		require.NoError(t, err)
		assert.JSONEq(t, string(createdJSON), string(gotJSON))
		assert.Contains(t, string(gotJSON), `"created_at":"2025-03-01T12:00:00Z"`)
	})
}

func TestTagsStayWithTheirNote(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t)

		first, err := s.Create("first", "", []string{"a", "b"})
		require.NoError(t, err)
		second, err := s.Create("second", "", []string{"c"})
		require.NoError(t, err)
		_, err = s.Create("third", "", nil)
		require.NoError(t, err)

		got, err := s.Get(first.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got.Tags)

		deleted, err := s.Delete(second.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, deleted.Tags)

		all, err := s.List("")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, []string{"a", "b"}, all[0].Tags)
		assert.Equal(t, []string{}, all[1].Tags)
	})
}

func TestUpdate(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		clock := newFakeClock()
		s := newStore(t, WithClock(clock.Now))

		created, err := s.Create("title", "content", []string{"x"})
		require.NoError(t, err)

		t.Run("empty patch only touches updated_at", func(t *testing.T) {
			updated, err := s.Update(created.ID, Patch{})
			require.NoError(t, err)
			assert.Equal(t, created.Title, updated.Title)
			assert.Equal(t, created.Content, updated.Content)
			assert.Equal(t, created.Tags, updated.Tags)
			assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
			assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		})

		t.Run("present fields replace even when empty", func(t *testing.T) {
			updated, err := s.Update(created.ID, Patch{
				Title: ptr(""),
				Tags:  ptr([]string{"y", "z"}),
			})
			require.NoError(t, err)
			assert.Equal(t, "", updated.Title)
			assert.Equal(t, "content", updated.Content)
			assert.Equal(t, []string{"y", "z"}, updated.Tags)

			got, err := s.Get(created.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(updated, got); diff != "" {
				t.Errorf("Get() after Update mismatch (-updated +got):\n%s", diff)
			}
		})

		t.Run("tags are replaced wholesale", func(t *testing.T) {
			updated, err := s.Update(created.ID, Patch{Tags: ptr([]string{})})
			require.NoError(t, err)
			assert.Empty(t, updated.Tags)
		})

		t.Run("missing id", func(t *testing.T) {
			_, err := s.Update(99, Patch{Title: ptr("x")})
			assert.ErrorIs(t, err, ErrNotFound)
			assert.True(t, errortypes.IsNotFoundError(err))
		})
	})
}

func TestUpdatedAtNeverBeforeCreatedAt(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		times := []time.Time{
			time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		i := 0
		clock := func() time.Time {
			ts := times[i%len(times)]
			i++
			return ts
		}
		s := newStore(t, WithClock(clock))

		created, err := s.Create("t", "c", nil)
		require.NoError(t, err)
		updated, err := s.Update(created.ID, Patch{})
		require.NoError(t, err)
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	})
}

func TestDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t)

		note, err := s.Create("Groceries", "", []string{"home"})
		require.NoError(t, err)

		deleted, err := s.Delete(note.ID)
		require.NoError(t, err)
		assert.Equal(t, "Groceries", deleted.Title)

		_, err = s.Get(note.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.Delete(note.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		tagged, err := s.List("home")
		require.NoError(t, err)
		assert.Empty(t, tagged)
	})
}

func TestList(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t)

		_, err := s.Create("one", "", []string{"x", "work"})
		require.NoError(t, err)
		_, err = s.Create("two", "", []string{"X"})
		require.NoError(t, err)
		_, err = s.Create("three", "", []string{"x"})
		require.NoError(t, err)
		_, err = s.Create("four", "", nil)
		require.NoError(t, err)

		all, err := s.List("")
		require.NoError(t, err)
		count, err := s.Count()
		require.NoError(t, err)
		assert.Len(t, all, count)
		assert.Equal(t, []int64{1, 2, 3, 4}, ids(all))

		tagged, err := s.List("x")
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3}, ids(tagged))

		none, err := s.List("missing")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestSearch(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t)

		_, err := s.Create("Meeting Notes", "discuss roadmap", []string{"needle"})
		require.NoError(t, err)
		_, err = s.Create("Recipe", "Add the NEEDLE-shaped pasta", nil)
		require.NoError(t, err)
		_, err = s.Create("Journal", "quiet day", []string{"meeting"})
		require.NoError(t, err)

		testCases := []struct {
			query string
			want  []int64
		}{
			{"", []int64{1, 2, 3}},
			{"MEETING", []int64{1}},
			{"needle", []int64{2}},
			{"Roadmap", []int64{1}},
			{"absent", []int64{}},
		}

		for _, tc := range testCases {
			t.Run(tc.query, func(t *testing.T) {
				results, err := s.Search(tc.query)
				require.NoError(t, err)
				assert.Equal(t, tc.want, ids(results))
			})
		}
	})
}

func TestReturnedNotesAreCopies(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t)

		note, err := s.Create("t", "c", []string{"keep"})
		require.NoError(t, err)
		note.Tags[0] = "mutated"

		listed, err := s.List("")
		require.NoError(t, err)
		listed[0].Tags[0] = "mutated"

		got, err := s.Get(note.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"keep"}, got.Tags)
	})
}

func TestConcurrentCreatesGetUniqueIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t)

		const workers = 8
		const perWorker = 25

		var wg sync.WaitGroup
		idsCh := make(chan int64, workers*perWorker)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					note, err := s.Create("t", "c", nil)
					if err != nil {
						t.Error(err)
						return
					}
					idsCh <- note.ID
				}
			}()
		}
		wg.Wait()
		close(idsCh)

		seen := make(map[int64]bool)
		for id := range idsCh {
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
		assert.Len(t, seen, workers*perWorker)
	})
}

func TestNotFoundMessage(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(42)
	require.Error(t, err)

	var appErr *errortypes.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Note 42 not found", appErr.Message)
	assert.Equal(t, int64(42), appErr.Fields["note_id"])
}

func ids(notes []Note) []int64 {
	out := make([]int64, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}
