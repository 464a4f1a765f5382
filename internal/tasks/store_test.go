package tasks

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpad/internal/model"
)

type stubFetcher struct {
	tasks   []model.Task
	err     error
	calls   atomic.Int32
	entered chan struct{} // closed when the first fetch starts, if set
	release chan struct{} // fetch blocks until closed, if set
}

func (f *stubFetcher) FetchTasks(ctx context.Context) ([]model.Task, error) {
	if f.calls.Add(1) == 1 && f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	return f.tasks, f.err
}

func newStoreForTests(f *stubFetcher) *Store {
	return NewStore(f, log.New(io.Discard, "", 0))
}

func seedTasks(n int) []model.Task {
	out := make([]model.Task, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Task{ID: i, UserID: 1, Title: "task", Completed: i%2 == 0})
	}
	return out
}

func TestStore_FetchAll_Success(t *testing.T) {
	f := &stubFetcher{tasks: seedTasks(5)}
	s := newStoreForTests(f)

	s.FetchAll(context.Background())

	snap := s.Snapshot()
	assert.Equal(t, StatusSucceeded, snap.Status)
	assert.Empty(t, snap.Err)
	require.Len(t, snap.Items, 5)
	// Remote ordering is preserved.
	for i, task := range snap.Items {
		assert.Equal(t, i+1, task.ID)
	}
}

func TestStore_FetchAll_Failure(t *testing.T) {
	f := &stubFetcher{err: errors.New("remote returned status 503")}
	s := newStoreForTests(f)

	s.FetchAll(context.Background())

	snap := s.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.NotEmpty(t, snap.Err)
	assert.Empty(t, snap.Items)
}

func TestStore_FetchAll_InertWhileLoading(t *testing.T) {
	f := &stubFetcher{
		tasks:   seedTasks(3),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newStoreForTests(f)

	done := make(chan struct{})
	go func() {
		s.FetchAll(context.Background())
		close(done)
	}()
	<-f.entered

	// Second invocation during loading must not issue another request.
	s.FetchAll(context.Background())
	assert.Equal(t, int32(1), f.calls.Load())

	close(f.release)
	<-done
	assert.Equal(t, StatusSucceeded, s.Snapshot().Status)
}

func TestStore_FetchAll_InertAfterCompletedCycle(t *testing.T) {
	f := &stubFetcher{tasks: seedTasks(2)}
	s := newStoreForTests(f)

	s.FetchAll(context.Background())
	s.FetchAll(context.Background())
	assert.Equal(t, int32(1), f.calls.Load())

	// A failed cycle is just as final; no automatic retry exists.
	ff := &stubFetcher{err: errors.New("boom")}
	fs := newStoreForTests(ff)
	fs.FetchAll(context.Background())
	fs.FetchAll(context.Background())
	assert.Equal(t, int32(1), ff.calls.Load())
}

func TestStore_Add_PrependsAndContinuesIDSequence(t *testing.T) {
	f := &stubFetcher{tasks: []model.Task{{ID: 1, Title: "A", Completed: false}}}
	s := newStoreForTests(f)
	s.FetchAll(context.Background())

	got := s.Add("B", true, 0)

	assert.Equal(t, model.Task{ID: 2, UserID: 1, Title: "B", Completed: true}, got)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 2)
	assert.Equal(t, model.Task{ID: 2, UserID: 1, Title: "B", Completed: true}, snap.Items[0])
	assert.Equal(t, model.Task{ID: 1, Title: "A", Completed: false}, snap.Items[1])

	// The prepend must not stall the sequence: each add keeps advancing past
	// the highest id present.
	assert.Equal(t, 3, s.Add("C", false, 0).ID)
	assert.Equal(t, 4, s.Add("D", false, 0).ID)
}

func TestStore_Add_EmptyCollectionStartsAtOne(t *testing.T) {
	s := newStoreForTests(&stubFetcher{})

	first := s.Add("first", false, 0)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 1, first.UserID)

	second := s.Add("second", false, 7)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 7, second.UserID)
}

func TestStore_IDsStayUniqueUnderCRUD(t *testing.T) {
	f := &stubFetcher{tasks: seedTasks(10)}
	s := newStoreForTests(f)
	s.FetchAll(context.Background())

	s.Add("a", false, 0)
	s.Remove(3)
	s.Add("b", true, 0)
	title := "renamed"
	s.Update(5, Patch{Title: &title})
	s.Remove(11)
	s.Add("c", false, 0)

	seen := map[int]bool{}
	for _, task := range s.Snapshot().Items {
		assert.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
	}
}

func TestStore_Update_MergesPatchInPlace(t *testing.T) {
	f := &stubFetcher{tasks: seedTasks(3)}
	s := newStoreForTests(f)
	s.FetchAll(context.Background())

	done := true
	got, found := s.Update(2, Patch{Completed: &done})
	assert.True(t, found)
	assert.True(t, got.Completed)
	assert.Equal(t, "task", got.Title, "unspecified fields are preserved")

	title := "new title"
	got, found = s.Update(2, Patch{Title: &title})
	assert.True(t, found)
	assert.Equal(t, "new title", got.Title)
	assert.True(t, got.Completed)
}

func TestStore_Update_AbsentIDIsNoOp(t *testing.T) {
	f := &stubFetcher{tasks: seedTasks(3)}
	s := newStoreForTests(f)
	s.FetchAll(context.Background())

	before := s.Snapshot().Items

	title := "ghost"
	_, found := s.Update(99, Patch{Title: &title})
	assert.False(t, found)
	assert.Equal(t, before, s.Snapshot().Items)
}

func TestStore_Remove_AbsentIDIsNoOp(t *testing.T) {
	f := &stubFetcher{tasks: seedTasks(3)}
	s := newStoreForTests(f)
	s.FetchAll(context.Background())

	assert.False(t, s.Remove(99))
	assert.Len(t, s.Snapshot().Items, 3)

	assert.True(t, s.Remove(2))
	assert.Len(t, s.Snapshot().Items, 2)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	f := &stubFetcher{tasks: seedTasks(2)}
	s := newStoreForTests(f)
	s.FetchAll(context.Background())

	snap := s.Snapshot()
	snap.Items[0].Title = "mutated"

	assert.Equal(t, "task", s.Snapshot().Items[0].Title)
}
