package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookfinder/internal/googlebooks"
	"bookfinder/internal/search/mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func volume(id, title string) googlebooks.Volume {
	return googlebooks.Volume{ID: id, VolumeInfo: googlebooks.VolumeInfo{Title: title}}
}

func page(total int, volumes ...googlebooks.Volume) googlebooks.SearchResult {
	return googlebooks.SearchResult{Items: volumes, TotalItems: total}
}

// stateRecorder collects OnChange snapshots so tests can wait for async
// transitions deterministically.
type stateRecorder struct {
	ch chan State
}

func newRecorder() *stateRecorder {
	return &stateRecorder{ch: make(chan State, 64)}
}

func (r *stateRecorder) onChange(st State) {
	r.ch <- st
}

func (r *stateRecorder) waitFor(t *testing.T, pred func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-r.ch:
			if pred(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timed out waiting for controller state")
		}
	}
}

func settled(st State) bool { return st.HasSearched && !st.Loading }

func newTestController(t *testing.T, opts Options) (*Controller, *mocks.MockFinder, *stateRecorder) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	finder := mocks.NewMockFinder(ctrl)

	rec := newRecorder()
	opts.OnChange = rec.onChange
	if opts.Debounce <= 0 {
		// Keep the auto-search timer far away unless a test wants it.
		opts.Debounce = time.Hour
	}
	c := NewController(finder, opts)
	t.Cleanup(c.Close)
	return c, finder, rec
}

func TestController_SubmitWithoutCriteria(t *testing.T) {
	c, _, rec := newTestController(t, Options{})

	// No EXPECT on the finder: any transport call fails the test.
	c.Submit(context.Background(), 1)

	st := rec.waitFor(t, func(st State) bool { return st.Err != nil })
	assert.ErrorIs(t, st.Err, ErrNoCriteria)
	assert.False(t, st.Loading)
	assert.False(t, st.HasSearched)
}

func TestController_SubmitSuccess(t *testing.T) {
	c, finder, rec := newTestController(t, Options{})
	c.Seed(Filters{Title: "dune"}, 1)

	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune", 0, ItemsPerPage).
		Return(page(25, volume("a", "Dune"), volume("b", "Dune Messiah")), nil)

	c.Submit(context.Background(), 1)

	st := rec.waitFor(t, settled)
	assert.NoError(t, st.Err)
	assert.Equal(t, 25, st.TotalItems)
	assert.Equal(t, 3, st.TotalPages())
	assert.Equal(t, 1, st.CurrentPage)
	assert.Len(t, st.Books, 2)
	assert.Equal(t, "Dune", st.Books[0].Title)
	assert.Equal(t, "title=dune", st.ShareQuery())
}

func TestController_EmptyResultIsNotAnError(t *testing.T) {
	c, finder, rec := newTestController(t, Options{})
	c.Seed(Filters{Title: "zzzz"}, 1)

	finder.EXPECT().
		Search(gomock.Any(), "intitle:zzzz", 0, ItemsPerPage).
		Return(page(0), nil)

	c.Submit(context.Background(), 1)

	st := rec.waitFor(t, settled)
	assert.NoError(t, st.Err)
	assert.True(t, st.HasSearched)
	assert.Empty(t, st.Books)
	assert.Equal(t, 0, st.TotalItems)
}

func TestController_FailureResetsResultsKeepsFilters(t *testing.T) {
	c, finder, rec := newTestController(t, Options{})
	c.Seed(Filters{Title: "dune", Author: "herbert"}, 1)

	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune+inauthor:herbert", 0, ItemsPerPage).
		Return(page(25, volume("a", "Dune")), nil)
	c.Submit(context.Background(), 1)
	rec.waitFor(t, settled)

	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune+inauthor:herbert", ItemsPerPage, ItemsPerPage).
		Return(googlebooks.SearchResult{}, errors.New("boom"))
	c.ChangePage(context.Background(), 2)

	st := rec.waitFor(t, func(st State) bool { return st.Err != nil })
	assert.ErrorIs(t, st.Err, ErrSearchFailed)
	assert.Empty(t, st.Books)
	assert.Equal(t, 0, st.TotalItems)
	// The user can retry without re-entering anything.
	assert.Equal(t, Filters{Title: "dune", Author: "herbert"}, st.Filters)
	assert.Equal(t, 1, st.CurrentPage)
}

func TestController_ChangePageOutOfRangeIsNoOp(t *testing.T) {
	c, finder, rec := newTestController(t, Options{})
	c.Seed(Filters{Title: "dune"}, 1)

	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune", 0, ItemsPerPage).
		Return(page(25, volume("a", "Dune")), nil)
	c.Submit(context.Background(), 1)
	rec.waitFor(t, settled)

	// totalItems=25, itemsPerPage=12 -> 3 pages; both calls must not fetch.
	c.ChangePage(context.Background(), 0)
	c.ChangePage(context.Background(), 4)

	st := c.State()
	assert.Equal(t, 1, st.CurrentPage)
	assert.Equal(t, 25, st.TotalItems)
}

func TestController_ChangePageWhileLoadingIsNoOp(t *testing.T) {
	c, finder, rec := newTestController(t, Options{})
	c.Seed(Filters{Title: "dune"}, 1)

	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune", 0, ItemsPerPage).
		Return(page(25, volume("a", "Dune")), nil)
	c.Submit(context.Background(), 1)
	rec.waitFor(t, settled)

	release := make(chan struct{})
	started := make(chan struct{})
	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune", ItemsPerPage, ItemsPerPage).
		DoAndReturn(func(context.Context, string, int, int) (googlebooks.SearchResult, error) {
			close(started)
			<-release
			return page(25, volume("b", "Dune Messiah")), nil
		})

	c.ChangePage(context.Background(), 2)
	<-started

	// In flight: a further page change must not issue a request.
	c.ChangePage(context.Background(), 3)

	close(release)
	st := rec.waitFor(t, func(st State) bool { return !st.Loading && st.CurrentPage == 2 })
	assert.Equal(t, "Dune Messiah", st.Books[0].Title)
}

func TestController_LastRequestWins(t *testing.T) {
	c, finder, rec := newTestController(t, Options{})
	c.Seed(Filters{Title: "dune"}, 1)

	release := make(chan struct{})
	started := make(chan struct{})
	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune", 0, ItemsPerPage).
		DoAndReturn(func(context.Context, string, int, int) (googlebooks.SearchResult, error) {
			close(started)
			<-release
			return page(25, volume("a", "slow page one")), nil
		})
	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune", ItemsPerPage, ItemsPerPage).
		Return(page(25, volume("b", "fast page two")), nil)

	c.Submit(context.Background(), 1)
	<-started
	c.Submit(context.Background(), 2)

	st := rec.waitFor(t, func(st State) bool { return !st.Loading && st.CurrentPage == 2 })
	assert.Equal(t, "fast page two", st.Books[0].Title)

	// Let the stale page-one response land; it must be discarded.
	close(release)
	time.Sleep(50 * time.Millisecond)

	st = c.State()
	assert.Equal(t, 2, st.CurrentPage)
	assert.Equal(t, "fast page two", st.Books[0].Title)
	assert.False(t, st.Loading)
}

func TestController_ResetPaginationStartsAtPageOne(t *testing.T) {
	c, finder, rec := newTestController(t, Options{})
	c.Seed(Filters{Title: "dune"}, 1)

	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune", 2*ItemsPerPage, ItemsPerPage).
		Return(page(100, volume("c", "Children of Dune")), nil)
	c.Submit(context.Background(), 3)
	rec.waitFor(t, func(st State) bool { return !st.Loading && st.CurrentPage == 3 })

	c.ResetPagination()
	st := c.State()
	assert.Equal(t, 1, st.CurrentPage)
	assert.Equal(t, 0, st.TotalItems)

	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune", 0, ItemsPerPage).
		Return(page(100, volume("a", "Dune")), nil)
	c.Submit(context.Background(), 1)

	st = rec.waitFor(t, func(st State) bool { return !st.Loading && st.TotalItems == 100 })
	assert.Equal(t, 1, st.CurrentPage)
}

func TestController_FilterEditsDebounceIntoOneSearch(t *testing.T) {
	c, finder, rec := newTestController(t, Options{Debounce: 100 * time.Millisecond})

	finder.EXPECT().
		Search(gomock.Any(), "intitle:dune", 0, ItemsPerPage).
		Return(page(1, volume("a", "Dune")), nil)

	ctx := context.Background()
	c.UpdateFilter(ctx, FieldTitle, "d")
	c.UpdateFilter(ctx, FieldTitle, "du")
	c.UpdateFilter(ctx, FieldTitle, "dune")

	st := rec.waitFor(t, settled)
	assert.Equal(t, 1, st.CurrentPage)
	assert.Equal(t, "Dune", st.Books[0].Title)
}

func TestController_AutoSearchSkipsWhenAllBlank(t *testing.T) {
	c, _, rec := newTestController(t, Options{Debounce: 20 * time.Millisecond})

	// No EXPECT: clearing the only filter must not reach the transport, and
	// must not surface the validation message either.
	c.UpdateFilter(context.Background(), FieldTitle, "")

	time.Sleep(80 * time.Millisecond)
	st := c.State()
	assert.NoError(t, st.Err)
	assert.False(t, st.HasSearched)
	_ = rec
}
