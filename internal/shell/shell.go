// Package shell is the terminal view of the application: a prompt loop
// that drives the search controller and the favorites store, rendering
// result pages, the pagination window and the detail view.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"bookfinder/internal/book"
	"bookfinder/internal/favorites"
	"bookfinder/internal/googlebooks"
	"bookfinder/internal/search"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
)

const historyFile = ".bookfinder_history"

// VolumeGetter is the single-item lookup used by the detail view.
type VolumeGetter interface {
	GetVolume(ctx context.Context, id string) (googlebooks.Volume, error)
}

type Shell struct {
	ctrl    *search.Controller
	favs    *favorites.Store
	volumes VolumeGetter
	log     logrus.FieldLogger
	out     io.Writer
}

func New(ctrl *search.Controller, favs *favorites.Store, volumes VolumeGetter, log logrus.FieldLogger) *Shell {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Shell{
		ctrl:    ctrl,
		favs:    favs,
		volumes: volumes,
		log:     log,
		out:     os.Stdout,
	}
}

// HandleState is wired as the controller's OnChange hook: it re-renders
// whenever a search transition happens, including async completions.
func (s *Shell) HandleState(st search.State) {
	if st.Loading {
		fmt.Fprintln(s.out, "Searching...")
		return
	}
	fmt.Fprint(s.out, renderResults(st))
}

// ScrollTop is wired as the controller's scroll hook.
func (s *Shell) ScrollTop() {
	// Terminal analog of window.scrollTo(0): start the new page on a clean
	// screen line.
	fmt.Fprint(s.out, "\n")
}

// Run reads and executes commands until quit or EOF.
func (s *Shell) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(s.out, "bookfinder — search books by title, author or genre ('help' for commands)")
	for {
		input, err := line.Prompt("bookfinder> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if quit := s.execute(ctx, input); quit {
			return nil
		}
	}
}

// execute runs one command line; it reports whether the loop should exit.
func (s *Shell) execute(ctx context.Context, input string) bool {
	cmd, arg := splitCommand(input)

	switch cmd {
	case "quit", "exit":
		return true

	case "help":
		fmt.Fprint(s.out, helpText)

	case "title":
		s.ctrl.UpdateFilter(ctx, search.FieldTitle, arg)
	case "author":
		s.ctrl.UpdateFilter(ctx, search.FieldAuthor, arg)
	case "genre":
		s.ctrl.UpdateFilter(ctx, search.FieldGenre, arg)

	case "search":
		s.ctrl.ResetPagination()
		s.ctrl.Submit(ctx, 1)

	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintln(s.out, "usage: page <number>")
			break
		}
		s.ctrl.ChangePage(ctx, n)
	case "next":
		s.ctrl.ChangePage(ctx, s.ctrl.State().CurrentPage+1)
	case "prev":
		s.ctrl.ChangePage(ctx, s.ctrl.State().CurrentPage-1)

	case "show":
		s.showDetail(ctx, arg)

	case "fav":
		s.addFavorite(ctx, arg)
	case "unfav":
		s.removeFavorite(ctx, arg)
	case "favs":
		fmt.Fprint(s.out, renderFavorites(s.favs.List()))
	case "clear-favs":
		s.favs.Clear(ctx)
		fmt.Fprintln(s.out, "Favorites cleared.")

	case "url":
		st := s.ctrl.State()
		if !st.HasSearched {
			fmt.Fprintln(s.out, "Nothing to share yet, run a search first.")
			break
		}
		fmt.Fprintf(s.out, "?%s\n", st.ShareQuery())

	default:
		fmt.Fprintf(s.out, "Unknown command %q, try 'help'.\n", cmd)
	}
	return false
}

// showDetail fetches and renders the single-book view.
func (s *Shell) showDetail(ctx context.Context, arg string) {
	bk, ok := s.resolveResult(arg)
	if !ok {
		return
	}

	v, err := s.volumes.GetVolume(ctx, bk.ID)
	if err != nil {
		if errors.Is(err, googlebooks.ErrNotFound) {
			fmt.Fprintln(s.out, "Book not found. It may have been removed from the catalog.")
			return
		}
		s.log.WithError(err).Warn("volume lookup failed")
		fmt.Fprintln(s.out, "Failed to load book details, please try again.")
		return
	}
	full := book.FromVolume(v)
	fmt.Fprint(s.out, renderDetail(full, s.favs.IsFavorite(full.ID)))
}

func (s *Shell) addFavorite(ctx context.Context, arg string) {
	bk, ok := s.resolveResult(arg)
	if !ok {
		return
	}
	if s.favs.Add(ctx, bk) {
		fmt.Fprintf(s.out, "Added %q to favorites (%d total).\n", bk.Title, s.favs.Count())
	} else {
		fmt.Fprintf(s.out, "%q is already a favorite.\n", bk.Title)
	}
}

func (s *Shell) removeFavorite(ctx context.Context, arg string) {
	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		favs := s.favs.List()
		if n < 1 || n > len(favs) {
			fmt.Fprintf(s.out, "No favorite #%d.\n", n)
			return
		}
		id = favs[n-1].ID
	}
	if s.favs.Remove(ctx, id) {
		fmt.Fprintln(s.out, "Removed from favorites.")
	} else {
		fmt.Fprintln(s.out, "Not in favorites.")
	}
}

// resolveResult maps a 1-based result index from the current page to a book.
func (s *Shell) resolveResult(arg string) (book.Book, bool) {
	st := s.ctrl.State()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(st.Books) {
		fmt.Fprintf(s.out, "Pick a result number between 1 and %d.\n", len(st.Books))
		return book.Book{}, false
	}
	return st.Books[n-1], true
}

// SeedFromShare decodes a shared query string (as printed by 'url') into the
// controller and, when it names criteria, replays the search.
func (s *Shell) SeedFromShare(ctx context.Context, share string) {
	v, err := url.ParseQuery(strings.TrimPrefix(share, "?"))
	if err != nil {
		s.log.WithError(err).Warn("ignoring malformed share string")
		return
	}
	filters, page := search.DecodeQuery(v)
	s.ctrl.Seed(filters, page)
	if !filters.IsBlank() {
		s.ctrl.Submit(ctx, page)
	}
}

func splitCommand(input string) (cmd, arg string) {
	parts := strings.SplitN(input, " ", 2)
	cmd = strings.ToLower(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}

const helpText = `Commands:
  title <text>    set the title filter (auto-searches after a pause)
  author <text>   set the author filter
  genre <text>    set the genre filter
  search          run the search from page 1
  page <n>        jump to page n
  next / prev     step through pages
  show <n>        show details for result n
  fav <n>         add result n to favorites
  unfav <n|id>    remove a favorite
  favs            list favorites
  clear-favs      remove all favorites
  url             print the shareable query string
  quit            exit
`
