package favorites

import (
	"context"
	"sync"

	"bookfinder/internal/book"

	"github.com/sirupsen/logrus"
)

// Repository is the durable local storage behind the favorites set.
type Repository interface {
	Load(ctx context.Context) ([]book.Book, error)
	Save(ctx context.Context, books []book.Book) error
}

// Store holds the user's favorite books: an ordered set, unique by book id.
// The in-memory state is authoritative; every mutation persists the
// resulting set, and a failed write is a logged warning, never an error the
// caller has to handle.
type Store struct {
	repo Repository
	log  logrus.FieldLogger

	mu    sync.RWMutex
	books []book.Book
}

func NewStore(repo Repository, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{repo: repo, log: log}
}

// Rehydrate loads the persisted set, replacing the in-memory state. Called
// once at startup; an empty repository yields an empty set.
func (s *Store) Rehydrate(ctx context.Context) error {
	books, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
	return nil
}

// Add appends a copy of b unless a favorite with the same id exists.
// It reports whether the set changed.
func (s *Store) Add(ctx context.Context, b book.Book) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, have := range s.books {
		if have.ID == b.ID {
			return false
		}
	}
	s.books = append(s.books, b.Clone())
	s.persistLocked(ctx)
	return true
}

// Remove deletes the favorite with the given id, if present.
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, have := range s.books {
		if have.ID == id {
			s.books = append(s.books[:i], s.books[i+1:]...)
			s.persistLocked(ctx)
			return true
		}
	}
	return false
}

// Clear empties the set.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = nil
	s.persistLocked(ctx)
}

// IsFavorite reports membership by book id.
func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, have := range s.books {
		if have.ID == id {
			return true
		}
	}
	return false
}

// List returns the favorites in insertion order, as independent copies.
func (s *Store) List() []book.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]book.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b.Clone())
	}
	return out
}

// Count returns the number of favorites.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// persistLocked writes the current set while the mutation still holds the
// lock, so memory and storage are never observably out of step.
func (s *Store) persistLocked(ctx context.Context) {
	snapshot := append([]book.Book(nil), s.books...)
	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.log.WithError(err).Warn("failed to persist favorites, in-memory state kept")
	}
}
