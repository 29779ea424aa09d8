// Package genres reports the genres in the catalogue with their book and copy
// counts. Genres are not stored on their own; they come from books.genre.
package genres

import (
	"context"
	"fmt"
	"strings"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Service struct{ store *Store }

func NewService(d *db.DB) *Service { return &Service{store: NewStore(d)} }

func (s *Service) List(ctx context.Context) ([]Genre, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, name string) (*Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.ErrField("genre", "genre is required")
	}
	g, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apierr.ErrNotFound(fmt.Sprintf("no books found with genre %q", name))
	}
	return g, nil
}
