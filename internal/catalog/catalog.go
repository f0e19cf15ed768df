// Package catalog provides lookup over the exercise database. Entries are
// read-only to the rest of the system; the importer seeds them.
package catalog

import (
	"context"
	"log/slog"

	"github.com/claude/ironquest/internal/models"
	"github.com/claude/ironquest/internal/storage"
)

// Filters narrows a catalog search. Empty fields match everything.
type Filters struct {
	BodyPart   string
	Equipment  string
	Difficulty string
}

// DefaultPageSize bounds result pages when the caller does not specify one.
const DefaultPageSize = 20

// MaxPageSize caps caller-requested page sizes.
const MaxPageSize = 100

// Service answers exercise catalog queries.
type Service struct {
	db  *storage.DB
	log *slog.Logger
}

// NewService creates a catalog Service.
func NewService(db *storage.DB, log *slog.Logger) *Service {
	return &Service{db: db, log: log}
}

// Search returns one page of exercises matching the query and filters, plus
// the total match count. Pages are 1-based. Results always carry a
// normalized difficulty tier.
func (s *Service) Search(ctx context.Context, filters Filters, query string, page, perPage int) ([]models.Exercise, int, error) {
	page, perPage = clamp(page, perPage)

	items, total, err := s.db.SearchExercises(ctx, query,
		filters.BodyPart, filters.Equipment, filters.Difficulty,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].Difficulty = items[i].Difficulty.Normalize()
	}
	return items, total, nil
}

func clamp(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}
	return page, perPage
}
