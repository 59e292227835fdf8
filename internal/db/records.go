package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/curingwithcare/care-site/internal/models"
)

// Fetcher is the row query service contract.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) ([]Row, error)
}

// Source is a Fetcher that can report its own health.
type Source interface {
	Fetcher
	Health(ctx context.Context) error
}

// Records provides typed reads over a Source.
type Records struct {
	src Source
}

// NewRecords wraps src.
func NewRecords(src Source) *Records {
	return &Records{src: src}
}

// Health reports the health of the underlying source.
func (r *Records) Health(ctx context.Context) error {
	return r.src.Health(ctx)
}

// ListBranches returns all branches ordered by city.
func (r *Records) ListBranches(ctx context.Context) ([]models.Branch, error) {
	return fetchAs[models.Branch](ctx, r.src, Query{
		Collection: CollectionBranches,
		Order:      &Order{Field: "city"},
	})
}

// BranchBySlug returns the branch with the given slug or ErrNotFound. Slugs
// are not unique in the table; the lowest id wins.
func (r *Records) BranchBySlug(ctx context.Context, slug string) (*models.Branch, error) {
	branches, err := fetchAs[models.Branch](ctx, r.src, Query{
		Collection: CollectionBranches,
		Filter:     &Eq{Field: "slug", Value: slug},
		Order:      &Order{Field: "id"},
	})
	if err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		return nil, fmt.Errorf("branch %q: %w", slug, ErrNotFound)
	}
	return &branches[0], nil
}

// ListEvents returns all events ordered by title.
func (r *Records) ListEvents(ctx context.Context) ([]models.Event, error) {
	return fetchAs[models.Event](ctx, r.src, Query{
		Collection: CollectionEvents,
		Order:      &Order{Field: "title"},
	})
}

// ListTeamMembers returns the members of one category. Board members are
// ordered by rank, everyone else by name.
func (r *Records) ListTeamMembers(ctx context.Context, category models.TeamCategory) ([]models.TeamMember, error) {
	if !category.Valid() {
		return nil, fetchFailed(CollectionTeamMembers, fmt.Errorf("%w: unknown category %q", ErrInvalidQuery, category))
	}
	order := &Order{Field: "name"}
	if category == models.TeamCategoryBoard {
		order = &Order{Field: "order_rank"}
	}
	return fetchAs[models.TeamMember](ctx, r.src, Query{
		Collection: CollectionTeamMembers,
		Filter:     &Eq{Field: "category", Value: string(category)},
		Order:      order,
	})
}

// LandingFiles returns the stored file list for one landing page section.
func (r *Records) LandingFiles(ctx context.Context, section string) (*models.LandingFiles, error) {
	rows, err := fetchAs[models.LandingFiles](ctx, r.src, Query{
		Collection: CollectionData,
		Filter:     &Eq{Field: "section", Value: section},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("landing section %q: %w", section, ErrNotFound)
	}
	return &rows[0], nil
}

// fetchAs runs q and decodes each row into T through its json tags, which
// also covers jsonb and array columns.
func fetchAs[T any](ctx context.Context, src Fetcher, q Query) ([]T, error) {
	rows, err := src.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fetchFailed(q.Collection, fmt.Errorf("encode rows: %w", err))
	}
	out := make([]T, 0, len(rows))
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fetchFailed(q.Collection, fmt.Errorf("decode rows: %w", err))
	}
	return out, nil
}
