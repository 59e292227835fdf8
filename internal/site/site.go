// Package site loads the data behind every page. Each loader fetches its
// sections concurrently and settles them independently into shell states.
package site

import (
	"context"
	"errors"

	"github.com/curingwithcare/care-site/internal/content"
	"github.com/curingwithcare/care-site/internal/db"
	"github.com/curingwithcare/care-site/internal/shell"
	"github.com/curingwithcare/care-site/internal/storage"
	"github.com/curingwithcare/care-site/internal/viewmodel"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownSection is returned by Section for an unknown page/section pair.
var ErrUnknownSection = errors.New("unknown section")

// FolderLister lists several storage folders at once, one result per prefix.
type FolderLister interface {
	ListFolders(ctx context.Context, prefixes []string) map[string]storage.Listing
}

// Site holds the dependencies shared by the page loaders.
type Site struct {
	records      *db.Records
	resolver     viewmodel.URLResolver
	images       FolderLister
	content      *content.Content
	featuredCity string
}

// Options configures New.
type Options struct {
	Records  *db.Records
	Resolver viewmodel.URLResolver
	Images   FolderLister
	Content  *content.Content
	// FeaturedCity is pinned first on the branch and events pages.
	FeaturedCity string
}

func New(opts Options) *Site {
	c := opts.Content
	if c == nil {
		c = content.Default()
	}
	return &Site{
		records:      opts.Records,
		resolver:     opts.Resolver,
		images:       opts.Images,
		content:      c,
		featuredCity: opts.FeaturedCity,
	}
}

// Content returns the static site copy.
func (s *Site) Content() *content.Content { return s.content }

// Health reports whether the row store is reachable.
func (s *Site) Health(ctx context.Context) error { return s.records.Health(ctx) }

// loadAll runs tasks concurrently. Each task returns a function that applies
// its result; results that arrive after ctx is done are discarded.
func loadAll(ctx context.Context, tasks ...func(context.Context) func()) {
	var view shell.View
	gen := view.Begin()
	stop := context.AfterFunc(ctx, view.Close)
	defer stop()

	var g errgroup.Group
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			view.Apply(gen, task(ctx))
			return nil
		})
	}
	_ = g.Wait()
}
