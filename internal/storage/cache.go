package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/curingwithcare/care-site/internal/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Listing is the outcome of listing one folder.
type Listing struct {
	Names []string
	Err   error
}

type cacheEntry struct {
	names   []string
	expires time.Time
}

// CachedLister caches folder listings by prefix for a fixed TTL. Entries are
// dropped when they expire or on Invalidate/InvalidateAll. Failed listings
// are never cached.
type CachedLister struct {
	next Lister
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewCachedLister wraps next. A ttl of zero disables caching but keeps
// concurrent identical listings de-duplicated.
func NewCachedLister(next Lister, ttl time.Duration) *CachedLister {
	return &CachedLister{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
}

func normalize(prefix string) string { return strings.Trim(prefix, "/") }

func (c *CachedLister) get(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return append([]string(nil), e.names...), true
}

func (c *CachedLister) put(key string, names []string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{names: append([]string(nil), names...), expires: c.now().Add(c.ttl)}
}

// Invalidate drops the cached listing for prefix.
func (c *CachedLister) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, normalize(prefix))
}

// InvalidateAll empties the cache and returns how many entries were dropped.
func (c *CachedLister) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = map[string]cacheEntry{}
	return n
}

// Len returns the number of cached folders.
func (c *CachedLister) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// sharedTimeout bounds a listing shared by several callers.
const sharedTimeout = 15 * time.Second

// shared runs fn once for all concurrent callers of key. fn gets a context
// detached from the caller that started it, so cancelling one request never
// fails the others; each caller still returns when its own ctx is done.
func (c *CachedLister) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedTimeout)
		defer cancel()
		return fn(fctx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func isListError(err error) bool {
	var le *ListError
	return errors.As(err, &le)
}

// ListFolder serves prefix from cache or lists it through the wrapped lister.
func (c *CachedLister) ListFolder(ctx context.Context, prefix string) ([]string, error) {
	key := normalize(prefix)
	if key == "" {
		return []string{}, nil
	}
	if names, ok := c.get(key); ok {
		return names, nil
	}
	v, err := c.shared(ctx, "folder:"+key, func(ctx context.Context) (interface{}, error) {
		names, err := c.next.ListFolder(ctx, key)
		if err != nil {
			return nil, err
		}
		c.put(key, names)
		return names, nil
	})
	if err != nil {
		if ctx.Err() != nil && !isListError(err) {
			return nil, &ListError{Prefix: key, Err: err}
		}
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

// ListFolders lists several folders. Uncached siblings sharing a parent are
// fetched with one subtree listing when the wrapped lister supports it;
// everything else is listed concurrently. Each prefix gets its own result so
// one failure never affects the others.
func (c *CachedLister) ListFolders(ctx context.Context, prefixes []string) map[string]Listing {
	out := make(map[string]Listing, len(prefixes))
	var mu sync.Mutex
	set := func(key string, l Listing) {
		mu.Lock()
		out[key] = l
		mu.Unlock()
	}

	byParent := map[string][]string{}
	for _, p := range prefixes {
		key := normalize(p)
		if _, done := out[key]; done {
			continue
		}
		if key == "" {
			out[key] = Listing{Names: []string{}}
			continue
		}
		if names, ok := c.get(key); ok {
			out[key] = Listing{Names: names}
			continue
		}
		out[key] = Listing{}
		parent := path.Dir(key)
		byParent[parent] = append(byParent[parent], key)
	}

	var singles []string
	tree, canTree := c.next.(TreeLister)
	var g errgroup.Group
	g.SetLimit(8)
	for parent, keys := range byParent {
		if !canTree || len(keys) < 2 || parent == "." {
			singles = append(singles, keys...)
			continue
		}
		parent, keys := parent, keys
		g.Go(func() error {
			v, err := c.shared(ctx, "tree:"+parent, func(ctx context.Context) (interface{}, error) {
				return tree.ListTree(ctx, parent)
			})
			if err != nil {
				logging.LogKV("warn", "batched listing failed, listing folders individually", map[string]interface{}{
					"parent": parent,
					"error":  err,
				})
				for _, k := range keys {
					names, err := c.ListFolder(ctx, k)
					set(k, Listing{Names: names, Err: err})
				}
				return nil
			}
			grouped := v.(map[string][]string)
			for _, k := range keys {
				names := grouped[k]
				if names == nil {
					names = []string{}
				}
				c.put(k, names)
				set(k, Listing{Names: append([]string(nil), names...)})
			}
			return nil
		})
	}
	for _, k := range singles {
		k := k
		g.Go(func() error {
			names, err := c.ListFolder(ctx, k)
			set(k, Listing{Names: names, Err: err})
			return nil
		})
	}
	_ = g.Wait()
	return out
}
