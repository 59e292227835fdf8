package db

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/seed.yaml
var defaultSeed []byte

// FixtureStore serves collections from YAML seed data. It backs local
// development when no database is configured and the package tests.
type FixtureStore struct {
	mu   sync.RWMutex
	data map[string][]Row
	// failing holds per-collection errors returned by Fetch to simulate an outage.
	failing map[string]error
}

// NewFixtureStore parses YAML of the form `collection: [ {field: value} ]`.
func NewFixtureStore(seed []byte) (*FixtureStore, error) {
	var raw map[string][]map[string]any
	if err := yaml.Unmarshal(seed, &raw); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	data := make(map[string][]Row, len(raw))
	for coll, rows := range raw {
		if _, ok := columns[coll]; !ok {
			return nil, fmt.Errorf("%w: unknown collection %q in fixtures", ErrInvalidQuery, coll)
		}
		for _, r := range rows {
			data[coll] = append(data[coll], Row(r))
		}
	}
	return &FixtureStore{data: data, failing: map[string]error{}}, nil
}

// LoadFixtureStore reads seed data from path, or the embedded seed when path is empty.
func LoadFixtureStore(path string) (*FixtureStore, error) {
	if path == "" {
		return NewFixtureStore(defaultSeed)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	return NewFixtureStore(b)
}

// Fail makes every Fetch against collection return err. A nil err clears it.
func (s *FixtureStore) Fail(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failing, collection)
		return
	}
	s.failing[collection] = err
}

// Health always succeeds for fixtures.
func (s *FixtureStore) Health(ctx context.Context) error { return nil }

// Fetch applies the filter and ordering in memory with Postgres-like
// semantics: NULLs sort last ascending and first descending.
func (s *FixtureStore) Fetch(ctx context.Context, q Query) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, fetchFailed(q.Collection, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fetchFailed(q.Collection, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failing[q.Collection]; err != nil {
		return nil, fetchFailed(q.Collection, err)
	}

	var out []Row
	for _, r := range s.data[q.Collection] {
		if q.Filter != nil && !equalValues(r[q.Filter.Field], q.Filter.Value) {
			continue
		}
		out = append(out, project(r, columns[q.Collection]))
	}
	if q.Order != nil {
		field, desc := q.Order.Field, q.Order.Desc
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i][field], out[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	return out, nil
}

// project copies r restricted to cols, filling absent columns with nil.
func project(r Row, cols []string) Row {
	out := make(Row, len(cols))
	for _, c := range cols {
		out[c] = r[c]
	}
	return out
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// compareValues orders NULL after every value.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
