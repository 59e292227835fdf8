package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/curingwithcare/care-site/internal/db"
	"github.com/curingwithcare/care-site/internal/storage"
	"github.com/curingwithcare/care-site/internal/viewmodel"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSectionSettle(t *testing.T) {
	fetchErr := &db.FetchError{Collection: db.CollectionBranches, Message: "Failed to load branch data", Err: errors.New("dial tcp: timeout")}

	tests := []struct {
		name    string
		items   []int
		err     error
		state   State
		message string
		items2  []int
	}{
		{"success", []int{1, 2}, nil, StateSuccess, "", []int{1, 2}},
		{"empty", nil, nil, StateEmpty, "", []int{}},
		{"not found", nil, fmt.Errorf("branch %q: %w", "nonexistent", db.ErrNotFound), StateNotFound, "Not found", []int{}},
		{"fetch failed", []int{1}, fetchErr, StateError, "Failed to load branch data", []int{}},
		{"list failed", nil, &storage.ListError{Prefix: "events/x", Err: errors.New("boom")}, StateError, "Failed to load images", []int{}},
		{"unknown", nil, errors.New("boom"), StateError, "An unexpected error occurred", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSection[int]("x", "/fragments/x/y")
			if s.State != StateLoading {
				t.Fatalf("expected loading, got %s", s.State)
			}
			s.Settle(tt.items, tt.err)
			if s.State != tt.state {
				t.Fatalf("expected %s, got %s", tt.state, s.State)
			}
			if s.Message != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, s.Message)
			}
			if diff := cmp.Diff(tt.items2, s.Items); diff != "" {
				t.Fatalf("items mismatch (-want +got):\n%s", diff)
			}
			if s.RetryURL != "/fragments/x/y" {
				t.Fatalf("retry url lost")
			}
		})
	}
}

func TestSectionVisible(t *testing.T) {
	s := NewSection[string]("research", "")
	s.Settle(nil, nil)
	if s.Visible() {
		t.Fatalf("empty section must be omitted")
	}
	s.Settle([]string{"a"}, nil)
	if !s.Visible() || s.Failed() {
		t.Fatalf("success section must render")
	}
}

func TestViewDropsStaleResults(t *testing.T) {
	var v View
	first := v.Begin()
	second := v.Begin()

	applied := ""
	if v.Apply(first, func() { applied = "first" }) {
		t.Fatalf("stale generation must be dropped")
	}
	if !v.Apply(second, func() { applied = "second" }) || applied != "second" {
		t.Fatalf("current generation must apply, got %q", applied)
	}

	v.Close()
	if v.Apply(second, func() { applied = "late" }) {
		t.Fatalf("closed view must drop results")
	}
	if applied != "second" || !v.Closed() {
		t.Fatalf("unexpected state after close")
	}
}

func TestViewConcurrentApply(t *testing.T) {
	var v View
	gen := v.Begin()
	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.Apply(gen, func() {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	if count != 20 {
		t.Fatalf("expected 20 applies, got %d", count)
	}
}

func TestLightbox(t *testing.T) {
	slides := viewmodel.Slides("Relay", []viewmodel.Image{{Src: "a", Alt: "a.jpg"}, {Src: "b", Alt: "b.jpg"}, {Src: "c", Alt: "c.jpg"}})
	l := NewLightbox(slides)
	if _, ok := l.Current(); ok {
		t.Fatalf("new lightbox must be closed")
	}

	l.Show(10)
	if !l.Open || l.Index != 2 {
		t.Fatalf("expected clamped index 2, got %d", l.Index)
	}
	l.Next()
	if l.Index != 0 {
		t.Fatalf("next should wrap to 0, got %d", l.Index)
	}
	l.Prev()
	if l.Index != 2 || l.PrevIndex() != 1 || l.NextIndex() != 0 {
		t.Fatalf("prev should wrap to 2, got %d", l.Index)
	}
	cur, ok := l.Current()
	if !ok || cur.Alt != "Relay - c.jpg" {
		t.Fatalf("unexpected current slide %+v", cur)
	}
	l.Show(-3)
	if l.Index != 0 {
		t.Fatalf("negative index should clamp to 0")
	}
	l.Hide()
	if l.Open {
		t.Fatalf("expected closed")
	}

	empty := NewLightbox(nil)
	empty.Show(0)
	empty.Next()
	if empty.Open {
		t.Fatalf("empty gallery must not open")
	}
}

func TestGather_IsolatesFailures(t *testing.T) {
	ctx := context.Background()
	res := Gather(ctx, 5, 2, func(ctx context.Context, i int) (string, error) {
		// finish out of order
		time.Sleep(time.Duration(5-i) * time.Millisecond)
		if i == 2 {
			return "", errors.New("boom")
		}
		return fmt.Sprintf("item-%d", i), nil
	})
	if len(res) != 5 {
		t.Fatalf("expected 5 results, got %d", len(res))
	}
	for i, r := range res {
		if r.Index != i {
			t.Fatalf("result %d bound to index %d", i, r.Index)
		}
	}
	if res[2].Err == nil {
		t.Fatalf("expected failure at index 2")
	}
	got := Succeeded(res)
	want := []string{"item-0", "item-1", "item-3", "item-4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGather_Zero(t *testing.T) {
	res := Gather(context.Background(), 0, 0, func(ctx context.Context, i int) (int, error) {
		t.Fatalf("load must not run")
		return 0, nil
	})
	if len(res) != 0 || len(Succeeded(res)) != 0 {
		t.Fatalf("expected no results")
	}
}
