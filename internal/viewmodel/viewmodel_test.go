package viewmodel

import (
	"fmt"
	"strings"
	"testing"

	"github.com/curingwithcare/care-site/internal/models"
	"github.com/google/go-cmp/cmp"
)

type fakeResolver struct{}

func (fakeResolver) Resolve(path string) string { return "https://cdn.test/" + path }

func strp(s string) *string { return &s }

// Scenario A: default colour is substituted only where missing
func TestAssembleBranches_DefaultColor(t *testing.T) {
	in := []models.Branch{
		{ID: 1, City: "Pittsburgh", Color: nil},
		{ID: 2, City: "Atlanta", Color: strp("from-a-to-b")},
		{ID: 3, City: "Chicago", Color: strp("  ")},
	}
	got := AssembleBranches(in, fakeResolver{}, "")
	want := []string{"from-green-600 to-emerald-500", "from-a-to-b", "from-green-600 to-emerald-500"}
	for i, v := range got {
		if v.Color != want[i] {
			t.Fatalf("branch %d: expected color %q, got %q", v.ID, want[i], v.Color)
		}
	}
	if in[0].Color != nil {
		t.Fatalf("source record must not be mutated")
	}
}

func TestPinFeatured_AlwaysFirst(t *testing.T) {
	cities := []string{"Atlanta", "Chicago", "New York", "pittsburgh", "San Francisco"}
	for pos := range cities {
		var in []models.Branch
		order := append([]string{}, cities...)
		// rotate Pittsburgh into every position
		p := order[3]
		order = append(order[:3], order[4:]...)
		order = append(order[:pos], append([]string{p}, order[pos:]...)...)
		for i, c := range order {
			in = append(in, models.Branch{ID: i + 1, City: c})
		}
		got := AssembleBranches(in, nil, "PITTSBURGH")
		if got[0].City != "pittsburgh" || !got[0].Featured {
			t.Fatalf("position %d: expected featured first, got %+v", pos, got[0])
		}
		var rest []string
		for _, v := range got[1:] {
			if v.Featured {
				t.Fatalf("only one branch should carry the badge")
			}
			rest = append(rest, v.City)
		}
		var wantRest []string
		for _, c := range order {
			if c != "pittsburgh" {
				wantRest = append(wantRest, c)
			}
		}
		if diff := cmp.Diff(wantRest, rest); diff != "" {
			t.Fatalf("non-featured order changed (-want +got):\n%s", diff)
		}
	}
}

func TestAssembleBranches_SingleFeatured(t *testing.T) {
	in := []models.Branch{
		{ID: 1, City: "Boston"},
		{ID: 2, City: "Pittsburgh"},
		{ID: 3, City: "Atlanta", Featured: true},
		{ID: 4, City: "pittsburgh"},
	}
	got := AssembleBranches(in, nil, "Pittsburgh")
	var ids []int
	var badged []int
	for _, v := range got {
		ids = append(ids, v.ID)
		if v.Featured {
			badged = append(badged, v.ID)
		}
	}
	if diff := cmp.Diff([]int{3, 1, 2, 4}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3}, badged); diff != "" {
		t.Fatalf("badge mismatch (-want +got):\n%s", diff)
	}

	// without an explicit flag the first city match wins
	got = AssembleBranches(append(append([]models.Branch{}, in[:2]...), in[3]), nil, "Pittsburgh")
	if got[0].ID != 2 || !got[0].Featured || got[2].ID != 4 || got[2].Featured {
		t.Fatalf("expected only branch 2 featured and pinned, got %+v", got)
	}
}

func TestPinFeatured_FirstMatchOnly(t *testing.T) {
	got := PinFeatured([]int{1, 4, 2, 6, 3}, func(n int) bool { return n%2 == 0 })
	if diff := cmp.Diff([]int{4, 1, 2, 6, 3}, got); diff != "" {
		t.Fatalf("pin mismatch (-want +got):\n%s", diff)
	}
	if got := PinFeatured([]int{1, 3}, func(n int) bool { return n%2 == 0 }); len(got) != 2 || got[0] != 1 {
		t.Fatalf("no match must keep order, got %v", got)
	}
}

func TestIsFeaturedBranch_ExplicitFlag(t *testing.T) {
	if !IsFeaturedBranch(models.Branch{City: "Boston", Featured: true}, "Pittsburgh") {
		t.Fatalf("explicit flag should mark featured")
	}
	if IsFeaturedBranch(models.Branch{City: "Boston"}, "") {
		t.Fatalf("empty featured city must not match")
	}
}

// Scenario B
func TestFilterImageNames(t *testing.T) {
	got := FilterImageNames([]string{"b.png", "a.jpg", "notes/", "c.txt"})
	if diff := cmp.Diff([]string{"a.jpg", "b.png"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	got = FilterImageNames([]string{"z.gif", "y.jpeg", "dir.png/", ".emptyFolderPlaceholder", "x.JPG"})
	if diff := cmp.Diff([]string{"y.jpeg", "z.gif"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFallbackPerKind(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range []Kind{KindBranch, KindTeam, KindGeneric} {
		seen[Fallback(k)] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected three distinct fallbacks, got %v", seen)
	}

	b := AssembleBranch(models.Branch{ID: 1, City: "Atlanta", Slug: "atlanta", RDs: []models.RegionalDirector{{Name: "A", Image: "a.png"}, {Name: "B"}}}, fakeResolver{}, "")
	if b.Image.Src != FallbackBranch || b.Image.Fallback != FallbackBranch {
		t.Fatalf("missing branch image should use branch fallback, got %+v", b.Image)
	}
	if b.Directors[0].Image.Src != "https://cdn.test/RDs/a.png" || b.Directors[0].Image.Fallback != FallbackGeneric {
		t.Fatalf("unexpected director image %+v", b.Directors[0].Image)
	}
	if b.Directors[1].Image.Src != FallbackGeneric {
		t.Fatalf("director without image should show generic fallback")
	}
	if b.URL != "/branches/atlanta" {
		t.Fatalf("unexpected url %q", b.URL)
	}

	m := AssembleMember(models.TeamMember{Name: "X", Category: models.TeamCategoryIntern}, 0, fakeResolver{})
	if m.Image.Src != FallbackTeam {
		t.Fatalf("intern without image should use team fallback, got %q", m.Image.Src)
	}
}

func TestNewImage_Sources(t *testing.T) {
	if got := NewImage("/images/branch-ny.jpg", "", KindBranch, fakeResolver{}).Src; got != "/images/branch-ny.jpg" {
		t.Fatalf("site-local path should be kept, got %q", got)
	}
	if got := NewImage("landing/a.jpg", "", KindGeneric, fakeResolver{}).Src; got != "https://cdn.test/landing/a.jpg" {
		t.Fatalf("storage path should resolve, got %q", got)
	}
}

func TestGroupEventsByBranch_OmitsEmptyParents(t *testing.T) {
	branches := []BranchView{{ID: 1, City: "Atlanta"}, {ID: 2, City: "Chicago"}, {ID: 3, City: "Pittsburgh", Featured: true}}
	events := []EventView{
		{ID: 10, Title: "A", BranchID: 3},
		{ID: 11, Title: "B", BranchID: 1},
		{ID: 12, Title: "C", BranchID: 3},
		{ID: 13, Title: "D", BranchID: 99},
	}
	got := GroupEventsByBranch(branches, events)
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	for _, s := range got {
		if s.Branch.ID == 2 {
			t.Fatalf("branch without events must be omitted")
		}
	}
	if got[1].Branch.ID != 3 || len(got[1].Events) != 2 || got[1].Events[0].ID != 10 {
		t.Fatalf("unexpected section %+v", got[1])
	}

	if f := FilterSections(got, 3); len(f) != 1 || f[0].Branch.ID != 3 {
		t.Fatalf("filter failed: %+v", f)
	}
	if f := FilterSections(got, 2); len(f) != 0 {
		t.Fatalf("filter on empty branch should yield nothing")
	}
	if f := FilterSections(got, 0); len(f) != 2 {
		t.Fatalf("zero filter should keep all")
	}
}

func TestAssembleEvent_Gallery(t *testing.T) {
	var names []string
	for i := 9; i >= 1; i-- {
		names = append(names, fmt.Sprintf("%d.jpg", i))
	}
	names = append(names, "raw/", "notes.txt")
	e := models.Event{ID: 1, Title: "Relay", BranchID: 5, ImagesFolder: strp("relay")}

	v := AssembleEvent(e, names, "", fakeResolver{})
	if len(v.Images) != 9 || len(v.Preview) != PreviewSize || v.More != 3 {
		t.Fatalf("unexpected gallery sizes: images=%d preview=%d more=%d", len(v.Images), len(v.Preview), v.More)
	}
	if v.Images[0].Src != "https://cdn.test/events/relay/1.jpg" {
		t.Fatalf("unexpected first image %q", v.Images[0].Src)
	}
	if !v.HasGallery() {
		t.Fatalf("expected gallery")
	}

	slides := Slides(v.Title, v.Images)
	if slides[0].Alt != "Relay - 1.jpg" || slides[0].Width != 1600 || slides[0].Height != 900 {
		t.Fatalf("unexpected slide %+v", slides[0])
	}

	failed := AssembleEvent(e, nil, "Failed to load images", fakeResolver{})
	if failed.HasGallery() || failed.ImagesError == "" {
		t.Fatalf("failed listing must not expose a gallery")
	}

	noFolder := AssembleEvent(models.Event{ID: 2, Title: "Talk"}, []string{"a.jpg"}, "", fakeResolver{})
	if len(noFolder.Images) != 0 || noFolder.Folder != "" {
		t.Fatalf("event without folder has no images")
	}
}

func TestAssembleMember(t *testing.T) {
	long := strings.Repeat("a", 120)
	m := models.TeamMember{
		ID: 1, Name: "Aarav", Category: models.TeamCategoryBoard, Description: &long,
		Social: &models.SocialLinks{LinkedIn: "https://linkedin.com/in/a"},
	}
	v := AssembleMember(m, 0, nil)
	if !v.Expandable || v.Summary != strings.Repeat("a", 100)+"..." || v.Description != long {
		t.Fatalf("unexpected truncation: %+v", v)
	}
	if v.Social == nil || v.Social == m.Social {
		t.Fatalf("social links should be copied")
	}

	short := "Runs things."
	v = AssembleMember(models.TeamMember{Name: "E", Description: &short, Social: &models.SocialLinks{}}, 0, nil)
	if v.Expandable || v.Summary != short || v.Social != nil {
		t.Fatalf("unexpected short card: %+v", v)
	}

	research := AssembleMembers([]models.TeamMember{
		{Name: "a", Category: models.TeamCategoryResearch},
		{Name: "b", Category: models.TeamCategoryResearch},
		{Name: "c", Category: models.TeamCategoryResearch},
		{Name: "d", Category: models.TeamCategoryResearch},
		{Name: "e", Category: models.TeamCategoryResearch},
		{Name: "f", Category: models.TeamCategoryResearch},
		{Name: "g", Category: models.TeamCategoryResearch},
	}, nil)
	if research[0].Tone != "green" || research[5].Tone != "indigo" || research[6].Tone != "green" {
		t.Fatalf("unexpected tone cycle %q %q %q", research[0].Tone, research[5].Tone, research[6].Tone)
	}
}

func TestTruncate_Runes(t *testing.T) {
	if got := Truncate("héllo", 3); got != "hél..." {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("", 3); got != "" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestEventFolder_CleansSlashes(t *testing.T) {
	for in, want := range map[string]string{
		"relay":   "events/relay",
		"/relay/": "events/relay",
		"//":      "",
		"":        "",
	} {
		if got := EventFolder(models.Event{ImagesFolder: strp(in)}); got != want {
			t.Fatalf("EventFolder(%q) = %q, want %q", in, got, want)
		}
	}
	if got := EventFolder(models.Event{}); got != "" {
		t.Fatalf("nil folder should have no prefix, got %q", got)
	}
}
