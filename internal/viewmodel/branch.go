package viewmodel

import (
	"strings"

	"github.com/curingwithcare/care-site/internal/models"
)

// DefaultColor is the gradient token used when a branch has none.
const DefaultColor = "from-green-600 to-emerald-500"

// DirectorsFolder holds regional director portraits in object storage.
const DirectorsFolder = "RDs"

// BranchView is a branch ready for rendering.
type BranchView struct {
	ID          int            `json:"id"`
	City        string         `json:"city"`
	Slug        string         `json:"slug"`
	URL         string         `json:"url"`
	Description string         `json:"description"`
	Image       Image          `json:"image"`
	Color       string         `json:"color"`
	Chapters    []string       `json:"chapters"`
	Directors   []DirectorView `json:"directors"`
	Featured    bool           `json:"featured"`
}

// DirectorView is a regional director with a resolved portrait.
type DirectorView struct {
	Name  string `json:"name"`
	Image Image  `json:"image"`
}

// ColorOrDefault returns c, or DefaultColor when c is absent or blank.
func ColorOrDefault(c *string) string {
	if c == nil || strings.TrimSpace(*c) == "" {
		return DefaultColor
	}
	return *c
}

// IsFeaturedBranch reports whether b is flagged featured or its city matches
// featuredCity case-insensitively.
func IsFeaturedBranch(b models.Branch, featuredCity string) bool {
	if b.Featured {
		return true
	}
	return featuredCity != "" && strings.EqualFold(strings.TrimSpace(b.City), strings.TrimSpace(featuredCity))
}

// AssembleBranch merges b with resolved images and UI defaults.
func AssembleBranch(b models.Branch, res URLResolver, featuredCity string) BranchView {
	v := BranchView{
		ID:          b.ID,
		City:        b.City,
		Slug:        b.Slug,
		URL:         "/branches/" + b.Slug,
		Description: deref(b.Description),
		Image:       NewImage(deref(b.Image), b.City+" Branch", KindBranch, res),
		Color:       ColorOrDefault(b.Color),
		Chapters:    append([]string{}, b.Chapters...),
		Directors:   make([]DirectorView, 0, len(b.RDs)),
		Featured:    IsFeaturedBranch(b, featuredCity),
	}
	for _, rd := range b.RDs {
		path := ""
		if rd.Image != "" {
			path = DirectorsFolder + "/" + strings.TrimLeft(rd.Image, "/")
		}
		v.Directors = append(v.Directors, DirectorView{
			Name:  rd.Name,
			Image: NewImage(path, rd.Name, KindGeneric, res),
		})
	}
	return v
}

// AssembleBranches assembles every branch and pins the featured one to the
// front. Only one branch carries the badge: the first with the explicit flag,
// otherwise the first whose city matches featuredCity.
func AssembleBranches(branches []models.Branch, res URLResolver, featuredCity string) []BranchView {
	featured := FeaturedIndex(branches, featuredCity)
	out := make([]BranchView, len(branches))
	for i, b := range branches {
		out[i] = AssembleBranch(b, res, featuredCity)
		out[i].Featured = i == featured
	}
	return PinFeatured(out, func(v BranchView) bool { return v.Featured })
}

// FeaturedIndex returns the index of the featured branch, or -1. An explicit
// flag wins over a city match.
func FeaturedIndex(branches []models.Branch, featuredCity string) int {
	for i, b := range branches {
		if b.Featured {
			return i
		}
	}
	for i, b := range branches {
		if IsFeaturedBranch(b, featuredCity) {
			return i
		}
	}
	return -1
}

// PinFeatured moves the first item matching featured to the front. Everything
// else keeps its relative order. The input slice is not modified.
func PinFeatured[T any](items []T, featured func(T) bool) []T {
	out := make([]T, 0, len(items))
	pinned := -1
	for i, it := range items {
		if featured(it) {
			pinned = i
			out = append(out, it)
			break
		}
	}
	for i, it := range items {
		if i != pinned {
			out = append(out, it)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
