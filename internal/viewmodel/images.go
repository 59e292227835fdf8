package viewmodel

import (
	"sort"
	"strings"
)

// Kind selects the fallback image used when an image fails to load.
type Kind int

const (
	KindGeneric Kind = iota
	KindBranch
	KindTeam
)

// Fallback images served from the site's static assets
const (
	FallbackBranch  = "/branch-placeholder.png"
	FallbackTeam    = "/team-placeholder.png"
	FallbackGeneric = "/avatar-placeholder.png"
)

// Fallback returns the placeholder for kind.
func Fallback(k Kind) string {
	switch k {
	case KindBranch:
		return FallbackBranch
	case KindTeam:
		return FallbackTeam
	default:
		return FallbackGeneric
	}
}

// URLResolver maps stored object paths to public URLs without I/O.
type URLResolver interface {
	Resolve(path string) string
}

// Image is an <img> source with its load-failure substitute.
type Image struct {
	Src      string `json:"src"`
	Alt      string `json:"alt"`
	Fallback string `json:"fallback"`
}

// NewImage builds an Image. Site-local ("/...") and absolute URLs are used as
// is, bare paths are resolved against object storage, and an empty path
// renders the fallback directly.
func NewImage(path, alt string, k Kind, res URLResolver) Image {
	img := Image{Alt: alt, Fallback: Fallback(k)}
	switch {
	case path == "":
		img.Src = img.Fallback
	case strings.HasPrefix(path, "/"), strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		img.Src = path
	case res == nil:
		img.Src = "/" + path
	default:
		img.Src = res.Resolve(path)
	}
	return img
}

var imageExts = []string{".jpg", ".jpeg", ".png", ".gif"}

// IsImageName reports whether name is an accepted image file.
func IsImageName(name string) bool {
	if name == "" || strings.HasSuffix(name, "/") {
		return false
	}
	for _, ext := range imageExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// FilterImageNames keeps accepted image files, drops folder markers and
// returns them sorted ascending.
func FilterImageNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if IsImageName(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Slide is one lightbox entry.
type Slide struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Slides builds lightbox slides for a gallery.
func Slides(title string, images []Image) []Slide {
	out := make([]Slide, len(images))
	for i, img := range images {
		out[i] = Slide{Src: img.Src, Alt: title + " - " + img.Alt, Width: 1600, Height: 900}
	}
	return out
}
