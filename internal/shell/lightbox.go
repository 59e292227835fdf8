package shell

import "github.com/curingwithcare/care-site/internal/viewmodel"

// Lightbox is the image overlay of one gallery card. It is independent of the
// fetch state and only opened once the card's images are resolved.
type Lightbox struct {
	Open   bool              `json:"open"`
	Index  int               `json:"index"`
	Slides []viewmodel.Slide `json:"slides"`
}

// NewLightbox returns a closed lightbox over slides.
func NewLightbox(slides []viewmodel.Slide) *Lightbox {
	return &Lightbox{Slides: slides}
}

// Show opens the overlay at index, clamped to the slide range. An empty
// gallery never opens.
func (l *Lightbox) Show(index int) {
	if len(l.Slides) == 0 {
		l.Open, l.Index = false, 0
		return
	}
	l.Open = true
	l.Index = clamp(index, 0, len(l.Slides)-1)
}

// Hide closes the overlay.
func (l *Lightbox) Hide() { l.Open = false }

// Next advances one slide, wrapping to the first.
func (l *Lightbox) Next() {
	if n := len(l.Slides); n > 0 {
		l.Index = (l.Index + 1) % n
	}
}

// Prev goes back one slide, wrapping to the last.
func (l *Lightbox) Prev() {
	if n := len(l.Slides); n > 0 {
		l.Index = (l.Index - 1 + n) % n
	}
}

// Current returns the visible slide.
func (l *Lightbox) Current() (viewmodel.Slide, bool) {
	if !l.Open || len(l.Slides) == 0 {
		return viewmodel.Slide{}, false
	}
	return l.Slides[l.Index], true
}

// NextIndex and PrevIndex are the wrapped neighbours, used for links.
func (l *Lightbox) NextIndex() int {
	if len(l.Slides) == 0 {
		return 0
	}
	return (l.Index + 1) % len(l.Slides)
}

func (l *Lightbox) PrevIndex() int {
	if len(l.Slides) == 0 {
		return 0
	}
	return (l.Index - 1 + len(l.Slides)) % len(l.Slides)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
