package viewmodel

import (
	"github.com/curingwithcare/care-site/internal/models"
	"github.com/curingwithcare/care-site/internal/storage"
)

// EventsFolder is the storage folder holding one sub-folder per event.
const EventsFolder = "events"

// PreviewSize is the number of thumbnails shown on an event card.
const PreviewSize = 6

// EventView is an event card with its resolved gallery.
type EventView struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	BranchID    int     `json:"branch_id"`
	Folder      string  `json:"folder,omitempty"`
	Images      []Image `json:"images"`
	Preview     []Image `json:"preview"`
	More        int     `json:"more"`
	// ImagesError is the card-local message when the folder listing failed.
	ImagesError string `json:"images_error,omitempty"`
}

// HasGallery reports whether the card can open a lightbox.
func (e EventView) HasGallery() bool { return e.ImagesError == "" && len(e.Images) > 0 }

// EventFolder returns the storage prefix for e, or "" when it has none.
func EventFolder(e models.Event) string {
	if e.ImagesFolder == nil || storage.Join(*e.ImagesFolder) == "" {
		return ""
	}
	return storage.Join(EventsFolder, *e.ImagesFolder)
}

// AssembleEvent merges e with the names listed under its folder. listErr is
// the card-local failure message, if any.
func AssembleEvent(e models.Event, names []string, listErr string, res URLResolver) EventView {
	v := EventView{
		ID:          e.ID,
		Title:       e.Title,
		Description: deref(e.Description),
		BranchID:    e.BranchID,
		Folder:      EventFolder(e),
		Images:      []Image{},
		Preview:     []Image{},
		ImagesError: listErr,
	}
	if listErr != "" || v.Folder == "" {
		return v
	}
	for _, n := range FilterImageNames(names) {
		v.Images = append(v.Images, NewImage(v.Folder+"/"+n, n, KindGeneric, res))
	}
	v.Preview = v.Images
	if len(v.Images) > PreviewSize {
		v.Preview = v.Images[:PreviewSize]
		v.More = len(v.Images) - PreviewSize
	}
	return v
}

// BranchSection groups the events of one branch.
type BranchSection struct {
	Branch BranchView  `json:"branch"`
	Events []EventView `json:"events"`
}

// GroupEventsByBranch returns one section per branch in branch order. Branches
// without events are omitted. Events keep their input order.
func GroupEventsByBranch(branches []BranchView, events []EventView) []BranchSection {
	byBranch := map[int][]EventView{}
	for _, e := range events {
		byBranch[e.BranchID] = append(byBranch[e.BranchID], e)
	}
	out := make([]BranchSection, 0, len(branches))
	for _, b := range branches {
		evs := byBranch[b.ID]
		if len(evs) == 0 {
			continue
		}
		out = append(out, BranchSection{Branch: b, Events: evs})
	}
	return out
}

// FilterSections keeps only the section for branchID. Zero keeps all.
func FilterSections(sections []BranchSection, branchID int) []BranchSection {
	if branchID == 0 {
		return sections
	}
	out := []BranchSection{}
	for _, s := range sections {
		if s.Branch.ID == branchID {
			out = append(out, s)
		}
	}
	return out
}
