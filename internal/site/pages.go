package site

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/curingwithcare/care-site/internal/content"
	"github.com/curingwithcare/care-site/internal/models"
	"github.com/curingwithcare/care-site/internal/shell"
	"github.com/curingwithcare/care-site/internal/storage"
	"github.com/curingwithcare/care-site/internal/viewmodel"
)

// Page names, also used in fragment URLs.
const (
	PageLanding  = "landing"
	PageBranches = "branches"
	PageBranch   = "branch"
	PageEvents   = "events"
	PageTeam     = "team"
)

func fragmentURL(page, section string, q url.Values) string {
	u := "/fragments/" + page + "/" + section
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// LandingPage is the home page.
type LandingPage struct {
	Content  content.Landing
	Site     content.Site
	Carousel shell.Section[viewmodel.Image]
}

// Landing loads the home page carousel from the landing data row.
func (s *Site) Landing(ctx context.Context) LandingPage {
	return LandingPage{
		Content:  s.content.Landing,
		Site:     s.content.Site,
		Carousel: s.landingCarousel(ctx),
	}
}

func (s *Site) landingCarousel(ctx context.Context) shell.Section[viewmodel.Image] {
	sec := shell.NewSection[viewmodel.Image]("carousel", fragmentURL(PageLanding, "carousel", nil))
	files, err := s.records.LandingFiles(ctx, s.content.Landing.Section)
	if err != nil {
		sec.Settle(nil, err)
		return sec
	}
	images := make([]viewmodel.Image, 0, len(files.FileIDs))
	for _, id := range files.FileIDs {
		if strings.TrimSpace(id) == "" {
			continue
		}
		images = append(images, viewmodel.NewImage(id, "CARE event", viewmodel.KindGeneric, s.resolver))
	}
	sec.Settle(images, nil)
	return sec
}

// BranchesPage is the branch directory.
type BranchesPage struct {
	Branches shell.Section[viewmodel.BranchView]
}

// Branches loads every branch ordered by city with the featured one first.
func (s *Site) Branches(ctx context.Context) BranchesPage {
	return BranchesPage{Branches: s.branchList(ctx)}
}

func (s *Site) branchList(ctx context.Context) shell.Section[viewmodel.BranchView] {
	sec := shell.NewSection[viewmodel.BranchView]("list", fragmentURL(PageBranches, "list", nil))
	branches, err := s.records.ListBranches(ctx)
	if err != nil {
		sec.Settle(nil, err)
		return sec
	}
	sec.Settle(viewmodel.AssembleBranches(branches, s.resolver, s.featuredCity), nil)
	return sec
}

// BranchDetailPage is one branch. Branch holds at most one item.
type BranchDetailPage struct {
	Slug   string
	Branch shell.Section[viewmodel.BranchView]
}

// Found returns the branch when the section succeeded.
func (p BranchDetailPage) Found() (viewmodel.BranchView, bool) {
	if p.Branch.State != shell.StateSuccess || len(p.Branch.Items) == 0 {
		return viewmodel.BranchView{}, false
	}
	return p.Branch.Items[0], true
}

// BranchDetail loads the branch with slug. A missing slug settles as
// not_found, distinct from a failed fetch.
func (s *Site) BranchDetail(ctx context.Context, slug string) BranchDetailPage {
	sec := shell.NewSection[viewmodel.BranchView]("detail", fragmentURL(PageBranch, "detail", url.Values{"slug": {slug}}))
	b, err := s.records.BranchBySlug(ctx, slug)
	if err != nil {
		sec.Settle(nil, err)
	} else {
		sec.Settle([]viewmodel.BranchView{viewmodel.AssembleBranch(*b, s.resolver, s.featuredCity)}, nil)
	}
	return BranchDetailPage{Slug: slug, Branch: sec}
}

// EventsQuery selects the tab and an open gallery on the events page.
type EventsQuery struct {
	// BranchID limits the page to one branch; zero shows all.
	BranchID int
	// Gallery is the event whose lightbox is open; zero means closed.
	Gallery int
	Image   int
}

// ParseEventsQuery reads ?branch=, ?gallery= and ?image=. Malformed values
// are ignored.
func ParseEventsQuery(q url.Values) EventsQuery {
	atoi := func(k string) int {
		n, err := strconv.Atoi(q.Get(k))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	return EventsQuery{BranchID: atoi("branch"), Gallery: atoi("gallery"), Image: atoi("image")}
}

// Values encodes q for links.
func (q EventsQuery) Values() url.Values {
	v := url.Values{}
	if q.BranchID != 0 {
		v.Set("branch", strconv.Itoa(q.BranchID))
	}
	if q.Gallery != 0 {
		v.Set("gallery", strconv.Itoa(q.Gallery))
		v.Set("image", strconv.Itoa(q.Image))
	}
	return v
}

// EventsPage is the events gallery.
type EventsPage struct {
	Query EventsQuery
	// Tabs lists every branch, featured first.
	Tabs     []viewmodel.BranchView
	Sections shell.Section[viewmodel.BranchSection]
	// Lightbox is set when the requested gallery exists and its images
	// loaded.
	Lightbox *shell.Lightbox
	Gallery  *viewmodel.EventView
}

// Events loads branches and events, groups events by branch and resolves
// each event's image folder. A folder listing failure only affects its card.
func (s *Site) Events(ctx context.Context, q EventsQuery) EventsPage {
	page := EventsPage{
		Query:    q,
		Tabs:     []viewmodel.BranchView{},
		Sections: shell.NewSection[viewmodel.BranchSection]("sections", fragmentURL(PageEvents, "sections", EventsQuery{BranchID: q.BranchID}.Values())),
	}

	var (
		branches         []models.Branch
		events           []models.Event
		branchErr, evErr error
	)
	loadAll(ctx,
		func(ctx context.Context) func() {
			b, err := s.records.ListBranches(ctx)
			return func() { branches, branchErr = b, err }
		},
		func(ctx context.Context) func() {
			e, err := s.records.ListEvents(ctx)
			return func() { events, evErr = e, err }
		},
	)
	if branchErr != nil {
		page.Sections.Settle(nil, branchErr)
		return page
	}
	if evErr != nil {
		page.Sections.Settle(nil, evErr)
		return page
	}
	if err := ctx.Err(); err != nil {
		page.Sections.Settle(nil, fmt.Errorf("load events: %w", err))
		return page
	}

	views := viewmodel.AssembleBranches(branches, s.resolver, s.featuredCity)
	page.Tabs = views

	listings := s.listEventFolders(ctx, events)
	cards := make([]viewmodel.EventView, len(events))
	for i, e := range events {
		l := listings[strings.Trim(viewmodel.EventFolder(e), "/")]
		msg := ""
		if l.Err != nil {
			msg = shell.Message(l.Err)
		}
		cards[i] = viewmodel.AssembleEvent(e, l.Names, msg, s.resolver)
	}

	sections := viewmodel.FilterSections(viewmodel.GroupEventsByBranch(views, cards), q.BranchID)
	page.Sections.Settle(sections, nil)

	if q.Gallery != 0 {
		if ev, ok := findEvent(sections, q.Gallery); ok && ev.HasGallery() {
			lb := shell.NewLightbox(viewmodel.Slides(ev.Title, ev.Images))
			lb.Show(q.Image)
			page.Lightbox = lb
			page.Gallery = &ev
		}
	}
	return page
}

func (s *Site) listEventFolders(ctx context.Context, events []models.Event) map[string]storage.Listing {
	var prefixes []string
	for _, e := range events {
		if f := viewmodel.EventFolder(e); f != "" {
			prefixes = append(prefixes, f)
		}
	}
	if len(prefixes) == 0 || s.images == nil {
		return map[string]storage.Listing{}
	}
	return s.images.ListFolders(ctx, prefixes)
}

func findEvent(sections []viewmodel.BranchSection, id int) (viewmodel.EventView, bool) {
	for _, sec := range sections {
		for _, e := range sec.Events {
			if e.ID == id {
				return e, true
			}
		}
	}
	return viewmodel.EventView{}, false
}

// TeamPage has one independently loaded section per category.
type TeamPage struct {
	Board    shell.Section[viewmodel.MemberView]
	Research shell.Section[viewmodel.MemberView]
	Interns  shell.Section[viewmodel.MemberView]
}

// Sections returns the sections in display order.
func (p TeamPage) Sections() []shell.Section[viewmodel.MemberView] {
	return []shell.Section[viewmodel.MemberView]{p.Board, p.Research, p.Interns}
}

var teamSections = map[string]models.TeamCategory{
	"board":    models.TeamCategoryBoard,
	"research": models.TeamCategoryResearch,
	"interns":  models.TeamCategoryIntern,
}

// Team fetches the three categories concurrently. A failure or an empty
// result only affects its own section.
func (s *Site) Team(ctx context.Context) TeamPage {
	page := TeamPage{
		Board:    shell.NewSection[viewmodel.MemberView]("board", fragmentURL(PageTeam, "board", nil)),
		Research: shell.NewSection[viewmodel.MemberView]("research", fragmentURL(PageTeam, "research", nil)),
		Interns:  shell.NewSection[viewmodel.MemberView]("interns", fragmentURL(PageTeam, "interns", nil)),
	}
	loadAll(ctx,
		func(ctx context.Context) func() {
			sec := s.teamSection(ctx, "board")
			return func() { page.Board = sec }
		},
		func(ctx context.Context) func() {
			sec := s.teamSection(ctx, "research")
			return func() { page.Research = sec }
		},
		func(ctx context.Context) func() {
			sec := s.teamSection(ctx, "interns")
			return func() { page.Interns = sec }
		},
	)
	return page
}

func (s *Site) teamSection(ctx context.Context, name string) shell.Section[viewmodel.MemberView] {
	sec := shell.NewSection[viewmodel.MemberView](name, fragmentURL(PageTeam, name, nil))
	members, err := s.records.ListTeamMembers(ctx, teamSections[name])
	if err != nil {
		sec.Settle(nil, err)
		return sec
	}
	sec.Settle(viewmodel.AssembleMembers(members, s.resolver), nil)
	return sec
}

// Research returns the competition results.
func (s *Site) Research() content.Research { return s.content.Research }

// About returns the about page copy.
func (s *Site) About() content.About { return s.content.About }

// Section re-runs a single section of a page. It backs the retry links so
// that a failed section is reloaded without touching the rest of the page.
func (s *Site) Section(ctx context.Context, page, name string, q url.Values) (any, error) {
	switch page + "/" + name {
	case PageLanding + "/carousel":
		return s.landingCarousel(ctx), nil
	case PageBranches + "/list":
		return s.branchList(ctx), nil
	case PageBranch + "/detail":
		return s.BranchDetail(ctx, q.Get("slug")).Branch, nil
	case PageEvents + "/sections":
		return s.Events(ctx, ParseEventsQuery(q)), nil
	case PageTeam + "/board", PageTeam + "/research", PageTeam + "/interns":
		return s.teamSection(ctx, name), nil
	}
	return nil, fmt.Errorf("%s/%s: %w", page, name, ErrUnknownSection)
}
