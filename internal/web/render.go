// Package web renders pages and section fragments from the embedded
// templates and serves the static assets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"strconv"
	"time"

	"github.com/curingwithcare/care-site/internal/content"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page template names.
const (
	PageLanding  = "landing"
	PageAbout    = "about"
	PageBranches = "branches"
	PageBranch   = "branch"
	PageEvents   = "events"
	PageTeam     = "team"
	PageResearch = "research"
	PageNotFound = "notfound"
)

var pageNames = []string{PageLanding, PageAbout, PageBranches, PageBranch, PageEvents, PageTeam, PageResearch, PageNotFound}

var sectionTitles = map[string]string{
	"board":    "Board",
	"research": "Research & Design Team",
	"interns":  "Our Interns",
}

// NavItem is one navigation bar entry.
type NavItem struct {
	Label  string
	URL    string
	Active bool
}

var navItems = []NavItem{
	{Label: "Home", URL: "/"},
	{Label: "About", URL: "/about"},
	{Label: "Branches", URL: "/branches"},
	{Label: "Events", URL: "/events"},
	{Label: "Team", URL: "/team"},
	{Label: "Research Competition", URL: "/research-competition"},
}

// Nav returns the navigation bar with the entry for path marked active.
func Nav(path string) []NavItem {
	out := make([]NavItem, len(navItems))
	for i, it := range navItems {
		it.Active = it.URL == path || (it.URL != "/" && len(path) > len(it.URL) && path[:len(it.URL)+1] == it.URL+"/")
		out[i] = it
	}
	return out
}

// PageData wraps a page body with the chrome shared by every page.
type PageData struct {
	Page        string
	Title       string
	Description string
	Path        string
	Site        content.Site
	Nav         []NavItem
	Year        int
	Body        any
	// Static is set for pages exported to a static host, where query
	// strings are not routed.
	Static bool
}

// NewPageData fills the shared chrome for path.
func NewPageData(page, title, path string, site content.Site, body any) PageData {
	return PageData{
		Page:  page,
		Title: title,
		Path:  path,
		Site:  site,
		Nav:   Nav(path),
		Year:  time.Now().Year(),
		Body:  body,
	}
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"galleryURL":   GalleryURL,
		"eventsURL":    EventsURL,
		"tabURL":       TabURL,
		"sectionTitle": func(name string) string { return sectionTitles[name] },
	}
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("base").Funcs(funcs()).ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range pageNames {
		t, err := template.Must(base.Clone()).ParseFS(templateFS, "templates/pages/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	r.fragments = base
	return r, nil
}

// Render executes the layout for page into w. Output is buffered so a
// template error never leaves a half-written page.
func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderFragment executes one section template, e.g. "section-members".
func (r *Renderer) RenderFragment(w io.Writer, name string, data any) error {
	if r.fragments.Lookup(name) == nil {
		return fmt.Errorf("unknown fragment %q", name)
	}
	var buf bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render fragment %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static returns the embedded static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// EventsURL links to the events page, optionally on one branch tab.
func EventsURL(branch int) string {
	if branch == 0 {
		return "/events"
	}
	return "/events?branch=" + strconv.Itoa(branch)
}

// TabURL links to one branch tab of the events page. Exported pages use a
// directory per tab instead of the query string.
func TabURL(static bool, branch int) string {
	if !static {
		return EventsURL(branch)
	}
	if branch == 0 {
		return "/events/"
	}
	return "/events/" + strconv.Itoa(branch) + "/"
}

// GalleryURL links to the events page with the gallery of event open at
// image.
func GalleryURL(branch, event, image int) string {
	v := url.Values{}
	if branch != 0 {
		v.Set("branch", strconv.Itoa(branch))
	}
	v.Set("gallery", strconv.Itoa(event))
	v.Set("image", strconv.Itoa(image))
	return "/events?" + v.Encode() + "#event-" + strconv.Itoa(event)
}
