// Package deploy exports the site as static HTML and publishes it to S3
// behind CloudFront.
package deploy

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/curingwithcare/care-site/internal/logging"
	"github.com/curingwithcare/care-site/internal/shell"
	"github.com/curingwithcare/care-site/internal/site"
	"github.com/curingwithcare/care-site/internal/web"
)

// BuildReport lists the files written by Build, relative to the output dir.
type BuildReport struct {
	Pages  []string
	Assets []string
}

type page struct {
	file  string
	name  string
	title string
	path  string
	body  any
	state shell.State
}

// Build renders every page into outDir. Any section that failed to load
// aborts the build so a broken export is never published. Each events tab is
// exported as its own directory; gallery lightboxes stay server-only.
func Build(ctx context.Context, s *site.Site, r *web.Renderer, outDir string) (BuildReport, error) {
	var report BuildReport

	branches := s.Branches(ctx)
	events := s.Events(ctx, site.EventsQuery{})
	landing := s.Landing(ctx)
	team := s.Team(ctx)
	pages := []page{
		{file: "index.html", name: web.PageLanding, path: "/", body: landing, state: landing.Carousel.State},
		{file: "about/index.html", name: web.PageAbout, title: "About", path: "/about", body: s.About(), state: shell.StateSuccess},
		{file: "research-competition/index.html", name: web.PageResearch, title: "Research Paper Competition", path: "/research-competition", body: s.Research(), state: shell.StateSuccess},
		{file: "branches/index.html", name: web.PageBranches, title: "Our Branches", path: "/branches", body: branches, state: branches.Branches.State},
		{file: "events/index.html", name: web.PageEvents, title: "Past Events", path: "/events", body: events, state: events.Sections.State},
		{file: "team/index.html", name: web.PageTeam, title: "Our Team", path: "/team", body: team, state: teamState(team)},
		{file: "404.html", name: web.PageNotFound, title: "Page not found", path: "/404", state: shell.StateSuccess},
	}
	for _, tab := range events.Tabs {
		filtered := s.Events(ctx, site.EventsQuery{BranchID: tab.ID})
		pages = append(pages, page{
			file:  filepath.Join("events", strconv.Itoa(tab.ID), "index.html"),
			name:  web.PageEvents,
			title: "Past Events",
			path:  "/events",
			body:  filtered,
			state: filtered.Sections.State,
		})
	}
	for _, b := range branches.Branches.Items {
		detail := s.BranchDetail(ctx, b.Slug)
		pages = append(pages, page{
			file:  filepath.Join("branches", b.Slug, "index.html"),
			name:  web.PageBranch,
			title: b.City + " Branch",
			path:  b.URL,
			body:  detail,
			state: detail.Branch.State,
		})
	}

	for _, p := range pages {
		if p.state == shell.StateError {
			return report, fmt.Errorf("build %s: section failed to load", p.path)
		}
		var buf bytes.Buffer
		data := web.NewPageData(p.name, p.title, p.path, s.Content().Site, p.body)
		data.Static = true
		if err := r.Render(&buf, p.name, data); err != nil {
			return report, err
		}
		if err := writeFile(filepath.Join(outDir, p.file), buf.Bytes()); err != nil {
			return report, err
		}
		report.Pages = append(report.Pages, filepath.ToSlash(p.file))
	}

	assets, err := copyStatic(outDir)
	if err != nil {
		return report, err
	}
	report.Assets = assets

	logging.LogKV("info", "static export complete", map[string]interface{}{
		"out":    outDir,
		"pages":  len(report.Pages),
		"assets": len(report.Assets),
	})
	return report, nil
}

// teamState is error when any team section failed.
func teamState(p site.TeamPage) shell.State {
	for _, sec := range p.Sections() {
		if sec.Failed() {
			return shell.StateError
		}
	}
	return shell.StateSuccess
}

// copyStatic writes the embedded assets under static/ and the placeholder
// images at the site root, where image fallbacks point.
func copyStatic(outDir string) ([]string, error) {
	var written []string
	static := web.Static()
	err := fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		targets := []string{filepath.Join("static", path)}
		if filepath.Ext(path) == ".png" {
			targets = append(targets, path)
		}
		for _, t := range targets {
			if err := writeFile(filepath.Join(outDir, t), b); err != nil {
				return err
			}
			written = append(written, filepath.ToSlash(t))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("copy static assets: %w", err)
	}
	return written, nil
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
