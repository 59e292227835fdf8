package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/curingwithcare/care-site/internal/logging"
	"github.com/curingwithcare/care-site/internal/shell"
	"github.com/curingwithcare/care-site/internal/site"
	"github.com/curingwithcare/care-site/internal/web"
	"github.com/gin-gonic/gin"
)

const requestTimeout = 10 * time.Second

// CacheInvalidator drops cached folder listings.
type CacheInvalidator interface {
	Invalidate(prefix string)
	InvalidateAll() int
}

// Handler serves the site pages, section fragments and the JSON API.
type Handler struct {
	site     *site.Site
	renderer *web.Renderer
	cache    CacheInvalidator
}

// NewHandler creates a new handler instance. cache may be nil.
func NewHandler(s *site.Site, r *web.Renderer, cache CacheInvalidator) *Handler {
	return &Handler{site: s, renderer: r, cache: cache}
}

func (h *Handler) render(c *gin.Context, status int, page, title string, body any) {
	data := web.NewPageData(page, title, c.Request.URL.Path, h.site.Content().Site, body)
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := h.renderer.Render(c.Writer, page, data); err != nil {
		logging.LogKV("error", "render failed", map[string]interface{}{"page": page, "error": err})
		c.String(http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// statusFor maps a page's primary section to the HTTP status. A failed
// section still renders the full page with its banner.
func statusFor(state shell.State) int {
	switch state {
	case shell.StateNotFound:
		return http.StatusNotFound
	case shell.StateError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

func timeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// Landing handles GET /
func (h *Handler) Landing(c *gin.Context) {
	ctx, cancel := timeout(c)
	defer cancel()
	h.render(c, http.StatusOK, web.PageLanding, "", h.site.Landing(ctx))
}

// About handles GET /about
func (h *Handler) About(c *gin.Context) {
	h.render(c, http.StatusOK, web.PageAbout, "About", h.site.About())
}

// Research handles GET /research-competition
func (h *Handler) Research(c *gin.Context) {
	h.render(c, http.StatusOK, web.PageResearch, "Research Paper Competition", h.site.Research())
}

// Branches handles GET /branches
func (h *Handler) Branches(c *gin.Context) {
	ctx, cancel := timeout(c)
	defer cancel()
	page := h.site.Branches(ctx)
	h.render(c, statusFor(page.Branches.State), web.PageBranches, "Our Branches", page)
}

// BranchDetail handles GET /branches/:slug
func (h *Handler) BranchDetail(c *gin.Context) {
	ctx, cancel := timeout(c)
	defer cancel()
	page := h.site.BranchDetail(ctx, c.Param("slug"))
	title := "Branch not found"
	if b, ok := page.Found(); ok {
		title = b.City + " Branch"
	}
	h.render(c, statusFor(page.Branch.State), web.PageBranch, title, page)
}

// Events handles GET /events
func (h *Handler) Events(c *gin.Context) {
	ctx, cancel := timeout(c)
	defer cancel()
	page := h.site.Events(ctx, site.ParseEventsQuery(c.Request.URL.Query()))
	h.render(c, statusFor(page.Sections.State), web.PageEvents, "Past Events", page)
}

// Team handles GET /team. Sections fail independently so the page itself
// is always served.
func (h *Handler) Team(c *gin.Context) {
	ctx, cancel := timeout(c)
	defer cancel()
	h.render(c, http.StatusOK, web.PageTeam, "Our Team", h.site.Team(ctx))
}

// NotFound renders the not-found page for unknown routes.
func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, web.PageNotFound, "Page not found", nil)
}

func fragmentTemplate(page, section string) string {
	if page == site.PageTeam {
		return "section-members"
	}
	return "section-" + section
}

// Fragment handles GET /fragments/:page/:section, re-running one section.
func (h *Handler) Fragment(c *gin.Context) {
	ctx, cancel := timeout(c)
	defer cancel()
	page, section := c.Param("page"), c.Param("section")
	data, err := h.site.Section(ctx, page, section, c.Request.URL.Query())
	if errors.Is(err, site.ErrUnknownSection) {
		c.String(http.StatusNotFound, "Not found")
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	if err := h.renderer.RenderFragment(c.Writer, fragmentTemplate(page, section), data); err != nil {
		logging.LogKV("error", "render fragment failed", map[string]interface{}{"page": page, "section": section, "error": err})
		c.String(http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// Health handles GET /health and /ready
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.site.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "care-site",
	})
}
