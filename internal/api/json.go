package api

import (
	"net/http"
	"strings"

	"github.com/curingwithcare/care-site/internal/logging"
	"github.com/curingwithcare/care-site/internal/shell"
	"github.com/curingwithcare/care-site/internal/site"
	"github.com/gin-gonic/gin"
)

func sectionError(c *gin.Context, state shell.State, message string) bool {
	switch state {
	case shell.StateNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": message})
		return true
	case shell.StateError:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": message})
		return true
	}
	return false
}

// GetBranches handles GET /api/v1/branches
func (h *Handler) GetBranches(c *gin.Context) {
	ctx, cancel := timeout(c)
	defer cancel()
	sec := h.site.Branches(ctx).Branches
	if sectionError(c, sec.State, sec.Message) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"branches": sec.Items})
}

// GetBranch handles GET /api/v1/branches/:slug
func (h *Handler) GetBranch(c *gin.Context) {
	ctx, cancel := timeout(c)
	defer cancel()
	page := h.site.BranchDetail(ctx, c.Param("slug"))
	if page.Branch.State == shell.StateNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Branch not found"})
		return
	}
	if sectionError(c, page.Branch.State, page.Branch.Message) {
		return
	}
	b, _ := page.Found()
	c.JSON(http.StatusOK, b)
}

// GetEvents handles GET /api/v1/events
func (h *Handler) GetEvents(c *gin.Context) {
	ctx, cancel := timeout(c)
	defer cancel()
	page := h.site.Events(ctx, site.ParseEventsQuery(c.Request.URL.Query()))
	if sectionError(c, page.Sections.State, page.Sections.Message) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"branches": page.Tabs,
		"sections": page.Sections.Items,
	})
}

// GetTeam handles GET /api/v1/team. Every section reports its own state.
func (h *Handler) GetTeam(c *gin.Context) {
	ctx, cancel := timeout(c)
	defer cancel()
	page := h.site.Team(ctx)
	c.JSON(http.StatusOK, gin.H{
		"board":    page.Board,
		"research": page.Research,
		"interns":  page.Interns,
	})
}

type invalidateRequest struct {
	Prefix string `json:"prefix"`
}

// InvalidateCache handles POST /api/v1/admin/cache/invalidate. With a
// prefix only that folder is dropped, otherwise every cached listing.
func (h *Handler) InvalidateCache(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "invalidated": 0})
		return
	}
	var req invalidateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
	}
	// user_id keeps whatever type the token carried
	userID, _ := c.Get("user_id")
	prefix := strings.TrimSpace(req.Prefix)
	if prefix != "" {
		h.cache.Invalidate(prefix)
		logging.LogKV("info", "listing cache invalidated", map[string]interface{}{"prefix": prefix, "user_id": userID})
		c.JSON(http.StatusOK, gin.H{"status": "ok", "prefix": prefix})
		return
	}
	n := h.cache.InvalidateAll()
	logging.LogKV("info", "listing cache cleared", map[string]interface{}{"entries": n, "user_id": userID})
	c.JSON(http.StatusOK, gin.H{"status": "ok", "invalidated": n})
}
