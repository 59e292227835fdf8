package api

import (
	"net/http"

	"github.com/curingwithcare/care-site/internal/logging"
	"github.com/curingwithcare/care-site/internal/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	JWTSecret string
	// AllowOrigin restricts CORS; empty allows all origins.
	AllowOrigin string
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}
	if opts.AllowOrigin != "" {
		corsCfg.AllowOrigins = []string{opts.AllowOrigin}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/ready", h.Health)
	router.GET("/health", h.Health)

	static := http.FS(web.Static())
	router.StaticFS("/static", static)
	for _, name := range []string{"branch-placeholder.png", "team-placeholder.png", "avatar-placeholder.png"} {
		router.StaticFileFS("/"+name, name, static)
	}

	router.GET("/", h.Landing)
	router.GET("/about", h.About)
	router.GET("/branches", h.Branches)
	router.GET("/branches/:slug", h.BranchDetail)
	router.GET("/events", h.Events)
	router.GET("/team", h.Team)
	router.GET("/research-competition", h.Research)
	router.GET("/fragments/:page/:section", h.Fragment)
	router.NoRoute(h.NotFound)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/branches", h.GetBranches)
		v1.GET("/branches/:slug", h.GetBranch)
		v1.GET("/events", h.GetEvents)
		v1.GET("/team", h.GetTeam)

		admin := v1.Group("/admin")
		admin.Use(AuthMiddleware(opts.JWTSecret), AdminMiddleware())
		{
			admin.POST("/cache/invalidate", h.InvalidateCache)
		}
	}
	return router
}
