package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/trmquang93/magical-stories-sub004/internal/api/handlers/story"
	"github.com/trmquang93/magical-stories-sub004/internal/middleware"
)

func Setup(h *story.Handler) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORSMiddleware())
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	api.POST("/stories", h.Create)                           // queue a story for illustration
	api.GET("/stories/:id", h.Get)                           // story with page statuses
	api.GET("/stories/:id/pages/:page/image", h.PageImage)   // stored artwork
	api.POST("/stories/:id/pages/:page/retry", h.RetryPage)  // re-enqueue a failed page

	return r
}
