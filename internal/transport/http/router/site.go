package router

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalog-admin/internal/transport/http/handler"
	"catalog-admin/internal/view"
)

type SiteDeps struct {
	Log       *zap.Logger
	View      *view.Renderer
	Templates *template.Template
	Images    Images
	Limits    Limits
}

func NewSiteEngine(d SiteDeps) *gin.Engine {
	r := newEngine(d.Log, d.Limits, d.Templates)
	mountImages(r, d.Images)

	sp := handler.NewSitePages(d.View)
	r.GET("/", sp.Home)
	r.NoRoute(sp.NotFound)
	return r
}
