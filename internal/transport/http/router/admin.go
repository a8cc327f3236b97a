package router

import (
	"html/template"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalog-admin/internal/core/auth"
	"catalog-admin/internal/service"
	"catalog-admin/internal/transport/http/handler"
	mdw "catalog-admin/internal/transport/http/middleware"
	"catalog-admin/internal/view"
)

type AdminDeps struct {
	Log        *zap.Logger
	Categories *service.CategoryService
	Auth       *service.AuthService
	View       *view.Renderer
	Templates  *template.Template
	Tokens     auth.TokenSource
	Cookie     handler.CookieOptions
	// Enforce 为 false 时分类页面与接口不校验登录（本地调试用）
	Enforce bool
	Images  Images
	Limits  Limits
}

func NewAdminEngine(d AdminDeps) *gin.Engine {
	r := newEngine(d.Log, d.Limits, d.Templates)
	r.Use(cors.Default())
	mountImages(r, d.Images)

	ap := handler.NewAuthPages(d.Auth, d.View, d.Tokens, d.Cookie)
	admin := r.Group("/admin")
	admin.GET("/login", ap.LoginForm)
	admin.POST("/login", mdw.RateLimitPerIP(1, 10), ap.Login)
	admin.POST("/logout", ap.Logout)

	cp := handler.NewCategoryPages(d.Categories, d.View)
	pages := admin.Group("/categories")
	if d.Enforce {
		pages.Use(mdw.RequireAdmin(d.Auth, d.Tokens, "/admin/login", d.Log))
	}
	pages.GET("", cp.Index)
	pages.POST("", cp.Store)
	pages.GET("/create", cp.Create)
	pages.GET("/:id/edit", cp.Edit)
	pages.POST("/:id", cp.Update)
	pages.PUT("/:id", cp.Update)
	pages.DELETE("/:id", cp.Hide)
	pages.POST("/:id/hide", cp.Hide)
	pages.POST("/:id/restore", cp.Restore)

	api := admin.Group("/v1")
	if d.Enforce {
		api.Use(mdw.RequireAdmin(d.Auth, d.Tokens, "", d.Log))
	}
	handler.MountCategoryAPI(api, d.Categories)

	r.NoRoute(func(c *gin.Context) { d.View.Error(c, http.StatusNotFound, "admin") })
	return r
}
