package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-admin/internal/view"
)

type SitePages struct{ view *view.Renderer }

func NewSitePages(v *view.Renderer) *SitePages { return &SitePages{view: v} }

// Home 首页只展示头部菜单里的分类
func (h *SitePages) Home(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, "site/home", gin.H{"title": "Trang chủ"})
}

func (h *SitePages) NotFound(c *gin.Context) {
	h.view.Error(c, http.StatusNotFound, layoutSite)
}
