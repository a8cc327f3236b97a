package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/service"
	"catalog-admin/internal/view"
)

const (
	listURL = "/admin/categories"

	tplIndex = "admin/categories/index"
	tplForm  = "admin/categories/form"
)

type CategoryPages struct {
	svc  *service.CategoryService
	view *view.Renderer
}

func NewCategoryPages(svc *service.CategoryService, v *view.Renderer) *CategoryPages {
	return &CategoryPages{svc: svc, view: v}
}

func (h *CategoryPages) Index(c *gin.Context) {
	var q service.ListQuery
	_ = c.ShouldBindQuery(&q)

	page, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	data := gin.H{"title": "Danh mục", "page": page, "query": q}
	if page.HasPrev() {
		data["prevURL"] = pageURL(q, page.Page-1)
	}
	if page.HasNext() {
		data["nextURL"] = pageURL(q, page.Page+1)
	}
	h.view.HTML(c, http.StatusOK, tplIndex, data)
}

func pageURL(q service.ListQuery, page int) string {
	v := url.Values{}
	for k, s := range map[string]string{"status": q.Status, "search": q.Search, "type": q.Type} {
		if s != "" {
			v.Set(k, s)
		}
	}
	v.Set("page", strconv.Itoa(page))
	return listURL + "?" + v.Encode()
}

func (h *CategoryPages) Create(c *gin.Context) {
	h.form(c, http.StatusOK, nil, service.CategoryInput{Display: true}, nil)
}

func (h *CategoryPages) Store(c *gin.Context) {
	in, img, err := bindCategoryForm(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	if _, err := h.svc.Create(c.Request.Context(), in, img); err != nil {
		h.formError(c, nil, in, err)
		return
	}
	view.SetFlash(c, service.MsgCreated)
	c.Redirect(http.StatusFound, listURL)
}

func (h *CategoryPages) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, http.StatusNotFound, layoutAdmin)
		return
	}
	cat, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	in := service.CategoryInput{Name: cat.Name, Type: cat.Type, Display: cat.Visible()}
	h.form(c, http.StatusOK, cat, in, nil)
}

func (h *CategoryPages) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, http.StatusNotFound, layoutAdmin)
		return
	}
	in, img, err := bindCategoryForm(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	if _, err := h.svc.Update(c.Request.Context(), id, in, img); err != nil {
		var cat *domain.Category
		if existing, gerr := h.svc.Get(c.Request.Context(), id); gerr == nil {
			cat = existing
		}
		h.formError(c, cat, in, err)
		return
	}
	view.SetFlash(c, service.MsgUpdated)
	c.Redirect(http.StatusFound, listURL)
}

func (h *CategoryPages) Hide(c *gin.Context) {
	h.toggle(c, h.svc.Hide, service.MsgHidden)
}

func (h *CategoryPages) Restore(c *gin.Context) {
	h.toggle(c, h.svc.Restore, service.MsgRestored)
}

func (h *CategoryPages) toggle(c *gin.Context, op func(context.Context, uint) (*domain.Category, error), msg string) {
	id, ok := parseID(c)
	if !ok {
		h.view.Error(c, http.StatusNotFound, layoutAdmin)
		return
	}
	if _, err := op(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	view.SetFlash(c, msg)
	c.Redirect(http.StatusFound, listURL)
}

func (h *CategoryPages) form(c *gin.Context, status int, cat *domain.Category, in service.CategoryInput, errs map[string]string) {
	title, action := "Thêm danh mục", listURL
	if cat != nil {
		title, action = "Sửa danh mục", fmt.Sprintf("%s/%d", listURL, cat.ID)
	}
	if errs == nil {
		errs = map[string]string{}
	}
	h.view.HTML(c, status, tplForm, gin.H{
		"title":    title,
		"action":   action,
		"category": cat,
		"form":     in,
		"errors":   errs,
	})
}

// formError 校验失败回到表单（422），其它错误走错误页
func (h *CategoryPages) formError(c *gin.Context, cat *domain.Category, in service.CategoryInput, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		h.form(c, http.StatusUnprocessableEntity, cat, in, verr.Fields)
		return
	}
	h.fail(c, err)
}

func (h *CategoryPages) badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	h.view.Error(c, http.StatusBadRequest, layoutAdmin)
}

func (h *CategoryPages) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		h.view.Error(c, http.StatusNotFound, layoutAdmin)
		return
	}
	_ = c.Error(err)
	h.view.Error(c, http.StatusInternalServerError, layoutAdmin)
}
