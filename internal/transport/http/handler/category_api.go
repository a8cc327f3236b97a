package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/service"
	"catalog-admin/internal/transport/http/ez"
)

const msgCategoryNotFound = "Không tìm thấy danh mục"

type categoryOut struct {
	domain.Category
	ImageURL string `json:"imageUrl"`
}

type pageOut struct {
	Items    []categoryOut `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PerPage  int           `json:"perPage"`
	LastPage int           `json:"lastPage"`
}

type mutationOut struct {
	Message  string      `json:"message"`
	Category categoryOut `json:"category"`
}

// MountCategoryAPI /admin/v1/categories，分组需已挂鉴权
func MountCategoryAPI(g *gin.RouterGroup, svc *service.CategoryService) {
	e := ez.New(g)
	out := func(c *domain.Category) categoryOut {
		o := categoryOut{Category: *c}
		if name := c.ImageName(); name != "" {
			o.ImageURL = svc.Store().URL(name)
		}
		return o
	}
	mutated := func(msg string, c *domain.Category) mutationOut {
		return mutationOut{Message: msg, Category: out(c)}
	}

	ez.RegisterAction(e, ez.Action[service.ListQuery, pageOut]{
		Method: http.MethodGet,
		Path:   "/categories",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *service.ListQuery) (pageOut, error) {
			p, err := svc.List(c.Request.Context(), *q)
			if err != nil {
				return pageOut{}, apiErr(err)
			}
			items := make([]categoryOut, 0, len(p.Items))
			for i := range p.Items {
				items = append(items, out(&p.Items[i]))
			}
			return pageOut{Items: items, Total: p.Total, Page: p.Page, PerPage: p.PerPage, LastPage: p.LastPage}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, categoryOut]{
		Method: http.MethodGet,
		Path:   "/categories/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (categoryOut, error) {
			id, ok := parseID(c)
			if !ok {
				return categoryOut{}, ez.NotFound(msgCategoryNotFound)
			}
			cat, err := svc.Get(c.Request.Context(), id)
			if err != nil {
				return categoryOut{}, apiErr(err)
			}
			return out(cat), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, mutationOut]{
		Method: http.MethodPost,
		Path:   "/categories",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (mutationOut, error) {
			in, img, err := bindCategoryForm(c)
			if err != nil {
				return mutationOut{}, ez.BadRequest(err.Error())
			}
			cat, err := svc.Create(c.Request.Context(), in, img)
			if err != nil {
				return mutationOut{}, apiErr(err)
			}
			return mutated(service.MsgCreated, cat), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, mutationOut]{
		Method: http.MethodPut,
		Path:   "/categories/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (mutationOut, error) {
			id, ok := parseID(c)
			if !ok {
				return mutationOut{}, ez.NotFound(msgCategoryNotFound)
			}
			in, img, err := bindCategoryForm(c)
			if err != nil {
				return mutationOut{}, ez.BadRequest(err.Error())
			}
			cat, err := svc.Update(c.Request.Context(), id, in, img)
			if err != nil {
				return mutationOut{}, apiErr(err)
			}
			return mutated(service.MsgUpdated, cat), nil
		},
	})

	toggle := func(path, msg string, op func(*gin.Context, uint) (*domain.Category, error)) {
		ez.RegisterAction(e, ez.Action[struct{}, mutationOut]{
			Method: http.MethodPost,
			Path:   path,
			Binder: ez.BindNone,
			Handler: func(c *gin.Context, _ *struct{}) (mutationOut, error) {
				id, ok := parseID(c)
				if !ok {
					return mutationOut{}, ez.NotFound(msgCategoryNotFound)
				}
				cat, err := op(c, id)
				if err != nil {
					return mutationOut{}, apiErr(err)
				}
				return mutated(msg, cat), nil
			},
		})
	}
	toggle("/categories/:id/hide", service.MsgHidden, func(c *gin.Context, id uint) (*domain.Category, error) {
		return svc.Hide(c.Request.Context(), id)
	})
	toggle("/categories/:id/restore", service.MsgRestored, func(c *gin.Context, id uint) (*domain.Category, error) {
		return svc.Restore(c.Request.Context(), id)
	})
}

func apiErr(err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return ez.Unprocessable("Dữ liệu không hợp lệ", gin.H{"errors": verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		return ez.NotFound(msgCategoryNotFound)
	default:
		return ez.Internal("internal error", err)
	}
}
