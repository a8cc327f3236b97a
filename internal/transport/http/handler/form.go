package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"catalog-admin/internal/service"
)

const (
	fieldDisplay = "category_is_display"
	layoutAdmin  = "admin"
	layoutSite   = "site"
)

// bindCategoryForm 文本字段、可见性（只看 key 是否存在）和可选的图片
func bindCategoryForm(c *gin.Context) (service.CategoryInput, *service.Upload, error) {
	var in service.CategoryInput
	if err := c.ShouldBind(&in); err != nil {
		return in, nil, err
	}
	_, in.Display = c.GetPostForm(fieldDisplay)

	fh, err := c.FormFile(service.FieldImage)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, nil, nil
	case err != nil:
		return in, nil, err
	}
	return in, service.UploadFromHeader(fh), nil
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
