package middleware

import (
	"github.com/gin-gonic/gin"

	resp "catalog-admin/internal/transport/http/response"
)

// abort 保护类中间件统一用真实 HTTP 状态 + 信封，HTML 页面和 JSON 接口都能识别
func abort(c *gin.Context, status, code int, msg string) {
	c.AbortWithStatusJSON(status, resp.Error(code, msg))
}
