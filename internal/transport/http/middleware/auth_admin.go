package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalog-admin/internal/core/auth"
	"catalog-admin/internal/domain"
	resp "catalog-admin/internal/transport/http/response"
)

const KeyAdmin = "admin"

type AdminResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Admin, error)
}

// RequireAdmin loginURL 非空时未登录跳转登录页（HTML），否则返回 401 信封（JSON）
func RequireAdmin(r AdminResolver, src auth.TokenSource, loginURL string, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := src.FromRequest(c.Request)
		if tok == "" {
			deny(c, loginURL, "missing token")
			return
		}
		a, err := r.Resolve(c.Request.Context(), tok)
		if err != nil {
			l.Debug("admin auth rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			deny(c, loginURL, "invalid token")
			return
		}
		c.Set(KeyAdmin, a)
		c.Next()
	}
}

func deny(c *gin.Context, loginURL, msg string) {
	if loginURL != "" {
		c.Redirect(http.StatusFound, loginURL)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, msg))
}

// CurrentAdmin RequireAdmin 之后可用
func CurrentAdmin(c *gin.Context) *domain.Admin {
	if v, ok := c.Get(KeyAdmin); ok {
		if a, ok := v.(*domain.Admin); ok {
			return a
		}
	}
	return nil
}
