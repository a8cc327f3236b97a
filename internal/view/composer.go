// Package view 组装每个页面都需要的公共数据（头部菜单、当前管理员）并渲染模板。
package view

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"catalog-admin/internal/core/auth"
	"catalog-admin/internal/domain"
)

// Context 每次渲染计算一次，随模板数据一起传入
type Context struct {
	HeaderCategories []domain.Category
	CurrentAdmin     *domain.Admin
}

type MenuSource interface {
	Menu(ctx context.Context) ([]domain.Category, error)
}

type AdminResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Admin, error)
}

type Composer struct {
	menu        MenuSource
	admins      AdminResolver
	tokens      auth.TokenSource
	adminPrefix string
	log         *zap.Logger
}

func NewComposer(menu MenuSource, admins AdminResolver, tokens auth.TokenSource, adminPrefix string, l *zap.Logger) *Composer {
	return &Composer{
		menu:        menu,
		admins:      admins,
		tokens:      tokens,
		adminPrefix: strings.TrimRight(adminPrefix, "/"),
		log:         l,
	}
}

// Compose 不返回错误：菜单失败给空列表，身份解析失败给 nil
func (c *Composer) Compose(r *http.Request) Context {
	ctx := r.Context()
	vc := Context{HeaderCategories: []domain.Category{}}

	menu, err := c.menu.Menu(ctx)
	if err != nil {
		c.log.Warn("load header menu failed", zap.Error(err))
	} else if menu != nil {
		vc.HeaderCategories = menu
	}

	if c.admins == nil || !c.underAdmin(r.URL.Path) {
		return vc
	}
	tok := c.tokens.FromRequest(r)
	if tok == "" {
		return vc
	}
	a, err := c.admins.Resolve(ctx, tok)
	if err != nil {
		c.log.Debug("resolve admin for view failed", zap.String("path", r.URL.Path), zap.Error(err))
		return vc
	}
	vc.CurrentAdmin = a
	return vc
}

func (c *Composer) underAdmin(path string) bool {
	if c.adminPrefix == "" {
		return true
	}
	return path == c.adminPrefix || strings.HasPrefix(path, c.adminPrefix+"/")
}
