package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"catalog-admin/internal/core/auth"
	"catalog-admin/internal/service"
	"catalog-admin/internal/view"
)

const (
	loginURL = "/admin/login"
	tplLogin = "admin/login"

	msgBadCredentials = "Email hoặc mật khẩu không đúng"
)

// CookieOptions 登录 cookie 的属性
type CookieOptions struct {
	MaxAge int
	Secure bool
}

type AuthPages struct {
	auth   *service.AuthService
	view   *view.Renderer
	tokens auth.TokenSource
	cookie CookieOptions
}

func NewAuthPages(a *service.AuthService, v *view.Renderer, tokens auth.TokenSource, co CookieOptions) *AuthPages {
	return &AuthPages{auth: a, view: v, tokens: tokens, cookie: co}
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (h *AuthPages) LoginForm(c *gin.Context) {
	h.view.HTML(c, http.StatusOK, tplLogin, gin.H{"title": "Đăng nhập"})
}

func (h *AuthPages) Login(c *gin.Context) {
	var in loginForm
	if err := c.ShouldBind(&in); err != nil {
		_ = c.Error(err)
		h.view.Error(c, http.StatusBadRequest, layoutAdmin)
		return
	}
	tok, _, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		if !errors.Is(err, service.ErrBadCredentials) {
			_ = c.Error(err)
			h.view.Error(c, http.StatusInternalServerError, layoutAdmin)
			return
		}
		h.view.HTML(c, http.StatusUnauthorized, tplLogin, gin.H{
			"title": "Đăng nhập",
			"email": strings.TrimSpace(in.Email),
			"error": msgBadCredentials,
		})
		return
	}
	h.setToken(c, tok, h.cookie.MaxAge)
	c.Redirect(http.StatusFound, listURL)
}

func (h *AuthPages) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), h.tokens.FromRequest(c.Request)); err != nil {
		_ = c.Error(err)
	}
	h.setToken(c, "", -1)
	c.Redirect(http.StatusFound, loginURL)
}

func (h *AuthPages) setToken(c *gin.Context, tok string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.tokens.Cookie, tok, maxAge, "/", "", h.cookie.Secure, true)
}
