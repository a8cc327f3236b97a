package auth

import (
	"net/http"
	"strings"
)

// TokenSource 描述从请求里取 token 的位置
type TokenSource struct {
	Cookie string // admin_token
	Header string // X-Admin-Token
}

// FromRequest 按 cookie → 自定义 header → Authorization 的顺序取第一个非空值，
// Authorization 去掉可选的 "Bearer " 前缀
func (s TokenSource) FromRequest(r *http.Request) string {
	if s.Cookie != "" {
		if ck, err := r.Cookie(s.Cookie); err == nil && ck.Value != "" {
			return ck.Value
		}
	}
	if s.Header != "" {
		if v := strings.TrimSpace(r.Header.Get(s.Header)); v != "" {
			return v
		}
	}
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
}
