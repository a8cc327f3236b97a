package view

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-admin/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs 模板函数；imageURL 依赖具体存储拼地址
func Funcs(store storage.Store) template.FuncMap {
	return template.FuncMap{
		"imageURL": func(name string) string {
			if name == "" {
				return ""
			}
			return store.URL(name)
		},
		"add": func(a, b int) int { return a + b },
	}
}

// Templates 解析内置模板，按 {{define}} 的名字渲染
func Templates(store storage.Store) (*template.Template, error) {
	return template.New("").Funcs(Funcs(store)).ParseFS(templateFS, "templates/*.html")
}

type Renderer struct {
	composer *Composer
}

func NewRenderer(c *Composer) *Renderer { return &Renderer{composer: c} }

// HTML 每次渲染前计算一次 Context，与页面数据合并后交给模板
func (r *Renderer) HTML(c *gin.Context, status int, name string, data gin.H) {
	vc := r.composer.Compose(c.Request)
	if data == nil {
		data = gin.H{}
	}
	data["headerCategories"] = vc.HeaderCategories
	data["currentAdmin"] = vc.CurrentAdmin
	if _, ok := data["flash"]; !ok {
		data["flash"] = PopFlash(c)
	}
	c.HTML(status, name, data)
}

func (r *Renderer) Error(c *gin.Context, status int, layout string) {
	r.HTML(c, status, "error", gin.H{
		"title":  http.StatusText(status),
		"status": status,
		"layout": layout,
	})
}
