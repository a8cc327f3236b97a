package router

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	mdw "catalog-admin/internal/transport/http/middleware"
)

// Limits 通用保护参数，零值使用默认
type Limits struct {
	RPS         float64
	Burst       int
	Concurrency int64
	MaxBody     int64
	Timeout     time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.Concurrency <= 0 {
		l.Concurrency = 300
	}
	if l.MaxBody <= 0 {
		l.MaxBody = 16 << 20
	}
	if l.Timeout <= 0 {
		l.Timeout = 10 * time.Second
	}
	return l
}

// Images 本地存储时由引擎直接提供图片；Dir 为空表示不挂载（如 S3）
type Images struct {
	Dir       string
	PublicURL string
}

func newEngine(l *zap.Logger, lim Limits, tmpl *template.Template) *gin.Engine {
	lim = lim.withDefaults()
	r := gin.New()
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBody),
		mdw.Timeout(lim.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func mountImages(r *gin.Engine, img Images) {
	if img.Dir == "" || img.PublicURL == "" {
		return
	}
	r.Static(img.PublicURL, img.Dir)
}
