package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"catalog-admin/internal/bootstrap"
	"catalog-admin/internal/core/config"
	"catalog-admin/internal/core/server"
	"catalog-admin/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	log, cleanup := bootstrap.NewLogger(cfg)
	defer cleanup()
	log = log.With(zap.String("app", cfg.App.Name+"-site"), zap.String("env", cfg.App.Env))

	app, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer app.Close()

	tmpl, err := app.Templates()
	if err != nil {
		log.Fatal("parse templates", zap.Error(err))
	}

	h := cfg.App.HTTP
	writeTimeout := time.Duration(h.WriteTimeoutSec) * time.Second
	r := router.NewSiteEngine(router.SiteDeps{
		Log:       log,
		View:      app.Renderer(),
		Templates: tmpl,
		Images:    app.Images(),
		Limits:    router.Limits{Timeout: writeTimeout},
	})

	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(addr, r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		writeTimeout,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)
	base := server.BaseURL(h.Host, h.Port)
	log.Info("site starting", zap.String("addr", addr), zap.String("open", base), zap.String("health", base+"/health"))
	if err := server.Run(srv, log, "site", 10*time.Second); err != nil {
		log.Error("site stopped with error", zap.Error(err))
	}
}
