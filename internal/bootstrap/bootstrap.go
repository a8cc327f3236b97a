// Package bootstrap 按配置组装两个进程共用的依赖：日志、数据库、缓存、图片存储和服务。
package bootstrap

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"catalog-admin/internal/core/auth"
	"catalog-admin/internal/core/cache"
	"catalog-admin/internal/core/config"
	"catalog-admin/internal/core/database"
	"catalog-admin/internal/core/logger"
	"catalog-admin/internal/repo"
	"catalog-admin/internal/service"
	"catalog-admin/internal/storage"
	"catalog-admin/internal/transport/http/router"
	"catalog-admin/internal/view"
)

type App struct {
	Cfg        *config.Config
	Log        *zap.Logger
	DB         *gorm.DB
	Cache      *cache.Cache // redis.addr 为空时为 nil
	Store      storage.Store
	Categories *service.CategoryService
	Auth       *service.AuthService
	Tokens     auth.TokenSource

	closers []func()
}

// NewLogger 单独暴露，cmd 里加载配置后先建日志
func NewLogger(cfg *config.Config) (*zap.Logger, func()) {
	r := cfg.Log.Rotate
	return logger.New(logger.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     r.Enable,
			Filename:   r.Filename,
			MaxSizeMB:  r.MaxSizeMB,
			MaxBackups: r.MaxBackups,
			MaxAgeDays: r.MaxAgeDays,
			Compress:   r.Compress,
		},
	})
}

func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             logger.StdLogger(l.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open db (%s %s): %w", cfg.DB.Driver, database.MaskDSN(cfg.DB.DSN), err)
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))
	return db, nil
}

func NewStore(ctx context.Context, cfg config.Storage) (storage.Store, error) {
	switch cfg.Driver {
	case "", "local":
		return storage.NewLocalStore(cfg.Dir, cfg.PublicURL), nil
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
			PublicURL: cfg.PublicURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// New 任一依赖失败都会关闭已打开的资源并返回错误
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (a *App, err error) {
	a = &App{Cfg: cfg, Log: l}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	if a.DB, err = OpenDB(cfg, l); err != nil {
		return a, err
	}
	a.closers = append(a.closers, func() {
		if sqlDB, e := a.DB.DB(); e == nil {
			_ = sqlDB.Close()
		}
	})
	if cfg.DB.AutoMigrate {
		if err = database.Migrate(a.DB); err != nil {
			return a, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		a.closers = append(a.closers, func() { _ = c.Close() })
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err = c.Ping(pctx); err != nil {
			return a, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		a.Cache = c
		l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	if a.Store, err = NewStore(ctx, cfg.Storage); err != nil {
		return a, err
	}

	a.Categories = service.NewCategoryService(repo.NewCategoryRepo(a.DB), a.Store, l.Named("category"))
	if cfg.View.MenuLimit > 0 {
		a.Categories.MenuLimit = cfg.View.MenuLimit
	}
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	a.Auth = service.NewAuthService(repo.NewAdminRepo(a.DB), jwter, a.Cache, l.Named("auth"))
	a.Tokens = auth.TokenSource{Cookie: cfg.Auth.Cookie, Header: cfg.Auth.Header}
	return a, nil
}

// Close 逆序释放
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) Renderer() *view.Renderer {
	return view.NewRenderer(view.NewComposer(a.Categories, a.Auth, a.Tokens, a.Cfg.Auth.AdminPrefix, a.Log.Named("view")))
}

func (a *App) Templates() (*template.Template, error) {
	return view.Templates(a.Store)
}

// Images 只有本地存储需要由进程自己提供静态文件
func (a *App) Images() router.Images {
	if ls, ok := a.Store.(*storage.LocalStore); ok {
		return router.Images{Dir: ls.Dir, PublicURL: ls.PublicURL}
	}
	return router.Images{}
}
