package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"catalog-admin/internal/bootstrap"
	"catalog-admin/internal/core/database"
	"catalog-admin/internal/core/server"
	"catalog-admin/internal/service"
	"catalog-admin/internal/transport/http/handler"
	"catalog-admin/internal/transport/http/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the categories and admins tables",
	RunE:  runMigrate,
}

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "display name (default: part before @)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	app, err := bootstrap.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	tmpl, err := app.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	if !cfg.Auth.Enforce {
		log.Warn("admin auth is NOT enforced, category pages are public")
	}

	h := cfg.App.Admin
	writeTimeout := time.Duration(h.WriteTimeoutSec) * time.Second
	r := router.NewAdminEngine(router.AdminDeps{
		Log:        log,
		Categories: app.Categories,
		Auth:       app.Auth,
		View:       app.Renderer(),
		Templates:  tmpl,
		Tokens:     app.Tokens,
		Cookie: handler.CookieOptions{
			MaxAge: cfg.JWT.AccessTokenTTLMin * 60,
			Secure: cfg.Auth.SecureCookie,
		},
		Enforce: cfg.Auth.Enforce,
		Images:  app.Images(),
		Limits:  router.Limits{Timeout: writeTimeout},
	})

	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(addr, r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		writeTimeout,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)
	base := server.BaseURL(h.Host, h.Port)
	log.Info("admin starting",
		zap.String("addr", addr),
		zap.String("open", base+"/admin/categories"),
		zap.String("health", base+"/health"),
		zap.String("admin_v1", base+"/admin/v1"),
		zap.String("storage", cfg.Storage.Driver),
	)
	return server.Run(srv, log, "admin", 10*time.Second)
}

func runMigrate(*cobra.Command, []string) error {
	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	db, err := bootstrap.OpenDB(cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("migrate done")
	return nil
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	app, err := bootstrap.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	a, err := app.Auth.CreateAdmin(ctx, adminEmail, adminName, adminPassword)
	if errors.Is(err, service.ErrAdminExists) {
		return fmt.Errorf("admin %s already exists", adminEmail)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", a.Email, a.ID)
	return nil
}
