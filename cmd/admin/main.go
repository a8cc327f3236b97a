package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"catalog-admin/internal/bootstrap"
	"catalog-admin/internal/core/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "catalog-admin",
	Short:         "Category back-office for the shop",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup 加载配置和日志；返回的 func 在退出前调用
func setup() (*config.Config, *zap.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log, cleanup := bootstrap.NewLogger(cfg)
	return cfg, log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env)), cleanup, nil
}
