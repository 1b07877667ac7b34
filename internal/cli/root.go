// Package cli 命令行入口：serve、migrate、tick
package cli

import (
	"becoming_backend/internal/config"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configDir string

// RootCmd 不带子命令时启动服务
var RootCmd = &cobra.Command{
	Use:   "becoming",
	Short: "Becoming backend: API server and scheduled signal dispatcher",
	RunE:  runServe,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "configs", "directory containing config.yaml")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
