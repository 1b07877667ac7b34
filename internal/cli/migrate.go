package cli

import (
	"becoming_backend/pkg/database"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		Run:   runMigrate,
	})
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		exitErr("migrate", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	fmt.Println("migration completed")
}
