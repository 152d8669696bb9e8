package cmd

import (
	"fmt"
	"os"

	"github.com/haierkeys/campus-share-service/internal/model"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	Long: `Create or update the database schema and exit.

Useful when database.auto-migrate is disabled for the server.
It is safe to run this command multiple times.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		_, _, db, err := loadRuntime(configPath)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fmt.Println("Starting database migration...")

		if err := model.AutoMigrateAll(db); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Database migration completed successfully!")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringP("config", "c", "", "config file path")
}
