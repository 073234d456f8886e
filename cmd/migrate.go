package cmd

import (
	"perch/config"
	"perch/db"
	"perch/model"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := db.ConnectGormDB(cfg); err != nil {
			return err
		}
		defer db.CloseGormDB()

		return db.AutoMigrateModels(&model.User{}, &model.Follow{}, &model.Post{}, &model.Hashtag{})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
