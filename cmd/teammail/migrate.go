package main

import (
	"github.com/spf13/cobra"
	"github.com/welldanyogia/webrana-teammail-backend/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and seed system labels",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close(db)

		return database.Migrate(db)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
