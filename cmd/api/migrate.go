package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed default roles",
	Long: `Create or update the database schema and seed permissions, the admin and
user roles, and the admin account when ADMIN_EMAIL and ADMIN_PASSWORD are set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		return a.migrate()
	},
}
