package main

import (
	"fmt"

	"aiPlanner/internal/app"
	"aiPlanner/internal/config"
	pgdoc "aiPlanner/internal/repository/document/postgres"

	"github.com/spf13/cobra"
)

func migrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить схему Postgres и перенести старый раздел задач администратору",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if cfg.Storage.Type == "postgres" {
				if err := pgdoc.RunMigrations(cfg.Storage.Postgres.URL); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "схема postgres актуальна")
			}

			// загрузка пользователей сама переносит komplement_tasks_v1
			return opts.withServices(cmd.Context(), func(cfg *config.Config, s *app.Services) error {
				fmt.Fprintf(cmd.OutOrStdout(), "хранилище %s готово, пользователей: %d\n",
					cfg.Storage.Type, len(s.Users.ListUsers(cmd.Context())))
				return nil
			})
		},
	}
}
