package main

import (
	"fmt"
	"text/tabwriter"

	"aiPlanner/internal/app"
	"aiPlanner/internal/config"
	"aiPlanner/internal/models/user"

	"github.com/spf13/cobra"
)

type userRow struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Role     string `json:"role" yaml:"role"`
}

func toUserRows(users []*user.User) []userRow {
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{ID: u.ID, Username: u.Username, Role: string(u.Role)})
	}
	return rows
}

func printUsers(cmd *cobra.Command, opts *globalOptions, users []*user.User) error {
	rows := toUserRows(users)
	return printOutput(cmd.OutOrStdout(), opts.output, rows, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tUSERNAME\tROLE")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Username, r.Role)
		}
	})
}

func usersCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Управление пользователями",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Список пользователей",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd.Context(), func(_ *config.Config, s *app.Services) error {
				return printUsers(cmd, opts, s.Users.ListUsers(cmd.Context()))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [username] [password]",
		Short: "Создать пользователя",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd.Context(), func(_ *config.Config, s *app.Services) error {
				created, err := s.Users.CreateUser(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printUsers(cmd, opts, []*user.User{created})
			})
		},
	})

	cmd.AddCommand(usersUpdateCmd(opts))

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [id]",
		Short: "Удалить пользователя вместе с его задачами",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd.Context(), func(cfg *config.Config, s *app.Services) error {
				// действуем от имени администратора, поэтому его самого удалить нельзя
				if err := s.Users.RemoveUser(cmd.Context(), cfg.Admin.ID, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "пользователь %s удалён\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func usersUpdateCmd(opts *globalOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Переименовать пользователя или сменить код",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" && password == "" {
				return fmt.Errorf("нужен --username или --password")
			}
			return opts.withServices(cmd.Context(), func(_ *config.Config, s *app.Services) error {
				var current *user.User
				for _, u := range s.Users.ListUsers(cmd.Context()) {
					if u.ID == args[0] {
						current = u
						break
					}
				}
				if current == nil {
					return fmt.Errorf("пользователь %s не найден", args[0])
				}

				newUsername, newPassword := current.Username, current.Password
				if username != "" {
					newUsername = username
				}
				if password != "" {
					newPassword = password
				}

				updated, err := s.Users.UpdateUser(cmd.Context(), current.ID, newUsername, newPassword)
				if err != nil {
					return err
				}
				return printUsers(cmd, opts, []*user.User{updated})
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "новое имя")
	cmd.Flags().StringVar(&password, "password", "", "новый код")
	return cmd
}
