package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"aiPlanner/internal/app"
	"aiPlanner/internal/config"
	"aiPlanner/internal/models/task"
	"aiPlanner/internal/timeline"

	"github.com/spf13/cobra"
)

func tasksCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Задачи пользователя",
	}
	cmd.AddCommand(tasksListCmd(opts))
	return cmd
}

func tasksListCmd(opts *globalOptions) *cobra.Command {
	var (
		username string
		mode     string
		search   string
		taskType string
		tags     []string
		date     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Видимый список задач с теми же фильтрами, что и в API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedMode, err := timeline.ParseMode(mode)
			if err != nil {
				return err
			}

			return opts.withServices(cmd.Context(), func(cfg *config.Config, s *app.Services) error {
				if username == "" {
					username = cfg.Admin.Username
				}
				view, err := s.Tasks.View(cmd.Context(), username, timeline.Filter{
					Search: search,
					Type:   taskType,
					Tags:   tags,
					Date:   date,
					Mode:   parsedMode,
				})
				if err != nil {
					return err
				}

				out := map[string][]taskRow{
					"focus":   toRows(view.Focus),
					"regular": toRows(view.Regular),
				}
				return printOutput(cmd.OutOrStdout(), opts.output, out, func(tw *tabwriter.Writer) {
					writeTaskTable(tw, append(out["focus"], out["regular"]...))
				})
			})
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "имя пользователя (по умолчанию администратор)")
	cmd.Flags().StringVar(&mode, "mode", "ACTIVE", "ACTIVE, COMPLETED или TRASH")
	cmd.Flags().StringVarP(&search, "query", "q", "", "поиск по названию и описанию")
	cmd.Flags().StringVar(&taskType, "type", "", "тип задачи или ALL")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "теги через запятую")
	cmd.Flags().StringVar(&date, "date", "", "дата дедлайна, YYYY-MM-DD")
	return cmd
}

func remindersCmd(opts *globalOptions) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Сроки на сегодня, завтра и ближайшие дни",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd.Context(), func(cfg *config.Config, s *app.Services) error {
				if username == "" {
					username = cfg.Admin.Username
				}
				buckets, err := s.Tasks.Reminders(cmd.Context(), username)
				if err != nil {
					return err
				}

				out := map[string][]taskRow{
					"today":    toRows(buckets.Today),
					"tomorrow": toRows(buckets.Tomorrow),
					"upcoming": toRows(buckets.Upcoming),
				}
				return printOutput(cmd.OutOrStdout(), opts.output, out, func(tw *tabwriter.Writer) {
					if buckets.Empty() {
						fmt.Fprintln(tw, "ничего срочного")
						return
					}
					for _, name := range []string{"today", "tomorrow", "upcoming"} {
						if len(out[name]) == 0 {
							continue
						}
						fmt.Fprintf(tw, "%s\n", strings.ToUpper(name))
						writeTaskTable(tw, out[name])
						fmt.Fprintln(tw)
					}
				})
			})
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "имя пользователя (по умолчанию администратор)")
	return cmd
}

func importCmd(opts *globalOptions) *cobra.Command {
	var (
		username string
		file     string
		meeting  string
	)

	cmd := &cobra.Command{
		Use:   "import [text]",
		Short: "Создать задачи из свободного текста через модель",
		Long: `Текст берётся из аргумента, из файла (--file) или из stdin.
С --meeting текст считается протоколом встречи с указанным заголовком.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readImportText(cmd.InOrStdin(), args, file)
			if err != nil {
				return err
			}

			return opts.withServices(cmd.Context(), func(cfg *config.Config, s *app.Services) error {
				if username == "" {
					username = cfg.Admin.Username
				}

				start := time.Now()
				var created []*task.Task
				var err error
				if cmd.Flags().Changed("meeting") {
					created, err = s.Enrich.MeetingNotes(cmd.Context(), username, meeting, text)
				} else {
					created, err = s.Enrich.ImportText(cmd.Context(), username, text)
				}
				if err != nil {
					return err
				}

				rows := toRows(created)
				fmt.Fprintf(cmd.ErrOrStderr(), "создано задач: %d за %s\n", len(rows), time.Since(start).Round(time.Millisecond))
				return printOutput(cmd.OutOrStdout(), opts.output, rows, func(tw *tabwriter.Writer) {
					writeTaskTable(tw, rows)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "имя пользователя (по умолчанию администратор)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "файл с текстом")
	cmd.Flags().StringVar(&meeting, "meeting", "", "заголовок встречи")
	return cmd
}

func readImportText(stdin io.Reader, args []string, file string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("чтение %s: %w", file, err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("чтение stdin: %w", err)
		}
		return string(data), nil
	}
}
