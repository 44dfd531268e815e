package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Администрирование AI Planner напрямую через хранилище",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yml", "путь к config.yml")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "формат вывода: table, json, yaml")

	rootCmd.AddCommand(usersCmd(opts))
	rootCmd.AddCommand(tasksCmd(opts))
	rootCmd.AddCommand(remindersCmd(opts))
	rootCmd.AddCommand(importCmd(opts))
	rootCmd.AddCommand(migrateCmd(opts))

	return rootCmd
}
