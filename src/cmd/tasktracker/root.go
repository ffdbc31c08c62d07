package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "tasktracker",
		Short:         "Task Tracker - users, tasks, comments and tags over a relational store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")

	serve := newServeCmd(&configFile)
	rootCmd.AddCommand(serve, newCheckConfigCmd(&configFile), newVersionCmd())

	// Running the bare binary serves
	rootCmd.RunE = serve.RunE

	return rootCmd
}
