package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/casapps/tasktracker/src/internal/config"
	"github.com/casapps/tasktracker/src/internal/database"
	"github.com/casapps/tasktracker/src/internal/server"
)

func newCheckConfigCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate configuration and test the database connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			if file := cfg.ConfigFileUsed(); file != "" {
				fmt.Fprintf(out, "Configuration loaded from %s\n", file)
			} else {
				fmt.Fprintln(out, "Configuration loaded from defaults and environment")
			}

			db, err := database.Initialize(cfg)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				return fmt.Errorf("database ping failed: %w", err)
			}
			fmt.Fprintf(out, "Database %s reachable\n", cfg.GetString("database.type"))

			fmt.Fprintln(out, "Configuration is valid")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tasktracker %s\n", server.Version)
		},
	}
}
