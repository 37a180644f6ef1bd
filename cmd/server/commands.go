package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/swiftchat-web/gateway"
	"github.com/jrsteele09/swiftchat-web/storage/postgres"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swiftchat-web",
	Short: "SwiftChat web frontend",
	Long: `Serves the SwiftChat web pages and keeps each browser's login session
against the SwiftChat API.

Configuration comes from the environment, an optional .env file and an
optional YAML file named by CONFIG_FILE.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply browser storage migrations to DATABASE_URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		url := c.GetDatabaseURL()
		if url == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
		if err := postgres.RunMigrations(url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the SwiftChat API is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		status := gateway.CheckHealth(context.Background(), c.GetAPIBaseURL(), c.GetHealthCheckTimeout())

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			return err
		}
		if !status.IsHealthy {
			return fmt.Errorf("[healthcheck] API unhealthy: %s", status.Message)
		}
		return nil
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	return run(c)
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, healthcheckCmd)
}
