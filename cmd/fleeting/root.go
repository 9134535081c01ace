package main

import (
	"fmt"
	"os"

	"github.com/on-the-ground/fleeting_state/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "fleeting",
	Short: "fleeting is a type-keyed reactive state container",
	Long: `fleeting keeps at most one live state slot per Go type, mutates slots only
through dispatched actions and runs effects after every commit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML store config (defaults when empty)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
}

func loadConfig(cmd *cobra.Command) (store.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return store.DefaultConfig(), nil
	}
	return store.LoadConfig(path)
}

func logLevel(cmd *cobra.Command) (zapcore.Level, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := zapcore.ParseLevel(raw)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid --log-level %q: %w", raw, err)
	}
	return level, nil
}
