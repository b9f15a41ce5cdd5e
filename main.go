package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "task-agent",
	Short: "Task Manager Agent dashboard backend",
	Long: `task-agent serves the AI workspace dashboard API.

Chat requests are forwarded to Gemini with two function schemas,
get_task_data and update_task_or_create_new, and the returned call is
applied to the session's in-memory task list.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func syncLogger(logger *zap.Logger) {
	_ = logger.Sync()
}
