package cmd

import (
	"fmt"
	"log"

	"github.com/chew-z/screenshot-translator/internal/config"
	"github.com/chew-z/screenshot-translator/internal/llama"
	"github.com/chew-z/screenshot-translator/internal/status"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the inferred llama server status",
	Long: `Read the tail of the llama server log and probe /slots and /v1/models,
then print the merged status exactly as /api/llama-status reports it.`,
	Args: cobra.NoArgs,
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().String("log", "", "Log file to read (default: log_path from config)")
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logPath, _ := cmd.Flags().GetString("log")
	if logPath == "" {
		logPath = cfg.LogPath
	}

	client := llama.NewClient(cfg.APIBase, cfg.ProbeTimeout)
	monitor := status.NewMonitor(logPath, status.NewProber(client, cfg.ProbeTimeout))

	fmt.Fprintln(cmd.OutOrStdout(), monitor.Status(cmd.Context()))
}
