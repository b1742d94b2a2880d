package cmd

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "screenshot-translator",
	Short: "OCR and translate screenshots through a local multimodal llama server",
	Long: `Screenshot Translator accepts a screenshot, normalizes it to PNG and asks a
locally hosted vision model (llama.cpp server, OpenAI-compatible API) to
extract its text as Markdown, leaving code verbatim and translating prose.

It also reports the state of the llama server by combining its log output
with live probes of /slots and /v1/models.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env file if present (ignore errors)
		_ = godotenv.Load()
	},
}

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
