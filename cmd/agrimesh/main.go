// Command agrimesh runs the farmer assistant: an HTTP API server or a
// one-shot question from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agrimesh",
	Short: "Voice-first farming assistant",
	Long: `agrimesh answers smallholder farmers' questions about crop disease,
soil, weather, market prices, government schemes and farm finances.

Configuration is read from the environment (and a local .env file):
  AGRIMESH_HTTP_ADDR          listen address (default :8080)
  AGRIMESH_STORAGE_PATH       SQLite file for durable sessions
  AGRIMESH_FAILURE_THRESHOLD  failures before a breaker opens (default 5)
  AGRIMESH_OPEN_TIMEOUT       open breaker recovery timeout (default 60s)
  OPENAI_API_KEY              enables speech, translation and inference
  ANTHROPIC_API_KEY           enables Claude-backed inference`,
}

func main() {
	rootCmd.AddCommand(serveCmd, askCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
