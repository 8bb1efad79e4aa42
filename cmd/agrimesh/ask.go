package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/missionai/agrimesh/config"
)

var (
	askUserID string
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask a single question from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askUserID, "user", "cli-user", "user id for session state")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full response as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	mesh, closeFn, err := buildMesh(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	resp := mesh.ProcessText(cmd.Context(), askUserID, strings.Join(args, " "), "")

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Println(resp.Message)
	for _, alt := range resp.Alternatives {
		fmt.Println("  -", alt)
	}
	return nil
}
