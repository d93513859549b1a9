package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modryn-studio/specifythat/internal/config"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "specifythat",
	Short: "SpecifyThat - turn a project idea into a buildable spec",
	Long: `SpecifyThat interviews you about a software idea and writes a project
specification from your answers.

Commands:
  serve       Run the HTTP API
  interview   Run an interview in the terminal
  mcp         Serve the interview to an agent over MCP (stdio)
  specs       List archived specs
  version     Show version info`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "read environment variables from this file (default ./.env when present)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
