package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/modryn-studio/specifythat/internal/config"
	"github.com/modryn-studio/specifythat/internal/logging"
	"github.com/modryn-studio/specifythat/internal/mcpserver"
	"github.com/modryn-studio/specifythat/internal/tui"
)

var outDir string

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interview in the terminal",
	Long: `Walks through the project questions in a full-screen terminal UI.
When the interview is complete, ctrl+g generates the spec and ctrl+s saves
it as markdown in the output directory.`,
	RunE: runInterview,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the interview to an agent over MCP (stdio)",
	Long: `Runs an MCP server on stdin/stdout. Add it to your agent's MCP config:

  "specifythat": { "command": "specifythat", "args": ["mcp"] }`,
	RunE: runMCP,
}

func init() {
	interviewCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to save generated specs in")
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(mcpCmd)
}

// Both front ends own stdout, so they log to a rotating file instead.
func fileApp(cfg *config.Config) (*app, func(), error) {
	logger, closer := logging.NewFile(cfg.LogFile, cfg.SlogLevel())
	a, err := newApp(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return a, func() {
		a.Close()
		closer.Close()
	}, nil
}

func runInterview(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, cleanup, err := fileApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return tui.Run(ctx, tui.Options{
		Manager:  a.manager,
		Specs:    a.specs,
		Ideation: a.ideation,
		Fs:       afero.NewOsFs(),
		OutDir:   outDir,
		Logger:   a.logger,
	})
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, cleanup, err := fileApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		_ = a.manager.Run(ctx)
	}()

	s := mcpserver.New(a.manager, a.specs, a.ideation, Version, a.logger)
	a.logger.Info("mcp server starting", "transport", "stdio")
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
