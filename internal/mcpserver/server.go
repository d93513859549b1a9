// Package mcpserver exposes the interview over the Model Context Protocol so
// an agent can run one on a user's behalf.
package mcpserver

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/modryn-studio/specifythat/internal/ideation"
	"github.com/modryn-studio/specifythat/internal/sessions"
	"github.com/modryn-studio/specifythat/internal/specs"
)

const instructions = `SpecifyThat interviews a user about a software idea and turns the answers into a project spec.

Start with interview_start, then relay each question to the user and submit their reply with interview_answer.
If the user is unsure, call interview_dont_know: it suggests an answer (accept it with interview_accept_suggestion)
or, on the description question, opens a short ideation dialog completed with interview_ideation_complete.
When the analysis reports several buildable units, ask the user which one to specify and call interview_select_unit.
Once the status is completed, call interview_generate_spec.`

// New builds the MCP server with every interview tool registered.
func New(mgr *sessions.Manager, specSvc *specs.Service, ideationSvc *ideation.Service, version string, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"specifythat",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	t := NewTools(mgr, specSvc, ideationSvc, logger)
	for _, tool := range t.All() {
		s.AddTool(tool.Definition, tool.Handle)
	}
	return s
}
