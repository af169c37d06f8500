// Package mcp implements a read-only MCP (Model Context Protocol) server
// over the vault. AI agents can enumerate credentials, inspect health and
// fetch TOTP codes, but plaintext passwords never cross the protocol.
package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/passkeep/passkeep/internal/config"
	"github.com/passkeep/passkeep/pkg/vault"
)

// passwordEnvVar supplies the master password to the server process. It is
// cleared from the environment immediately after reading.
const passwordEnvVar = "PASSKEEP_PASSWORD"

// Server wires the vault manager into an MCP stdio server.
type Server struct {
	server  *mcp.Server
	manager *vault.Manager
	cfg     config.Config
}

// ServerOptions configures NewServer.
type ServerOptions struct {
	// Config carries the vault path and analysis thresholds.
	Config config.Config

	// Password is the master password. If empty, the server reads
	// PASSKEEP_PASSWORD from the environment.
	Password string
}

// NewServer unlocks the vault and registers the read-only tools.
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts == nil {
		return nil, fmt.Errorf("mcp: options are required")
	}

	password := opts.Password
	if password == "" {
		password = os.Getenv(passwordEnvVar)
		// Clear the environment variable after reading for security
		os.Unsetenv(passwordEnvVar)
	}
	if password == "" {
		return nil, fmt.Errorf("mcp: no password provided: set %s", passwordEnvVar)
	}

	manager := vault.NewManager(opts.Config.VaultPath, opts.Config.VaultSettings())
	if err := manager.Unlock(password); err != nil {
		return nil, fmt.Errorf("mcp: failed to unlock vault: %w", err)
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "passkeep",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		server:  mcpServer,
		manager: manager,
		cfg:     opts.Config,
	}
	s.registerTools()
	return s, nil
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "credential_list",
		Description: "List stored credentials with metadata: service, username, tags, favorite and TOTP flags. Does NOT return passwords.",
	}, s.handleCredentialList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "credential_exists",
		Description: "Check whether a credential exists for a service and return its metadata. Does NOT return the password.",
	}, s.handleCredentialExists)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "credential_get_masked",
		Description: "Get a masked version of a credential's password (e.g. '****WXYZ') plus the username. Useful for verifying format without exposing the value.",
	}, s.handleCredentialGetMasked)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vault_health",
		Description: "Analyze vault hygiene: overall score, weak/reused/old/common password counts and recommendations.",
	}, s.handleVaultHealth)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "totp_code",
		Description: "Generate the current TOTP code for a credential that has a TOTP secret configured.",
	}, s.handleTOTPCode)
}

// Run starts the MCP server using stdio transport.
func (s *Server) Run(ctx context.Context) error {
	defer s.manager.Lock()

	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close locks the vault.
func (s *Server) Close() error {
	s.manager.Lock()
	return nil
}
