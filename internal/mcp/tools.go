package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/passkeep/passkeep/pkg/security"
	"github.com/passkeep/passkeep/pkg/totp"
	"github.com/passkeep/passkeep/pkg/vault"
)

// CredentialListInput filters credential_list. All fields are optional.
type CredentialListInput struct {
	Tag           string `json:"tag,omitempty"`
	FavoritesOnly bool   `json:"favorites_only,omitempty"`
}

// CredentialListOutput is the credential_list result.
type CredentialListOutput struct {
	Credentials []CredentialInfo `json:"credentials"`
}

// CredentialInfo is credential metadata without the password.
type CredentialInfo struct {
	Service      string   `json:"service"`
	Username     string   `json:"username"`
	Tags         []string `json:"tags,omitempty"`
	Favorite     bool     `json:"favorite"`
	HasTOTP      bool     `json:"has_totp"`
	HasNotes     bool     `json:"has_notes"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
	LastAccessed string   `json:"last_accessed,omitempty"`
}

// CredentialExistsInput identifies a credential by service.
type CredentialExistsInput struct {
	Service string `json:"service"`
}

// CredentialExistsOutput is the credential_exists result.
type CredentialExistsOutput struct {
	Exists     bool            `json:"exists"`
	Service    string          `json:"service"`
	Credential *CredentialInfo `json:"credential,omitempty"`
}

// CredentialGetMaskedInput identifies a credential by service.
type CredentialGetMaskedInput struct {
	Service string `json:"service"`
}

// CredentialGetMaskedOutput is the credential_get_masked result.
type CredentialGetMaskedOutput struct {
	Service        string `json:"service"`
	Username       string `json:"username"`
	MaskedPassword string `json:"masked_password"`
	PasswordLength int    `json:"password_length"`
}

// VaultHealthInput has no parameters.
type VaultHealthInput struct{}

// TOTPCodeInput identifies a credential by service.
type TOTPCodeInput struct {
	Service string `json:"service"`
}

// TOTPCodeOutput is the totp_code result.
type TOTPCodeOutput struct {
	Service          string `json:"service"`
	Code             string `json:"code"`
	FormattedCode    string `json:"formatted_code"`
	SecondsRemaining int    `json:"seconds_remaining"`
}

// handleCredentialList handles the credential_list tool call.
func (s *Server) handleCredentialList(_ context.Context, _ *mcp.CallToolRequest, input CredentialListInput) (*mcp.CallToolResult, CredentialListOutput, error) {
	var creds []vault.Credential
	var err error

	switch {
	case input.Tag != "":
		creds, err = s.manager.ByTag(input.Tag)
	case input.FavoritesOnly:
		creds, err = s.manager.Favorites()
	default:
		creds, err = s.manager.ListAll()
	}
	if err != nil {
		return nil, CredentialListOutput{}, err
	}

	output := CredentialListOutput{
		Credentials: make([]CredentialInfo, 0, len(creds)),
	}
	for i := range creds {
		output.Credentials = append(output.Credentials, credentialInfo(&creds[i]))
	}
	return nil, output, nil
}

// handleCredentialExists handles the credential_exists tool call.
func (s *Server) handleCredentialExists(_ context.Context, _ *mcp.CallToolRequest, input CredentialExistsInput) (*mcp.CallToolResult, CredentialExistsOutput, error) {
	if input.Service == "" {
		return nil, CredentialExistsOutput{}, errors.New("service is required")
	}

	c, err := s.lookup(input.Service)
	if errors.Is(err, vault.ErrCredentialNotFound) {
		return nil, CredentialExistsOutput{Exists: false, Service: input.Service}, nil
	}
	if err != nil {
		return nil, CredentialExistsOutput{}, err
	}

	info := credentialInfo(c)
	return nil, CredentialExistsOutput{
		Exists:     true,
		Service:    input.Service,
		Credential: &info,
	}, nil
}

// handleCredentialGetMasked handles the credential_get_masked tool call.
func (s *Server) handleCredentialGetMasked(_ context.Context, _ *mcp.CallToolRequest, input CredentialGetMaskedInput) (*mcp.CallToolResult, CredentialGetMaskedOutput, error) {
	if input.Service == "" {
		return nil, CredentialGetMaskedOutput{}, errors.New("service is required")
	}

	c, err := s.lookup(input.Service)
	if err != nil {
		return nil, CredentialGetMaskedOutput{}, err
	}

	return nil, CredentialGetMaskedOutput{
		Service:        c.Service,
		Username:       c.Username,
		MaskedPassword: maskValue(c.Password),
		PasswordLength: len(c.Password),
	}, nil
}

// handleVaultHealth handles the vault_health tool call.
func (s *Server) handleVaultHealth(_ context.Context, _ *mcp.CallToolRequest, _ VaultHealthInput) (*mcp.CallToolResult, security.VaultHealth, error) {
	snapshot, err := s.manager.Snapshot()
	if err != nil {
		return nil, security.VaultHealth{}, err
	}
	return nil, security.AnalyzeVaultHealth(snapshot, s.cfg.OldPasswordDays), nil
}

// handleTOTPCode handles the totp_code tool call.
func (s *Server) handleTOTPCode(_ context.Context, _ *mcp.CallToolRequest, input TOTPCodeInput) (*mcp.CallToolResult, TOTPCodeOutput, error) {
	if input.Service == "" {
		return nil, TOTPCodeOutput{}, errors.New("service is required")
	}

	c, err := s.lookup(input.Service)
	if err != nil {
		return nil, TOTPCodeOutput{}, err
	}
	if c.TOTPSecret == "" {
		return nil, TOTPCodeOutput{}, errors.New("credential has no TOTP secret configured")
	}

	code, err := totp.Generate(c.TOTPSecret)
	if err != nil {
		return nil, TOTPCodeOutput{}, err
	}

	return nil, TOTPCodeOutput{
		Service:          c.Service,
		Code:             code,
		FormattedCode:    totp.FormatCode(code),
		SecondsRemaining: totp.Step - int(time.Now().Unix()%totp.Step),
	}, nil
}

// lookup finds a credential by exact service without recording an access.
// The server is read-only; the manager's GetCredential would persist a
// last-accessed update.
func (s *Server) lookup(service string) (*vault.Credential, error) {
	creds, err := s.manager.ListAll()
	if err != nil {
		return nil, err
	}
	for i := range creds {
		if creds[i].Service == service {
			return &creds[i], nil
		}
	}
	return nil, vault.ErrCredentialNotFound
}

// credentialInfo converts a credential to its metadata-only view.
func credentialInfo(c *vault.Credential) CredentialInfo {
	info := CredentialInfo{
		Service:   c.Service,
		Username:  c.Username,
		Tags:      c.Tags,
		Favorite:  c.Favorite,
		HasTOTP:   c.TOTPSecret != "",
		HasNotes:  c.Notes != "",
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
	if c.LastAccessed != nil {
		info.LastAccessed = c.LastAccessed.Format(time.RFC3339)
	}
	return info
}

// maskValue masks a password for display:
//
//	| Length | Format      | Example  |
//	|--------|-------------|----------|
//	| 1-4    | All *       | ****     |
//	| 5-8    | Show last 2 | ******XY |
//	| 9+     | Show last 4 | ****WXYZ |
func maskValue(value string) string {
	length := len(value)
	if length == 0 {
		return ""
	}

	switch {
	case length <= 4:
		return strings.Repeat("*", length)
	case length <= 8:
		return strings.Repeat("*", length-2) + value[length-2:]
	default:
		return strings.Repeat("*", length-4) + value[length-4:]
	}
}
