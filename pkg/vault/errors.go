package vault

import "errors"

// Sentinel errors returned by vault operations.
var (
	ErrVaultAlreadyExists   = errors.New("vault: vault already exists at this path")
	ErrVaultNotFound        = errors.New("vault: vault not found at this path")
	ErrVaultLocked          = errors.New("vault: vault is locked")
	ErrVaultAlreadyUnlocked = errors.New("vault: vault is already unlocked")
	ErrVaultCorrupted       = errors.New("vault: vault file is corrupted")

	ErrInvalidMasterPassword = errors.New("vault: invalid master password")

	ErrCredentialNotFound      = errors.New("vault: credential not found")
	ErrCredentialAlreadyExists = errors.New("vault: credential already exists for this service")
	ErrInvalidInput            = errors.New("vault: invalid input")
)
