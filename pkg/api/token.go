package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// TokenSource yields the bearer token attached to requests. An empty token
// means the Authorization header is omitted.
type TokenSource interface {
	Token() (string, error)
}

// NoToken never authenticates
type NoToken struct{}

func (NoToken) Token() (string, error) { return "", nil }

// StaticToken always returns the same token
type StaticToken string

func (t StaticToken) Token() (string, error) { return strings.TrimSpace(string(t)), nil }

// FileTokenSource reads the persisted token on every call so a token written
// by another process is picked up without a restart. Fallback is used when
// the file does not exist.
type FileTokenSource struct {
	Path     string
	Fallback string
}

func (f FileTokenSource) Token() (string, error) {
	if f.Path == "" {
		return strings.TrimSpace(f.Fallback), nil
	}

	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return strings.TrimSpace(f.Fallback), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file %s: %w", f.Path, err)
	}

	if token := strings.TrimSpace(string(data)); token != "" {
		return token, nil
	}
	return strings.TrimSpace(f.Fallback), nil
}

// SaveToken persists a token with owner-only permissions
func SaveToken(path, token string) error {
	if err := os.WriteFile(path, []byte(strings.TrimSpace(token)+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
