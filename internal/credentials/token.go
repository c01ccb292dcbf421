package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	clientTokenFile = "client_token"
	// TokenPrefix starts every anonymous client token.
	TokenPrefix = "cli_"
)

var tokenPattern = regexp.MustCompile(`^cli_[0-9a-f]{32}$`)

// ValidToken reports whether token has the client-token shape.
func ValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}

// NewToken generates a fresh client token.
func NewToken() string {
	return TokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ClientToken returns the machine's anonymous client token, creating it on
// first use. An existing token is returned as stored and never rotated.
func (s *Store) ClientToken() (string, error) {
	path := filepath.Join(s.dir, clientTokenFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read client token: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("create %s: %w", s.dir, err)
	}
	token := NewToken()
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write client token: %w", err)
	}
	return token, nil
}
