// Package security checks that the credentials an environment mandates are
// present before any cluster action, and exposes them as an oauth2 token
// source for the cluster REST client.
package security

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
)

// Verify fails with an api.SecurityPreconditionError when cfg requires
// authentication but no usable token file is configured.
func Verify(cfg config.Configuration) error {
	if !cfg.GetBool(config.KeyAuthRequired, false) {
		return nil
	}
	_, err := readToken(cfg)
	return err
}

// TokenSource returns a static token source for the configured token file,
// or nil when no token file is configured and none is required.
func TokenSource(cfg config.Configuration) (oauth2.TokenSource, error) {
	path := cfg.GetString(config.KeyAuthTokenFile, "")
	if path == "" {
		if cfg.GetBool(config.KeyAuthRequired, false) {
			return nil, &api.SecurityPreconditionError{Reason: config.KeyAuthTokenFile + " is not set"}
		}
		return nil, nil
	}

	token, err := readToken(cfg)
	if err != nil {
		return nil, err
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}), nil
}

func readToken(cfg config.Configuration) (string, error) {
	path := cfg.GetString(config.KeyAuthTokenFile, "")
	if path == "" {
		return "", &api.SecurityPreconditionError{Reason: config.KeyAuthTokenFile + " is not set"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &api.SecurityPreconditionError{Reason: fmt.Sprintf("token file %s does not exist", path)}
		}
		return "", &api.SecurityPreconditionError{Reason: fmt.Sprintf("token file %s is not readable: %v", path, err)}
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", &api.SecurityPreconditionError{Reason: fmt.Sprintf("token file %s is empty", path)}
	}
	return token, nil
}
