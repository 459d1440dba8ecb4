package quire

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// Scopes requested for every token.
var Scopes = []string{
	sheets.SpreadsheetsScope,
	"https://www.googleapis.com/auth/drive.file",
}

// NewRefreshTokenSource exchanges a long-lived refresh token for access
// tokens on demand. clientSecretJSON is an OAuth client file as downloaded
// from the Cloud console ("web" or "installed").
func NewRefreshTokenSource(ctx context.Context, clientSecretJSON []byte, refreshToken string) (oauth2.TokenSource, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token is required")
	}

	cfg, err := google.ConfigFromJSON(clientSecretJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret: %w", err)
	}

	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}), nil
}

// ServiceAccountTokenSource builds a token source from a service account key.
func ServiceAccountTokenSource(ctx context.Context, credentialsJSON []byte) (oauth2.TokenSource, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return creds.TokenSource, nil
}

// AccessToken returns a valid bearer token from ts, refreshing it if needed.
func AccessToken(ts oauth2.TokenSource) (string, error) {
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	if !tok.Valid() {
		return "", errors.New("token source returned an invalid token")
	}
	return tok.AccessToken, nil
}
