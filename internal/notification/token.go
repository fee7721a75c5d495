package notification

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenProvider supplies the bearer token for webhook deliveries. The
// gateway never owns token acquisition or refresh.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// OAuthTokenProvider acquires tokens through the client-credentials grant.
// The underlying token source caches and refreshes against expiry.
type OAuthTokenProvider struct {
	source oauth2.TokenSource
}

// NewOAuthTokenProvider creates a provider for the given client credentials.
// The token source is created once so cached tokens survive across calls.
func NewOAuthTokenProvider(clientID, clientSecret, tokenURL string, scopes []string) *OAuthTokenProvider {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return &OAuthTokenProvider{source: cfg.TokenSource(context.Background())}
}

// Token returns a valid access token, refreshing if the cached one expired.
func (p *OAuthTokenProvider) Token(ctx context.Context) (string, error) {
	tok, err := p.source.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// StaticTokenProvider returns a fixed token. It backs tests and deployments
// with a pre-issued long-lived token.
type StaticTokenProvider string

// Token returns the fixed token.
func (p StaticTokenProvider) Token(ctx context.Context) (string, error) {
	return string(p), nil
}
