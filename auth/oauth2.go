package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuth2 authenticates with tokens from an oauth2.TokenSource.
// Token refresh is delegated to the source.
type OAuth2 struct {
	Source oauth2.TokenSource
}

// NewOAuth2Static returns an OAuth2 authenticator for a fixed access token.
func NewOAuth2Static(accessToken string) *OAuth2 {
	return &OAuth2{Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})}
}

// ClientCredentialsConfig configures the client credentials grant.
type ClientCredentialsConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// NewOAuth2ClientCredentials returns an OAuth2 authenticator that obtains and
// caches tokens with the client credentials grant. ctx scopes token fetches.
func NewOAuth2ClientCredentials(ctx context.Context, cfg ClientCredentialsConfig) *OAuth2 {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	return &OAuth2{Source: oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx))}
}

// Apply implements Authenticator.
func (o *OAuth2) Apply(req *http.Request) error {
	if o.Source == nil {
		return ErrMissingCredentials
	}
	tok, err := o.Source.Token()
	if err != nil {
		return fmt.Errorf("obtain oauth2 token: %w", err)
	}
	tok.SetAuthHeader(req)
	return nil
}
