package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// OIDCAuthenticator verifies ID tokens issued for the configured client.
// The token subject is the user id.
type OIDCAuthenticator struct {
	verifier *gooidc.IDTokenVerifier
}

// NewOIDCAuthenticator runs provider discovery against issuer once.
func NewOIDCAuthenticator(ctx context.Context, issuer, clientID string, httpClient *http.Client) (*OIDCAuthenticator, error) {
	if issuer == "" {
		return nil, errors.New("oidc issuer is required")
	}
	if clientID == "" {
		return nil, errors.New("oidc client ID is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer = strings.TrimSuffix(issuer, "/")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	return NewOIDCAuthenticatorWithVerifier(op.Verifier(&gooidc.Config{ClientID: clientID})), nil
}

func NewOIDCAuthenticatorWithVerifier(v *gooidc.IDTokenVerifier) *OIDCAuthenticator {
	return &OIDCAuthenticator{verifier: v}
}

func (a *OIDCAuthenticator) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	idToken, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("verify id token: %w", err)
	}
	id, err := uuid.Parse(idToken.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("subject is not a user id: %w", err)
	}
	return id, nil
}
