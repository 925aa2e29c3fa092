package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// ExternalIdentity is the verified identity behind an identity-provider credential.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
}

// IdentityVerifier verifies identity-provider credentials.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*ExternalIdentity, error)
}

// ValidateFunc checks a Google ID token's signature, expiry and audience.
type ValidateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier verifies Google Sign-In ID tokens against Google's public
// keys, which idtoken fetches and caches.
type GoogleVerifier struct {
	audience string
	validate ValidateFunc
}

var _ IdentityVerifier = (*GoogleVerifier)(nil)

// NewGoogleVerifier creates a verifier expecting tokens issued for clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return NewGoogleVerifierWith(clientID, idtoken.Validate)
}

// NewGoogleVerifierWith creates a verifier using a custom validation function.
func NewGoogleVerifierWith(clientID string, validate ValidateFunc) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID, validate: validate}
}

// Verify implements IdentityVerifier.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*ExternalIdentity, error) {
	if v.audience == "" {
		return nil, errors.New("google client id is not configured")
	}
	if strings.TrimSpace(credential) == "" {
		return nil, errors.New("empty credential")
	}

	payload, err := v.validate(ctx, credential, v.audience)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("id token carries no email")
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("google email is not verified")
	}

	name, _ := payload.Claims["name"].(string)
	return &ExternalIdentity{
		Subject: payload.Subject,
		Email:   strings.ToLower(email),
		Name:    name,
	}, nil
}
