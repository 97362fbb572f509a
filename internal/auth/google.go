package auth

import (
	"context"

	"google.golang.org/api/idtoken"

	"resumai/internal/common"
)

// GoogleIdentity is the subset of the verified ID-token claims that we
// provision accounts from.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// TokenVerifier validates a Google ID token and returns the identity it
// asserts. Tests substitute a stub.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*GoogleIdentity, error)
}

type googleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) TokenVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, rawToken string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, common.WrapError(common.ErrUnauthorized, "google token verification failed")
	}
	identity := &GoogleIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		identity.Picture = picture
	}
	return identity, nil
}
