package assertion

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

// Verifier turns a raw Google ID token into a checked Assertion. The admin
// portal hands over the token straight from the Google sign-in widget;
// verifying it here means the exchange payload always carries a subject that
// was actually issued by the configured OIDC provider.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers the OIDC provider configuration. It performs a
// network round trip and should be constructed once at process start.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, errors.Wrap(err, "[NewVerifier] oidc provider discovery")
	}
	return &Verifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify checks the ID token's signature, issuer, audience, and expiry, and
// extracts the assertion fields from its claims.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (Assertion, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Assertion{}, errors.Wrap(err, "[Verifier.Verify] id token")
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Assertion{}, errors.Wrap(err, "[Verifier.Verify] claims")
	}

	a := Assertion{
		GoogleID: idToken.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
	}
	if err := a.Validate(); err != nil {
		return Assertion{}, err
	}
	return a, nil
}
