package identitysvc

import (
	"context"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/user"
)

// googleProvider checks Google ID tokens against Google's public keys.
type googleProvider struct {
	clientIDs []string
}

var _ user.IdentityProvider = (*googleProvider)(nil)

func NewGoogleProvider(clientID string) user.IdentityProvider {
	return &googleProvider{clientIDs: []string{clientID}}
}

func (p *googleProvider) Verify(_ context.Context, idToken string) (user.Identity, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, p.clientIDs); err != nil {
		return user.Identity{}, core.NewAuthError("Invalid Google ID token.", err)
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return user.Identity{}, core.NewAuthError("Invalid Google ID token.", err)
	}
	return user.Identity{Email: claimSet.Email, DisplayName: claimSet.Name, Subject: claimSet.Sub}, nil
}
