// Package identitysvc verifies the ID tokens the frontend gets from its sign in popup.
package identitysvc

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/user"
)

type firebaseProvider struct {
	client *auth.Client
}

var _ user.IdentityProvider = (*firebaseProvider)(nil)

func NewFirebaseProvider(ctx context.Context, app *firebase.App) (user.IdentityProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "opening firebase auth client")
	}
	return &firebaseProvider{client: client}, nil
}

func (p *firebaseProvider) Verify(ctx context.Context, idToken string) (user.Identity, error) {
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return user.Identity{}, core.NewAuthError("Invalid sign in token.", err)
	}
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	return user.Identity{Email: email, DisplayName: name, Subject: token.UID}, nil
}
