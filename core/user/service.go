package user

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("User not found in the database")
	ErrRoleNotAssigned = core.NewAuthError("Role not assigned. Please contact support.")
	ErrSignInRejected  = core.NewAuthError("Sign in failed. Please try again.")
)

type (
	Repository interface {
		// GetUser returns ErrNotFound when users/{email} does not exist.
		GetUser(ctx context.Context, email string) (User, error)
		SaveUser(ctx context.Context, usr User) error
		// CreateMissingUsers stores the users that do not exist yet and leaves the others untouched.
		CreateMissingUsers(ctx context.Context, users ...User) error
		UpdateUserName(ctx context.Context, email, name string) error
	}

	// IdentityProvider verifies the ID token the client got from the sign in popup.
	IdentityProvider interface {
		Verify(ctx context.Context, idToken string) (Identity, error)
	}

	Service interface {
		SignIn(ctx context.Context, idToken string) (Identity, error)
		ResolveRole(ctx context.Context, email string) (User, error)
		// Login signs in and resolves the role of the signed in user.
		Login(ctx context.Context, idToken string) (User, error)
		Get(ctx context.Context, email string) (User, error)
		AddUser(ctx context.Context, nu NewUser) (User, error)
	}

	service struct {
		repo     Repository
		identity IdentityProvider
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, identity IdentityProvider) Service {
	return &service{repo: repo, identity: identity}
}

func (svc *service) SignIn(ctx context.Context, idToken string) (Identity, error) {
	if idToken == "" {
		return Identity{}, ErrSignInRejected
	}
	id, err := svc.identity.Verify(ctx, idToken)
	if err != nil {
		if core.IsAuth(err) {
			return Identity{}, err
		}
		return Identity{}, core.NewAuthError(ErrSignInRejected.Error(), err)
	}
	id.Email = core.CleanString(id.Email, true /* lower */)
	if id.Email == "" {
		return Identity{}, ErrSignInRejected
	}
	return id, nil
}

// ResolveRole fetches the profile of a signed in user.
// A profile without a teacher or student role is an AuthError: there is no page to land on.
func (svc *service) ResolveRole(ctx context.Context, email string) (User, error) {
	usr, err := svc.Get(ctx, email)
	if err != nil {
		return User{}, err
	}
	if !usr.HasRole() {
		return User{}, ErrRoleNotAssigned
	}
	return usr, nil
}

func (svc *service) Login(ctx context.Context, idToken string) (User, error) {
	id, err := svc.SignIn(ctx, idToken)
	if err != nil {
		return User{}, err
	}
	usr, err := svc.ResolveRole(ctx, id.Email)
	if err != nil {
		return User{}, err
	}
	if usr.Name == "" && id.DisplayName != "" {
		usr.Name = id.DisplayName
	}
	return usr, nil
}

func (svc *service) Get(ctx context.Context, email string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return User{}, ErrNotFound
	}
	usr, err := svc.repo.GetUser(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrNotFound
		}
		return User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

// AddUser updates or creates a user. Validation is the caller's job.
func (svc *service) AddUser(ctx context.Context, nu NewUser) (User, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(nu.Email, "email"),
		vala.StringNotEmpty(nu.Role, "role"),
	).Check(); err != nil {
		return User{}, core.NewValidationError(err)
	}

	usr, err := svc.repo.GetUser(ctx, nu.Email)
	if err != nil {
		if !core.IsNotFound(err) {
			return User{}, errors.Wrap(err, "getting user")
		}
		usr = User{Email: nu.Email, CreatedAt: time.Now().UTC()}
	}
	usr.Name = nu.Name
	usr.Role = nu.Role
	if nu.LSUID != "" {
		usr.LSUID = nu.LSUID
	}
	if err = svc.repo.SaveUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "saving user")
	}
	return usr, nil
}
