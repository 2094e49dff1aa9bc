package docrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/user"
	"github.com/SaramshGautam/collaBoard/storage/docstore"
)

type userDoc struct {
	Email     string    `doc:"email"`
	Name      string    `doc:"name"`
	Role      string    `doc:"role"`
	LSUID     string    `doc:"lsuID"`
	CreatedAt time.Time `doc:"createdAt"`
}

func userData(usr user.User) map[string]interface{} {
	return map[string]interface{}{
		"email":     usr.Email,
		"name":      usr.Name,
		"role":      usr.Role,
		"lsuID":     usr.LSUID,
		"createdAt": usr.CreatedAt,
	}
}

type userRepository struct {
	store docstore.Store
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(store docstore.Store) user.Repository {
	return &userRepository{store: store}
}

func (repo *userRepository) GetUser(ctx context.Context, email string) (user.User, error) {
	doc, err := repo.store.Get(ctx, userPath(email))
	if err != nil {
		return user.User{}, storeError(err, "Could not load the user profile", user.ErrNotFound)
	}
	var d userDoc
	if err = decode(doc.Data, &d); err != nil {
		return user.User{}, core.NewRepositoryError("Could not read the user profile", err)
	}
	if d.Email == "" {
		d.Email = doc.ID
	}
	return user.User{Email: d.Email, Name: d.Name, Role: d.Role, LSUID: d.LSUID, CreatedAt: d.CreatedAt}, nil
}

func (repo *userRepository) SaveUser(ctx context.Context, usr user.User) error {
	return storeError(repo.store.Set(ctx, userPath(usr.Email), userData(usr)), "Could not save the user profile", nil)
}

func (repo *userRepository) CreateMissingUsers(ctx context.Context, users ...user.User) error {
	ops := make([]docstore.Op, 0, len(users))
	for _, usr := range users {
		_, err := repo.store.Get(ctx, userPath(usr.Email))
		if err == nil {
			continue
		}
		if errors.Cause(err) != docstore.ErrNotFound {
			return storeError(err, "Could not load the user profiles", nil)
		}
		ops = append(ops, docstore.SetOp(userPath(usr.Email), userData(usr)))
	}
	return storeError(commitChunked(ctx, repo.store, ops), "Could not create the user profiles", nil)
}

func (repo *userRepository) UpdateUserName(ctx context.Context, email, name string) error {
	if _, err := repo.store.Get(ctx, userPath(email)); err != nil {
		return storeError(err, "Could not load the user profile", user.ErrNotFound)
	}
	err := repo.store.Merge(ctx, userPath(email), map[string]interface{}{"name": name})
	return storeError(err, "Could not update the user profile", nil)
}
