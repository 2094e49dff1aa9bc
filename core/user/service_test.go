package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaramshGautam/collaBoard/core"
)

type fakeRepo struct {
	users map[string]User
	err   error
}

func (r *fakeRepo) GetUser(_ context.Context, email string) (User, error) {
	if r.err != nil {
		return User{}, r.err
	}
	usr, ok := r.users[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (r *fakeRepo) SaveUser(_ context.Context, usr User) error {
	if r.err != nil {
		return r.err
	}
	r.users[usr.Email] = usr
	return nil
}

func (r *fakeRepo) CreateMissingUsers(ctx context.Context, users ...User) error {
	for _, u := range users {
		if _, ok := r.users[u.Email]; !ok {
			r.users[u.Email] = u
		}
	}
	return nil
}

func (r *fakeRepo) UpdateUserName(_ context.Context, email, name string) error {
	usr := r.users[email]
	usr.Name = name
	r.users[email] = usr
	return nil
}

type fakeIdentity map[string]Identity

func (f fakeIdentity) Verify(_ context.Context, idToken string) (Identity, error) {
	id, ok := f[idToken]
	if !ok {
		return Identity{}, errors.New("token rejected")
	}
	return id, nil
}

func newTestService() (Service, *fakeRepo) {
	repo := &fakeRepo{users: map[string]User{
		"teacher@lsu.edu": {Email: "teacher@lsu.edu", Name: "Ms Teacher", Role: core.RoleTeacher},
		"student@lsu.edu": {Email: "student@lsu.edu", Name: "Stu Dent", Role: core.RoleStudent, LSUID: "89001"},
		"norole@lsu.edu":  {Email: "norole@lsu.edu", Name: "No Role"},
	}}
	identity := fakeIdentity{
		"teacher-token": {Email: "Teacher@LSU.edu", DisplayName: "Ms Teacher"},
		"student-token": {Email: "student@lsu.edu"},
		"ghost-token":   {Email: "ghost@lsu.edu"},
		"norole-token":  {Email: "norole@lsu.edu"},
	}
	return NewService(repo, identity), repo
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		token    string
		wantRole string
		wantHome string
		check    func(error) bool
	}{
		{name: "teacher lands on teacher home", token: "teacher-token", wantRole: core.RoleTeacher, wantHome: core.TeacherHomePath},
		{name: "student lands on student home", token: "student-token", wantRole: core.RoleStudent, wantHome: core.StudentHomePath},
		{name: "no user document", token: "ghost-token", check: core.IsNotFound},
		{name: "no role", token: "norole-token", check: core.IsAuth},
		{name: "rejected token", token: "forged", check: core.IsAuth},
		{name: "empty token", token: "", check: core.IsAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Login(ctx, tt.token)
			if tt.check != nil {
				require.Error(t, err)
				assert.True(t, tt.check(err), "unexpected error type %T", err)
				assert.Empty(t, usr.Role)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, usr.Role)
			assert.Equal(t, tt.wantHome, core.HomePath(usr.Role))
		})
	}
}

func TestService_ResolveRole_Messages(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.ResolveRole(ctx, "ghost@lsu.edu")
	assert.EqualError(t, err, "User not found in the database")

	_, err = svc.ResolveRole(ctx, "norole@lsu.edu")
	assert.EqualError(t, err, "Role not assigned. Please contact support.")
}

func TestService_ResolveRole_StoreFailure(t *testing.T) {
	svc, repo := newTestService()
	repo.err = core.NewRepositoryError("could not reach the database", errors.New("timeout"))

	_, err := svc.ResolveRole(context.Background(), "teacher@lsu.edu")
	assert.True(t, core.IsRepository(err))
}

func TestService_AddUser(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	usr, err := svc.AddUser(ctx, NewUser{Email: "new@lsu.edu", Name: "New", Role: core.RoleTeacher})
	require.NoError(t, err)
	assert.False(t, usr.CreatedAt.IsZero())
	assert.Equal(t, core.RoleTeacher, repo.users["new@lsu.edu"].Role)

	// existing users keep their creation date & lsu id
	usr, err = svc.AddUser(ctx, NewUser{Email: "student@lsu.edu", Name: "Renamed", Role: core.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, "89001", usr.LSUID)
	assert.Equal(t, core.RoleTeacher, usr.Role)

	_, err = svc.AddUser(ctx, NewUser{Role: core.RoleTeacher})
	assert.True(t, core.IsValidation(err))
}
