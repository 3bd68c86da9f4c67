package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/storage"
)

func TestUserService_AdminSeeded(t *testing.T) {
	svc, _ := newUserService(t)
	require.NoError(t, svc.EnsureAdmin())

	u, err := svc.Authenticate("admin", "admin##")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "admin_master", u.ID)
	assert.True(t, u.IsAdmin())

	u, err = svc.Authenticate("admin", "wrong")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = svc.Authenticate("nobody", "admin##")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserService_Register(t *testing.T) {
	svc, _ := newUserService(t)

	u, err := svc.Register("LanhDao1", "Trần Thị B", "secret1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "lanhdao1", u.ID)
	assert.Equal(t, domain.RoleLeader, u.Role)

	got, err := svc.Authenticate("lanhdao1", "secret1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Trần Thị B", got.FullName)

	tests := []struct {
		name                   string
		user, full, pass, conf string
		want                   error
	}{
		{"duplicate", "lanhdao1", "X", "secret1", "secret1", domain.ErrUserExists},
		{"mismatch", "u2", "X", "secret1", "secret2", domain.ErrInvalidUser},
		{"short password", "u2", "X", "123", "123", domain.ErrInvalidUser},
		{"space in username", "u 2", "X", "secret1", "secret1", domain.ErrInvalidUser},
		{"missing name", "u2", "", "secret1", "secret1", domain.ErrInvalidUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.user, tt.full, tt.pass, tt.conf)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserService_AdminManagement(t *testing.T) {
	svc, store := newUserService(t)
	admin, err := svc.Authenticate("admin", "admin##")
	require.NoError(t, err)

	leader, err := svc.Create(admin, "leader", "Lê Văn C", "secret1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLeader, leader.Role)

	_, err = svc.List(leader)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Create(leader, "x", "X", "secret1", domain.RoleLeader)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	users, err := svc.List(admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	updated, err := svc.Update(admin, leader.ID, "Lê Văn D", "", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Lê Văn D", updated.FullName)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	u, err := svc.Authenticate("leader", "secret1")
	require.NoError(t, err)
	require.NotNil(t, u)

	assert.ErrorIs(t, svc.Delete(admin, admin.ID), domain.ErrProtectedUser)
	assert.ErrorIs(t, svc.Delete(admin, "ghost"), domain.ErrNotFound)

	require.NoError(t, store.Set(storage.ScopedKey(leader.ID, storage.KindTasks), "[]"))
	require.NoError(t, svc.Delete(admin, leader.ID))

	_, ok, err := store.Get(storage.ScopedKey(leader.ID, storage.KindTasks))
	require.NoError(t, err)
	assert.False(t, ok)
	users, err = svc.List(admin)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
