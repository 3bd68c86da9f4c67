package service

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tazhate/leaderflow/internal/storage"
)

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newStorage(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "leaderflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newEntityService(t *testing.T, store KeyValueStore) *EntityService {
	t.Helper()
	svc := NewEntityService(store, zap.NewNop())
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

func newUserService(t *testing.T) (*UserService, *storage.Storage) {
	t.Helper()
	store := newStorage(t)
	svc := NewUserService(store, zap.NewNop())
	svc.cost = bcrypt.MinCost
	require.NoError(t, svc.EnsureAdmin())
	return svc, store
}
