package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/storage"
)

func TestSettingsService(t *testing.T) {
	store := newStorage(t)
	svc := NewSettingsService(store, zap.NewNop())

	assert.Equal(t, domain.DefaultNotificationSettings(), svc.Load("leader"))

	want := domain.NotificationSettings{ReminderTime: 15, CheckFrequency: 300, EnableSound: false}
	require.NoError(t, svc.Save("leader", want))
	assert.Equal(t, want, svc.Load("leader"))
	assert.Equal(t, domain.DefaultNotificationSettings(), svc.Load("other"))
}

func TestSettingsService_RejectsInvalid(t *testing.T) {
	svc := NewSettingsService(newStorage(t), zap.NewNop())

	err := svc.Save("leader", domain.NotificationSettings{ReminderTime: 10, CheckFrequency: 45})
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)

	err = svc.Save("leader", domain.NotificationSettings{ReminderTime: 0, CheckFrequency: 60})
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
}

func TestSettingsService_AcceptsWindowBeyondLookahead(t *testing.T) {
	svc := NewSettingsService(newStorage(t), zap.NewNop())
	s := domain.NotificationSettings{ReminderTime: 2000, CheckFrequency: 60}
	require.NoError(t, svc.Save("leader", s))
	assert.Equal(t, s, svc.Load("leader"))
}

func TestSettingsService_MalformedFallsBack(t *testing.T) {
	store := newStorage(t)
	svc := NewSettingsService(store, zap.NewNop())
	key := storage.ScopedKey("leader", storage.KindNotifSettings)

	require.NoError(t, store.Set(key, "[]"))
	assert.Equal(t, domain.DefaultNotificationSettings(), svc.Load("leader"))

	require.NoError(t, store.Set(key, `{"reminderTime":5,"checkFrequency":7}`))
	assert.Equal(t, domain.DefaultNotificationSettings(), svc.Load("leader"))
}
