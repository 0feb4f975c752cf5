package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestSettingsCache_MissingRowUsesDefaults(t *testing.T) {
	c, err := newSettingsCache(context.Background(), func(context.Context) (*InstanceSetting, error) {
		return nil, pgx.ErrNoRows
	})
	require.NoError(t, err)
	require.True(t, c.Get().RegistrationEnabled)
}

func TestSettingsCache_Reload(t *testing.T) {
	enabled := true
	c, err := newSettingsCache(context.Background(), func(context.Context) (*InstanceSetting, error) {
		return &InstanceSetting{RegistrationEnabled: enabled}, nil
	})
	require.NoError(t, err)
	require.True(t, c.Get().RegistrationEnabled)

	enabled = false
	require.NoError(t, c.Reload(context.Background()))
	require.False(t, c.Get().RegistrationEnabled)
}

func TestSettingsCache_LoadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := newSettingsCache(context.Background(), func(context.Context) (*InstanceSetting, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestSettingsCache_GetReturnsCopy(t *testing.T) {
	c := NewStaticSettingsCache(InstanceSetting{RegistrationEnabled: true})
	s := c.Get()
	s.RegistrationEnabled = false
	require.True(t, c.Get().RegistrationEnabled)

	c.Set(&InstanceSetting{RegistrationEnabled: false})
	require.False(t, c.Get().RegistrationEnabled)
}
