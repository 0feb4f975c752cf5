package db

import (
	"context"
	"sync"
)

// SettingsCache holds the instance settings read on every registration.
// The admin settings handler calls Reload after writing.
type SettingsCache struct {
	mu       sync.RWMutex
	settings *InstanceSetting
	load     func(context.Context) (*InstanceSetting, error)
}

// NewSettingsCache loads the current settings. A missing row yields the
// defaults.
func NewSettingsCache(ctx context.Context, dbc *DatabaseConnection) (*SettingsCache, error) {
	return newSettingsCache(ctx, func(ctx context.Context) (*InstanceSetting, error) {
		return dbc.Queries(ctx).GetInstanceSettings(ctx)
	})
}

// NewStaticSettingsCache returns a cache that never touches the database.
func NewStaticSettingsCache(settings InstanceSetting) *SettingsCache {
	s := settings
	return &SettingsCache{
		settings: &s,
		load: func(context.Context) (*InstanceSetting, error) {
			cp := s
			return &cp, nil
		},
	}
}

func newSettingsCache(ctx context.Context, load func(context.Context) (*InstanceSetting, error)) (*SettingsCache, error) {
	c := &SettingsCache{load: load}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a copy of the current settings.
func (c *SettingsCache) Get() InstanceSetting {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.settings
}

// Set replaces the cached settings with s.
func (c *SettingsCache) Set(s *InstanceSetting) {
	cp := *s
	c.mu.Lock()
	c.settings = &cp
	c.mu.Unlock()
}

// Reload fetches fresh settings.
func (c *SettingsCache) Reload(ctx context.Context) error {
	settings, err := c.load(ctx)
	if err != nil {
		if !IsNotFound(err) {
			return err
		}
		settings = &InstanceSetting{RegistrationEnabled: true}
	}
	c.Set(settings)
	return nil
}
