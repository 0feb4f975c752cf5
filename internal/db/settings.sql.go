package db

import (
	"context"
)

const getInstanceSettings = `-- name: GetInstanceSettings :one
SELECT registration_enabled, updated_at FROM instance_settings WHERE id = 1`

func (q *Queries) GetInstanceSettings(ctx context.Context) (*InstanceSetting, error) {
	var i InstanceSetting
	err := q.db.QueryRow(ctx, getInstanceSettings).Scan(&i.RegistrationEnabled, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const upsertRegistrationEnabled = `-- name: UpsertRegistrationEnabled :one
INSERT INTO instance_settings (id, registration_enabled, updated_at)
VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE
SET registration_enabled = EXCLUDED.registration_enabled, updated_at = now()
RETURNING registration_enabled, updated_at`

func (q *Queries) UpsertRegistrationEnabled(ctx context.Context, enabled bool) (*InstanceSetting, error) {
	var i InstanceSetting
	err := q.db.QueryRow(ctx, upsertRegistrationEnabled, enabled).Scan(&i.RegistrationEnabled, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const getDashboardOverview = `-- name: GetDashboardOverview :one
SELECT
    (SELECT count(*) FROM users) AS users,
    (SELECT count(*) FROM users WHERE role = 'admin') AS admins,
    (SELECT count(*) FROM posts) AS posts,
    (SELECT count(*) FROM comments) AS comments,
    (SELECT count(*) FROM sermons) AS sermons,
    (SELECT COALESCE(sum(size_bytes), 0)::BIGINT FROM sermons) AS sermon_bytes`

type DashboardOverview struct {
	Users       int64
	Admins      int64
	Posts       int64
	Comments    int64
	Sermons     int64
	SermonBytes int64
}

func (q *Queries) GetDashboardOverview(ctx context.Context) (*DashboardOverview, error) {
	var i DashboardOverview
	err := q.db.QueryRow(ctx, getDashboardOverview).Scan(
		&i.Users,
		&i.Admins,
		&i.Posts,
		&i.Comments,
		&i.Sermons,
		&i.SermonBytes,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
