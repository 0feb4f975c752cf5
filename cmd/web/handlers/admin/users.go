package admin

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/cmd/web/viewtypes"
	"hanlove.church/site/internal/db"
	"hanlove.church/site/pkg/utils/passwords"
)

func HandleUsers(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		users, err := dbc.Queries(ctx).ListAllUsers(ctx)
		if err != nil {
			return common.Internal("failed to list users", err)
		}
		out := make([]viewtypes.UserJSON, 0, len(users))
		for _, u := range users {
			out = append(out, viewtypes.NewUserJSON(u))
		}
		return c.JSON(http.StatusOK, out)
	}
}

type userUpdateRequest struct {
	ID       string  `json:"_id" validate:"notblank"`
	NewRole  *string `json:"newRole"`
	NewTitle *string `json:"newTitle"`
}

// HandleUserUpdate changes a member's role and/or title. An empty title
// clears it. A role change signs the member out everywhere.
func HandleUserUpdate(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body userUpdateRequest
		if err := common.BindAndValidate(c, &body, "user id is required"); err != nil {
			return err
		}
		target, err := targetID(body.ID)
		if err != nil {
			return err
		}
		if body.NewRole == nil && body.NewTitle == nil {
			return common.ErrBadRequest("nothing to update")
		}
		var role db.UserRole
		if body.NewRole != nil {
			role = db.UserRole(strings.TrimSpace(*body.NewRole))
			if !role.Valid() {
				return common.ErrBadRequest("invalid role")
			}
			if target == currentUserUUID(c) && role != db.UserRoleAdmin {
				return common.ErrBadRequest("you cannot demote yourself")
			}
		}

		ctx := c.Request().Context()
		qtx, tx, err := dbc.NewWithTX(ctx)
		if err != nil {
			return common.Internal("failed to start transaction", err)
		}
		defer tx.Rollback(ctx)

		user, err := qtx.SelectUserByID(ctx, target)
		if err != nil {
			if db.IsNotFound(err) {
				return common.ErrNotFound("user not found")
			}
			return common.Internal("failed to load user", err)
		}

		roleChanged := body.NewRole != nil && role != user.Role
		if roleChanged {
			if user.Role == db.UserRoleAdmin {
				admins, err := qtx.LockAdmins(ctx)
				if err != nil {
					return common.Internal("failed to count admins", err)
				}
				if admins <= 1 {
					return common.ErrBadRequest("you cannot demote the last admin")
				}
			}
			if _, err := qtx.SetUserRole(ctx, &db.SetUserRoleParams{ID: target, Role: role}); err != nil {
				return common.Internal("failed to update role", err)
			}
			if err := qtx.InvalidateUserSessions(ctx, target); err != nil {
				return common.Internal("failed to invalidate sessions", err)
			}
		}

		if body.NewTitle != nil {
			title := strings.TrimSpace(*body.NewTitle)
			_, err := qtx.SetUserTitle(ctx, &db.SetUserTitleParams{ID: target, Title: pgtype.Text{String: title, Valid: title != ""}})
			if err != nil {
				if db.IsForeignKeyViolation(err) {
					return common.ErrBadRequest("unknown title")
				}
				return common.Internal("failed to update title", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return common.Internal("failed to commit user update", err)
		}
		slog.Info("admin updated user", "admin", currentUsername(c), "user", user.UserName, "role_changed", roleChanged)
		return common.JSONMessage(c, http.StatusOK, "user updated")
	}
}

type resetPasswordRequest struct {
	ID          string `json:"_id" validate:"notblank"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func HandleUserResetPassword(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body resetPasswordRequest
		if err := common.BindAndValidate(c, &body, "user id and new password are required"); err != nil {
			return err
		}
		target, err := targetID(body.ID)
		if err != nil {
			return err
		}
		hashed, err := passwords.NewPassword(passwords.PasswordInput{Password: body.NewPassword})
		if err != nil {
			return common.ErrBadRequest(passwords.ErrInvalidPassword.Error())
		}

		ctx := c.Request().Context()
		q := dbc.Queries(ctx)
		n, err := q.SetUserPassword(ctx, &db.SetUserPasswordParams{ID: target, Password: hashed})
		if err != nil {
			return common.Internal("failed to reset password", err)
		}
		if n == 0 {
			return common.ErrNotFound("user not found")
		}
		if err := q.InvalidateUserSessions(ctx, target); err != nil {
			slog.Warn("failed to invalidate sessions after admin reset", "error", err)
		}
		slog.Info("admin reset password", "admin", currentUsername(c), "user_id", common.IDString(target))
		return common.JSONMessage(c, http.StatusOK, "password reset")
	}
}

type deleteUserRequest struct {
	ID string `json:"_id" validate:"notblank"`
}

func HandleUserDelete(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body deleteUserRequest
		if err := common.BindAndValidate(c, &body, "user id is required"); err != nil {
			return err
		}
		target, err := targetID(body.ID)
		if err != nil {
			return err
		}
		if target == currentUserUUID(c) {
			return common.ErrBadRequest("you cannot delete yourself")
		}

		ctx := c.Request().Context()
		n, err := dbc.Queries(ctx).DeleteUser(ctx, target)
		if err != nil {
			return common.Internal("failed to delete user", err)
		}
		if n == 0 {
			return common.ErrNotFound("user not found")
		}
		slog.Info("admin deleted user", "admin", currentUsername(c), "user_id", common.IDString(target))
		return common.JSONMessage(c, http.StatusOK, "user deleted")
	}
}
