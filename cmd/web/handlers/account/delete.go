package account

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	webauth "hanlove.church/site/cmd/web/auth"
	"hanlove.church/site/cmd/web/handlers/common"
	"hanlove.church/site/internal/db"
)

// HandleDeleteAccount removes the member. Their posts and comments stay
// under the stored author name. The last admin cannot leave.
func HandleDeleteAccount(sm *webauth.SessionManager, dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, userID, err := common.RequireSessionUser(c)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		qtx, tx, err := dbc.NewWithTX(ctx)
		if err != nil {
			return common.Internal("failed to start transaction", err)
		}
		defer tx.Rollback(ctx)

		member, err := qtx.SelectUserByID(ctx, userID)
		if err != nil {
			if db.IsNotFound(err) {
				return common.ErrNotFound("user not found")
			}
			return common.Internal("failed to load user", err)
		}
		if member.Role == db.UserRoleAdmin {
			admins, err := qtx.LockAdmins(ctx)
			if err != nil {
				return common.Internal("failed to count admins", err)
			}
			if admins <= 1 {
				return common.ErrBadRequest("you cannot delete the last admin")
			}
		}
		n, err := qtx.DeleteUser(ctx, userID)
		if err != nil {
			return common.Internal("failed to delete user", err)
		}
		if n == 0 {
			return common.ErrNotFound("user not found")
		}
		if err := tx.Commit(ctx); err != nil {
			return common.Internal("failed to commit account deletion", err)
		}

		if err := sm.ClearSession(c.Response().Writer, c.Request()); err != nil {
			slog.Warn("failed to clear session after account deletion", "error", err)
		}
		slog.Info("member deleted own account", "username", user.Username)
		return common.JSONMessage(c, http.StatusOK, "account deleted")
	}
}
