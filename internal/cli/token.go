package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/requestctx"
	"github.com/louisbranch/backoffice/internal/services/backoffice/session"
)

func newTokenCmd(app *App) *cobra.Command {
	var operator requestctx.Operator
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a console session token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(app.SessionKey) == "" {
				return writeErr(cmd, apperrors.New(apperrors.CodeInvalidInput, "--session-key or BACKOFFICE_SESSION_KEY is required"))
			}
			manager, err := session.NewManager(session.Config{Key: []byte(app.SessionKey)})
			if err != nil {
				return writeErr(cmd, err)
			}
			token, err := manager.Issue(operator, ttl)
			if err != nil {
				return writeErr(cmd, err)
			}
			data, _ := sjson.Set(`{}`, "token", token)
			data, _ = sjson.Set(data, "cookie", session.CookieName)
			data, _ = sjson.Set(data, "expires_in", ttl.String())
			return writeOut(cmd, app, data, "")
		},
	}
	cmd.Flags().StringVar(&operator.UserID, "user-id", "", "Operator user id")
	cmd.Flags().StringVar(&operator.Name, "name", "", "Operator display name")
	cmd.Flags().BoolVar(&operator.Admin, "admin", false, "Grant every permission")
	cmd.Flags().StringSliceVar(&operator.Permissions, "perm", nil, "Permission name (repeatable)")
	cmd.Flags().StringVar(&operator.CSRFToken, "csrf", "", "CSRF token (generated when empty)")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	return cmd
}
