package cli

import (
	"github.com/spf13/cobra"

	"github.com/louisbranch/backoffice/internal/tui/browse"
)

func newBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <resource>",
		Short: "Search a resource interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := app.definition(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, ctx, err := app.client(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return browse.Run(ctx, browse.Config{
				API:      client,
				Def:      def,
				Loc:      app.table(def),
				Language: app.Language,
				PerPage:  app.PerPage,
			})
		},
	}
}
