// Package cli implements backofficectl, the operator command line over the
// back-office API.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
)

// App holds the persistent flags shared by every subcommand.
type App struct {
	APIBaseURL string
	Token      string
	Language   string
	PerPage    int
	Timeout    time.Duration
	SessionKey string
	PrettyJSON bool

	catalog *resource.Catalog
}

func NewRootCmd() *cobra.Command {
	app := &App{catalog: resource.Default()}

	cmd := &cobra.Command{
		Use:           "backofficectl",
		Short:         "Back-office operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # List pending vendors
  backofficectl list vendors --filter status=pending

  # Export the whole list to a workbook
  backofficectl export vendors --out vendors.xlsx

  # Search interactively
  backofficectl browse vendors
`),
	}

	cmd.PersistentFlags().StringVar(&app.APIBaseURL, "api-base-url", envOr("BACKOFFICE_API_BASE_URL", "http://localhost:8080/api"), "Upstream API base URL")
	cmd.PersistentFlags().StringVar(&app.Token, "token", envOr("BACKOFFICE_TOKEN", ""), "Bearer token forwarded upstream")
	cmd.PersistentFlags().StringVar(&app.Language, "lang", envOr("BACKOFFICE_DEFAULT_LANG", catalog.BaseLocale), "Content language")
	cmd.PersistentFlags().IntVar(&app.PerPage, "per-page", envIntOr("BACKOFFICE_PER_PAGE", listing.DefaultPerPage), "Rows per page")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 15*time.Second, "Upstream request timeout")
	cmd.PersistentFlags().StringVar(&app.SessionKey, "session-key", envOr("BACKOFFICE_SESSION_KEY", ""), "Session signing key (token command)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newResourcesCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newGetCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newBrowseCmd(app))
	cmd.AddCommand(newTokenCmd(app))

	return cmd
}

// client builds the upstream client and a context carrying the operator token.
func (app *App) client(ctx context.Context) (*apiclient.Client, context.Context, error) {
	client, err := apiclient.New(apiclient.Config{BaseURL: app.APIBaseURL, Timeout: app.Timeout})
	if err != nil {
		return nil, ctx, err
	}
	if token := strings.TrimSpace(app.Token); token != "" {
		ctx = apiclient.WithCredentials(ctx, apiclient.Credentials{Bearer: token})
	}
	return client, ctx, nil
}

func (app *App) definition(id string) (resource.Definition, error) {
	def, ok := app.catalog.Lookup(strings.TrimSpace(id))
	if !ok {
		return resource.Definition{}, apperrors.WithMetadata(apperrors.CodeNotFound, "unknown resource "+strconv.Quote(id), map[string]string{"Resource": id})
	}
	return def, nil
}

func (app *App) table(def resource.Definition) catalog.Table {
	return catalog.Default().Table(app.Language, def.TranslationSource(), catalog.CoreNamespace)
}

func envOr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func envIntOr(k string, d int) int {
	v, err := strconv.Atoi(envOr(k, ""))
	if err != nil || v <= 0 {
		return d
	}
	return v
}

// writeOut writes {"data": data, "meta": meta} where both are raw JSON.
func writeOut(cmd *cobra.Command, app *App, data string, meta string) error {
	doc, err := sjson.SetRaw(`{}`, "data", data)
	if err != nil {
		return err
	}
	if meta != "" {
		if doc, err = sjson.SetRaw(doc, "meta", meta); err != nil {
			return err
		}
	}
	if app.PrettyJSON {
		doc = gjson.Get(doc, "@pretty").Raw
	} else {
		doc = gjson.Get(doc, "@ugly").Raw
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(doc))
	return err
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
