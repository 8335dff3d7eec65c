package cli

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
)

func newResourcesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the managed resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := `[]`
			for _, def := range app.catalog.All() {
				entry, _ := sjson.Set(`{}`, "id", def.ID)
				entry, _ = sjson.Set(entry, "title", app.table(def).T("title", def.ID))
				entry, _ = sjson.Set(entry, "read_only", def.ReadOnly)
				data, _ = sjson.SetRaw(data, "-1", entry)
			}
			return writeOut(cmd, app, data, "")
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	var filters []string
	var page int

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List one page of records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := app.definition(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			params, err := listParams(app, def, filters, page)
			if err != nil {
				return writeErr(cmd, err)
			}
			client, ctx, err := app.client(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			list, err := client.List(ctx, def.Endpoint, listing.Query(def, params))
			if err != nil {
				return writeErr(cmd, err)
			}
			pages := listing.Paginate(list.Total, params.Page, params.PerPage)
			meta, _ := sjson.Set(`{}`, "page", pages.Page)
			meta, _ = sjson.Set(meta, "per_page", pages.PerPage)
			meta, _ = sjson.Set(meta, "total", pages.Total)
			meta, _ = sjson.Set(meta, "total_pages", pages.TotalPages)
			return writeOut(cmd, app, recordsJSON(list.Rows), meta)
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as name=value (repeatable)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func newGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := app.definition(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, ctx, err := app.client(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			record, err := client.Get(ctx, def.Endpoint, args[1], url.Values{"lang": []string{app.Language}})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, record.Raw(), "")
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := app.definition(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if def.ReadOnly {
				return writeErr(cmd, apperrors.New(apperrors.CodePermissionDenied, def.ID+" is read-only"))
			}
			if !yes {
				return writeErr(cmd, apperrors.New(apperrors.CodeConfirmationRequired, "pass --yes to delete "+def.ID+" "+args[1]))
			}
			client, ctx, err := app.client(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			mutation, err := client.Delete(ctx, def.Endpoint, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			data, _ := sjson.Set(`{}`, "id", mutation.ID)
			if mutation.Message != "" {
				data, _ = sjson.Set(data, "message", mutation.Message)
			}
			return writeOut(cmd, app, data, "")
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}

// listParams reads name=value filters declared by def.
func listParams(app *App, def resource.Definition, filters []string, page int) (listing.Params, error) {
	values := url.Values{}
	known := map[string]bool{}
	for _, filter := range def.Filters {
		for _, name := range listing.FilterParams(filter) {
			known[name] = true
		}
	}
	for _, raw := range filters {
		name, value, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return listing.Params{}, apperrors.New(apperrors.CodeInvalidInput, "filter must be name=value: "+strconv.Quote(raw))
		}
		if !known[name] {
			return listing.Params{}, apperrors.New(apperrors.CodeInvalidInput, def.ID+" has no filter "+strconv.Quote(name))
		}
		values.Set(name, value)
	}
	if page > 1 {
		values.Set(listing.PageParam, strconv.Itoa(page))
	}
	params := listing.ParseParams(def, values, app.PerPage)
	params.Language = app.Language
	return params, nil
}

func recordsJSON(records []apiclient.Record) string {
	data := `[]`
	for _, record := range records {
		raw := record.Raw()
		if raw == "" {
			raw = `{}`
		}
		data, _ = sjson.SetRaw(data, "-1", raw)
	}
	return data
}
