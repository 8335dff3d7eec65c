package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/louisbranch/backoffice/internal/services/backoffice"
	"github.com/louisbranch/backoffice/internal/services/backoffice/export"
	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
)

func newExportCmd(app *App) *cobra.Command {
	var filters []string
	var out string
	var limit int

	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Export every page of a list to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := app.definition(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			params, err := listParams(app, def, filters, 1)
			if err != nil {
				return writeErr(cmd, err)
			}
			params.PerPage = listing.ExportPerPage
			client, ctx, err := app.client(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if limit <= 0 || limit > export.MaxRows {
				limit = export.MaxRows
			}
			records, err := backoffice.CollectRecords(ctx, client, def, params, limit)
			if err != nil {
				return writeErr(cmd, err)
			}

			path := strings.TrimSpace(out)
			if path == "" {
				path = export.Filename(def)
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return writeErr(cmd, err)
				}
			}
			f, err := os.Create(path)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := export.Write(f, app.table(def), def, records); err != nil {
				f.Close()
				return writeErr(cmd, err)
			}
			if err := f.Close(); err != nil {
				return writeErr(cmd, err)
			}

			data, _ := sjson.Set(`{}`, "path", path)
			data, _ = sjson.Set(data, "rows", len(records))
			return writeOut(cmd, app, data, "")
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as name=value (repeatable)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default <resource>.xlsx)")
	cmd.Flags().IntVar(&limit, "limit", export.MaxRows, "Maximum rows to export")
	return cmd
}
