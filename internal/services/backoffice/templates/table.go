package templates

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/authz"
	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// generationVals stamps every table request with a fresh generation number.
const generationVals = "js:{gen: Date.now()}"

// Row is one record with the controls the operator may use on it.
type Row struct {
	ID      string
	Record  apiclient.Record
	Actions authz.RowActions
	// Custom lists the row-scoped actions the operator may run.
	Custom []resource.Action
}

// TableView is the table fragment of a resource list.
type TableView struct {
	Def        resource.Definition
	Rows       []Row
	Pagination listing.Pagination
	Generation int
	// Error replaces the rows with an inline error row.
	Error string
}

// TableID returns the DOM id of the table region of a resource.
func TableID(res string) string {
	return "table-" + res
}

// FiltersID returns the DOM id of the filter form of a resource.
func FiltersID(res string) string {
	return "filters-" + res
}

// Table renders the swappable table region of a resource list.
func Table(loc Localizer, view TableView) templ.Component {
	return component(func(h *htmlWriter) {
		renderTable(h, loc, view)
	})
}

func renderTable(h *htmlWriter, loc Localizer, view TableView) {
	def := view.Def
	h.raw(`<div class="table-region"`)
	h.attr("id", TableID(def.ID))
	h.attr("data-gen", strconv.Itoa(view.Generation))
	h.attr("hx-get", routepath.ResourceRowsURL(def.ID))
	h.raw(` hx-trigger="refresh-table from:body"`)
	h.attr("hx-include", "#"+FiltersID(def.ID))
	h.attr("hx-vals", generationVals)
	h.raw(` hx-swap="outerHTML"><table class="records"><thead><tr>`)
	for _, col := range def.Columns {
		h.raw(`<th scope="col">`)
		h.text(columnLabel(loc, col))
		h.raw("</th>")
	}
	h.raw(`<th scope="col" class="actions">`)
	h.text(label(loc, "table.actions", "Actions"))
	h.raw("</th></tr></thead><tbody>")
	renderRows(h, loc, view)
	h.raw("</tbody></table>")
	if view.Error == "" {
		renderPagination(h, loc, def.ID, view.Pagination)
	}
	h.raw("</div>")
}

// tableRows renders only the table body rows.
func tableRows(loc Localizer, view TableView) templ.Component {
	return component(func(h *htmlWriter) {
		renderRows(h, loc, view)
	})
}

func renderRows(h *htmlWriter, loc Localizer, view TableView) {
	span := strconv.Itoa(len(view.Def.Columns) + 1)
	if view.Error != "" {
		h.raw(`<tr class="error-row"><td role="alert"`)
		h.attr("colspan", span)
		h.raw(">")
		h.text(T(loc, "table.load_failed", view.Error))
		h.raw("</td></tr>")
		return
	}
	if len(view.Rows) == 0 {
		h.raw(`<tr class="empty-row"><td`)
		h.attr("colspan", span)
		h.raw(">")
		h.text(label(loc, "table.no_records", "No records found"))
		h.raw("</td></tr>")
		return
	}
	for _, row := range view.Rows {
		h.raw("<tr")
		h.attr("id", "row-"+view.Def.ID+"-"+row.ID)
		h.raw(">")
		for _, col := range view.Def.Columns {
			h.raw("<td")
			h.attr("class", "col-"+string(col.Kind))
			h.raw(">")
			renderCell(h, loc, col, row.Record)
			h.raw("</td>")
		}
		h.raw(`<td class="actions">`)
		renderRowActions(h, loc, view.Def, row)
		h.raw("</td></tr>")
	}
}

func columnLabel(loc Localizer, col resource.Column) string {
	name := strings.TrimPrefix(col.Label, "fields.")
	if col.Label == "" && len(col.Paths) > 0 {
		name = col.Paths[0]
	}
	return label(loc, "fields."+name, humanize(name))
}

func renderCell(h *htmlWriter, loc Localizer, col resource.Column, record apiclient.Record) {
	first := record.String(firstPath(col))
	switch col.Kind {
	case resource.ColumnTruncate:
		h.raw("<span")
		h.attr("title", first)
		h.raw(">")
		h.text(Truncate(first))
		h.raw("</span>")
	case resource.ColumnBadge:
		if record.Bool(firstPath(col)) {
			h.raw(`<span class="badge badge-active">`)
			h.text(label(loc, "status.active", "Active"))
		} else {
			h.raw(`<span class="badge badge-inactive">`)
			h.text(label(loc, "status.inactive", "Inactive"))
		}
		h.raw("</span>")
	case resource.ColumnStatus:
		if first == "" {
			return
		}
		h.raw("<span")
		h.attr("class", "badge badge-"+first)
		h.raw(">")
		h.text(optionLabel(loc, resource.Option{Value: first, Label: "options." + first}))
		h.raw("</span>")
	case resource.ColumnBool:
		if record.Bool(firstPath(col)) {
			h.text(label(loc, "status.yes", "Yes"))
		} else {
			h.text(label(loc, "status.no", "No"))
		}
	case resource.ColumnMoney:
		if amount, ok := record.Float(firstPath(col)); ok && first != "" {
			h.text(FormatMoney(locale(loc), amount))
			return
		}
		h.text(first)
	case resource.ColumnDate:
		h.text(FormatDate(first))
	case resource.ColumnImage:
		for _, path := range col.Paths {
			src := record.String(path)
			if src == "" {
				continue
			}
			if safeURL(src) {
				h.raw(`<img class="thumb" loading="lazy" alt=""`)
				h.attr("src", src)
				h.raw(">")
			}
			return
		}
	case resource.ColumnComposite:
		parts := make([]string, 0, len(col.Paths))
		for _, path := range col.Paths {
			if value := record.String(path); value != "" {
				parts = append(parts, value)
			}
		}
		h.text(strings.Join(parts, " / "))
	default:
		h.text(first)
	}
}

func renderRowActions(h *htmlWriter, loc Localizer, def resource.Definition, row Row) {
	h.raw(`<div class="row-actions"><a class="button link"`)
	h.attr("href", routepath.Record(def.ID, row.ID))
	h.raw(">")
	h.text(label(loc, "action.view", "View"))
	h.raw("</a>")
	if row.Actions.Edit {
		h.raw(`<button type="button" class="button" hx-target="#modal" hx-swap="innerHTML"`)
		h.attr("hx-get", routepath.RecordEdit(def.ID, row.ID))
		h.raw(">")
		h.text(label(loc, "action.edit", "Edit"))
		h.raw("</button>")
	}
	if def.ActiveField != "" {
		active := row.Record.Bool(def.ActiveField)
		if row.Actions.Toggle {
			key, fallback := "action.activate", "Activate"
			if active {
				key, fallback = "action.deactivate", "Deactivate"
			}
			h.raw(`<button type="button" class="button toggle" hx-swap="none"`)
			h.attr("hx-post", routepath.RecordToggle(def.ID, row.ID))
			h.raw(">")
			h.text(label(loc, key, fallback))
			h.raw("</button>")
		} else {
			key, fallback := "status.inactive", "Inactive"
			if active {
				key, fallback = "status.active", "Active"
			}
			h.raw(`<span class="muted toggle-disabled">`)
			h.text(label(loc, key, fallback))
			h.raw("</span>")
		}
	}
	for _, action := range row.Custom {
		h.raw(`<button type="button" class="button" hx-swap="none"`)
		h.attr("hx-post", routepath.RecordAction(def.ID, row.ID))
		h.attr("hx-vals", jsonVals(map[string]string{ActionParam: action.Name}))
		if action.Confirm {
			h.attr("hx-confirm", label(loc, "action.confirm_action", "Are you sure?"))
		}
		h.raw(">")
		h.text(actionLabel(loc, action))
		h.raw("</button>")
	}
	if row.Actions.Delete {
		h.raw(`<button type="button" class="button danger" hx-swap="none" hx-vals='{"confirm":"yes"}'`)
		h.attr("hx-post", routepath.RecordDelete(def.ID, row.ID))
		h.attr("hx-confirm", label(loc, "action.confirm_delete", "Are you sure you want to delete this record?"))
		h.raw(">")
		h.text(label(loc, "action.delete", "Delete"))
		h.raw("</button>")
	}
	h.raw("</div>")
}

func actionLabel(loc Localizer, action resource.Action) string {
	return label(loc, "actions."+action.Name, humanize(action.Name))
}

func optionLabel(loc Localizer, option resource.Option) string {
	key := option.Label
	if key == "" {
		key = "options." + option.Value
	}
	return label(loc, key, option.Value)
}

func firstPath(col resource.Column) string {
	if len(col.Paths) == 0 {
		return ""
	}
	return col.Paths[0]
}

func jsonVals(values map[string]string) string {
	encoded, err := json.Marshal(values)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
