// Package browse is the terminal record browser: a live search box over one
// resource list.
package browse

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/timeouts"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
)

// Debounce is how long typing must pause before a search is sent.
const Debounce = timeouts.SearchDebounce

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b00020", Dark: "#ff6b6b"})
)

// Lister fetches one page of a resource.
type Lister interface {
	List(ctx context.Context, ep apiclient.Endpoint, query url.Values) (apiclient.List, error)
}

// searchTickMsg fires Debounce after a keystroke. Only the tick carrying the
// latest generation starts a fetch.
type searchTickMsg struct{ gen int }

// resultsMsg carries the page fetched for generation gen.
type resultsMsg struct {
	gen  int
	list apiclient.List
	err  error
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx  context.Context
	api  Lister
	def  resource.Definition
	loc  templates.Localizer
	lang string

	input textinput.Model
	table table.Model

	gen     int
	query   string
	page    int
	perPage int
	loading bool
	err     error
	pages   listing.Pagination

	width  int
	height int
}

// Config wires a browser Model.
type Config struct {
	API      Lister
	Def      resource.Definition
	Loc      templates.Localizer
	Language string
	PerPage  int
}

// New builds the browser for one resource.
func New(ctx context.Context, cfg Config) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = listing.DefaultPerPage
	}
	input := textinput.New()
	input.Placeholder = label(cfg.Loc, "browse.search", "Search...")
	input.Focus()

	columns := make([]table.Column, 0, len(cfg.Def.Columns))
	for _, col := range cfg.Def.Columns {
		columns = append(columns, table.Column{Title: templates.ColumnLabel(cfg.Loc, col), Width: 18})
	}
	return Model{
		ctx:     ctx,
		api:     cfg.API,
		def:     cfg.Def,
		loc:     cfg.Loc,
		lang:    cfg.Language,
		input:   input,
		table:   table.New(table.WithColumns(columns), table.WithHeight(perPage)),
		page:    1,
		perPage: perPage,
		loading: true,
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetch(m.gen))
}

// Update handles keystrokes, debounce ticks and fetch results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		if msg.Height > 6 {
			m.table.SetHeight(msg.Height - 6)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "pgdown":
			if m.pages.HasNext() {
				m.page++
				return m.refetch()
			}
			return m, nil
		case "pgup":
			if m.page > 1 {
				m.page--
				return m.refetch()
			}
			return m, nil
		case "up", "down":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		query := strings.TrimSpace(m.input.Value())
		if query == m.query {
			return m, cmd
		}
		m.query = query
		m.page = 1
		m.gen++
		gen := m.gen
		return m, tea.Batch(cmd, tea.Tick(Debounce, func(time.Time) tea.Msg { return searchTickMsg{gen: gen} }))

	case searchTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = true
		return m, m.fetch(msg.gen)

	case resultsMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.table.SetRows(nil)
			return m, nil
		}
		m.pages = listing.Paginate(msg.list.Total, m.page, m.perPage)
		m.table.SetRows(m.rows(msg.list.Rows))
		return m, nil
	}
	return m, nil
}

// refetch starts a new generation and fetches it without waiting.
func (m Model) refetch() (tea.Model, tea.Cmd) {
	m.gen++
	m.loading = true
	return m, m.fetch(m.gen)
}

func (m Model) fetch(gen int) tea.Cmd {
	params := listing.Params{
		Filters:  map[string]string{},
		Page:     m.page,
		PerPage:  m.perPage,
		Language: m.lang,
	}
	if name := m.def.SearchFilter(); name != "" && m.query != "" {
		params.Filters[name] = m.query
	}
	ctx, api, ep, query := m.ctx, m.api, m.def.Endpoint, listing.Query(m.def, params)
	return func() tea.Msg {
		list, err := api.List(ctx, ep, query)
		return resultsMsg{gen: gen, list: list, err: err}
	}
}

func (m Model) rows(records []apiclient.Record) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, record := range records {
		row := make(table.Row, 0, len(m.def.Columns))
		for _, col := range m.def.Columns {
			row = append(row, templates.CellText(m.loc, col, record))
		}
		rows = append(rows, row)
	}
	return rows
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(label(m.loc, "title", m.def.ID)))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(apperrors.PublicMessage(m.err, m.lang)))
	case m.loading:
		b.WriteString(statusStyle.Render(label(m.loc, "browse.searching", "Searching...")))
	case m.pages.Total == 0:
		b.WriteString(statusStyle.Render(label(m.loc, "table.no_records", "No records found")))
	default:
		b.WriteString(statusStyle.Render(templates.T(m.loc, "pagination.showing", m.pages.From, m.pages.To, m.pages.Total)))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(label(m.loc, "browse.help", "type to search  pgup/pgdn: page  esc: quit")))
	return b.String()
}

// Run opens the browser on the terminal until the operator quits.
func Run(ctx context.Context, cfg Config) error {
	_, err := tea.NewProgram(New(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func label(loc templates.Localizer, key string, fallback string) string {
	if loc == nil {
		return fallback
	}
	return loc.T(key, fallback)
}
