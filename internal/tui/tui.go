// Package tui es el modo terminal de los tableros: lista de tableros, ciclo
// de filtros con teclas, tablas en texto plano, histograma ASCII y
// exportación a fichero de la vista filtrada.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmendozad/tableros-vpo/internal/board"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/export"
)

type Model struct {
	boards []board.Board

	list      list.Model
	current   board.Board
	view      *board.View
	sel       dataset.Selection
	filterIdx int
	tableIdx  int
	status    string
	focus     int // 0=lista, 1=tablero
}

type boardItem struct{ b board.Board }

func (i boardItem) FilterValue() string { return i.b.Title() }
func (i boardItem) Title() string       { return i.b.Title() }
func (i boardItem) Description() string { return "" }

func New(boards []board.Board) Model {
	items := make([]list.Item, len(boards))
	for i, b := range boards {
		items[i] = boardItem{b: b}
	}
	l := list.New(items, list.NewDefaultDelegate(), 28, 20)
	l.Title = "Tableros"
	return Model{boards: boards, list: l, sel: dataset.Selection{}}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "Q":
			return m, tea.Quit
		case "enter":
			if m.focus == 0 {
				if it, ok := m.list.SelectedItem().(boardItem); ok {
					m.current = it.b
					m.sel = dataset.Selection{}
					m.filterIdx, m.tableIdx = 0, 0
					m.focus = 1
					m.render()
				}
				return m, nil
			}
		case "esc":
			m.focus = 0
			return m, nil
		case "F": // siguiente filtro
			if m.view != nil && len(m.view.Filters) > 0 {
				m.filterIdx = (m.filterIdx + 1) % len(m.view.Filters)
			}
			return m, nil
		case "V": // siguiente valor del filtro activo
			m.cycleValue()
			return m, nil
		case "R": // restablecer filtros
			if m.current != nil {
				m.sel = dataset.Selection{}
				m.render()
			}
			return m, nil
		case "T": // siguiente tabla
			if m.view != nil && len(m.view.Tables) > 0 {
				m.tableIdx = (m.tableIdx + 1) % len(m.view.Tables)
			}
			return m, nil
		case "E": // export CSV
			if m.view != nil {
				if files, err := export.SaveViewCSV(m.view, "."); err != nil {
					m.status = err.Error()
				} else {
					m.status = fmt.Sprintf("Exportados %d CSV", len(files))
				}
			}
			return m, nil
		case "X": // export XLSX
			if m.view != nil {
				if fn, err := export.SaveViewXLSX(m.view, "."); err != nil {
					m.status = err.Error()
				} else {
					m.status = "Exportado " + fn
				}
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width/3, msg.Height-4)
	}
	if m.focus == 0 {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// cycleValue avanza la selección del filtro activo a la siguiente opción.
func (m *Model) cycleValue() {
	if m.view == nil || len(m.view.Filters) == 0 {
		return
	}
	f := m.view.Filters[m.filterIdx]
	if len(f.Options) == 0 {
		return
	}
	idx := 0
	for i, o := range f.Options {
		if o == f.Selected {
			idx = i + 1
			break
		}
	}
	if idx >= len(f.Options) {
		idx = 0
	}
	m.sel[f.Name] = f.Options[idx]
	m.render()
}

func (m *Model) render() {
	if m.current == nil {
		return
	}
	v, err := m.current.Render(m.sel.Clone())
	if err != nil {
		m.status = err.Error()
		return
	}
	m.view = v
	if m.filterIdx >= len(v.Filters) {
		m.filterIdx = 0
	}
	if m.tableIdx >= len(v.Tables) {
		m.tableIdx = 0
	}
	m.status = ""
}

func (m Model) View() string {
	left := lipgloss.NewStyle().Width(32).Render(m.list.View())
	var b strings.Builder
	if m.view == nil {
		b.WriteString("Elige un tablero y pulsa [enter]\n")
	} else {
		fmt.Fprintf(&b, "%s\n\n", m.view.Title)
		for _, n := range m.view.Notices {
			fmt.Fprintf(&b, "! %s\n", n)
		}
		b.WriteString(m.renderFilters())
		b.WriteString(m.renderKPIs())
		b.WriteString(m.renderTable(12))
		b.WriteString(m.renderHistogram())
	}
	b.WriteString("\n[enter] abrir  [F] filtro  [V] valor  [R] reset  [T] tabla  [E] CSV  [X] XLSX  [Q] salir\n")
	b.WriteString(m.status)
	right := lipgloss.NewStyle().Width(100).Render(b.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderFilters() string {
	var b strings.Builder
	for i, f := range m.view.Filters {
		mark := "  "
		if i == m.filterIdx {
			mark = "> "
		}
		fmt.Fprintf(&b, "%s%s: %s\n", mark, f.Label, f.Selected)
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderKPIs() string {
	var b strings.Builder
	for _, g := range m.view.KPIGroups {
		fmt.Fprintf(&b, "%s\n", g.Title)
		for _, k := range g.KPIs {
			fmt.Fprintf(&b, "  %-38s %s\n", k.Label, k.Value)
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTable(maxLines int) string {
	if len(m.view.Tables) == 0 {
		return "(sin tablas)\n"
	}
	rt := m.view.Tables[m.tableIdx]
	var b strings.Builder
	fmt.Fprintf(&b, "Tabla [T]: %s\n", rt.Title)
	if rt.Table == nil {
		b.WriteString("(sin datos para la selección actual)\n")
		return b.String()
	}
	d := rt.Table.Display
	b.WriteString(strings.Join(d.Cols, " | ") + "\n")
	b.WriteString(strings.Repeat("-", len(strings.Join(d.Cols, " | "))) + "\n")
	for i, r := range d.Rows {
		if i >= maxLines {
			fmt.Fprintf(&b, "... (%d filas más)\n", len(d.Rows)-maxLines)
			break
		}
		row := make([]string, len(d.Cols))
		for j, c := range d.Cols {
			v := dataset.Str(r[c])
			if len(v) > 24 {
				v = v[:21] + "…"
			}
			row[j] = v
		}
		b.WriteString(strings.Join(row, " | ") + "\n")
	}
	return b.String()
}

// renderHistogram dibuja la primera gráfica del tablero en barras ASCII.
func (m Model) renderHistogram() string {
	if len(m.view.Charts) == 0 {
		return ""
	}
	ch := m.view.Charts[0]
	if len(ch.Labels) == 0 || len(ch.Series) == 0 {
		return ""
	}
	data := ch.Series[len(ch.Series)-1].Data
	var maxv float64
	for _, v := range data {
		if v > maxv {
			maxv = v
		}
	}
	if maxv == 0 {
		return ""
	}
	const maxBar = 40
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s (%s)\n", ch.Title, ch.Series[len(ch.Series)-1].Name)
	for i, lab := range ch.Labels {
		if i >= len(data) {
			break
		}
		bar := strings.Repeat("█", int(data[i]/maxv*maxBar))
		if len(lab) > 18 {
			lab = lab[:15] + "…"
		}
		ann := ""
		if i < len(ch.Annotations) && ch.Annotations[i] != "" {
			ann = "  " + ch.Annotations[i]
		}
		fmt.Fprintf(&b, "%-18s | %-*s%s\n", lab, maxBar, bar, ann)
	}
	return b.String()
}
