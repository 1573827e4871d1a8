// Package board arma cada tablero como una tubería de datos: carga de
// extractos, cruce territorial, vistas filtradas con subconjuntos de filtros
// distintos y agregaciones parametrizadas sobre el motor de report.
package board

import (
	"github.com/dmendozad/tableros-vpo/internal/config"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/load"
	"github.com/dmendozad/tableros-vpo/internal/report"
	"go.uber.org/zap"
)

// KPI es una tarjeta de indicador ya formateada.
type KPI struct {
	Label string
	Value string
}

// KPIGroup agrupa tarjetas bajo un encabezado (p. ej. un régimen).
type KPIGroup struct {
	Title string
	KPIs  []KPI
}

// RenderedTable es una tabla del tablero lista para mostrar o exportar.
// Table en nil significa "sin datos para esta selección" en esa sección.
type RenderedTable struct {
	ID    string
	Title string
	Table *report.Table
}

// Series es una serie de una gráfica de barras o líneas.
type Series struct {
	Name string
	Data []float64
}

// Chart lleva los datos crudos de una gráfica; la capa de presentación los
// serializa para Chart.js o los dibuja en ASCII según el modo.
type Chart struct {
	ID     string
	Title  string
	Labels []string
	Series []Series
	// Labels de porcentaje sobre cada grupo, alineadas con Labels ("" = sin etiqueta)
	Annotations []string
}

// FilterControl describe un filtro para la interfaz: opciones enumeradas con
// "Todos" al frente y el valor vigente.
type FilterControl struct {
	Name     string
	Label    string
	Options  []string
	Selected string
	Geo      bool // va en la sección colapsable de georreferenciación
}

// View es el resultado completo de un ciclo de render de un tablero.
type View struct {
	Slug      string
	Title     string
	Filters   []FilterControl
	Notices   []string
	KPIGroups []KPIGroup
	Tables    []RenderedTable
	Charts    []Chart
}

// Table busca una tabla por id; nil si no existe o no tiene datos.
func (v *View) Table(id string) *report.Table {
	for _, t := range v.Tables {
		if t.ID == id && t.Table != nil {
			return t.Table
		}
	}
	return nil
}

// Board es lo que la web, la TUI y el export entienden por tablero.
type Board interface {
	Slug() string
	Title() string
	Render(sel dataset.Selection) (*View, error)
}

// Registry instancia los tres tableros en el orden del panel principal.
func Registry(conf *config.Configuration, loader *load.Loader, log *zap.Logger) []Board {
	return []Board{
		NewIngreso(conf, loader, log),
		NewPoblacion(conf, loader, log),
		NewSGSSS(conf, loader, log),
	}
}

// Lookup devuelve el tablero con ese slug, o nil.
func Lookup(boards []Board, slug string) Board {
	for _, b := range boards {
		if b.Slug() == slug {
			return b
		}
	}
	return nil
}

// control arma un FilterControl genérico a partir de un dataset.
func control(d *dataset.Dataset, name, label string, sel dataset.Selection, geo bool) FilterControl {
	return FilterControl{
		Name:     name,
		Label:    label,
		Options:  dataset.Options(d, name),
		Selected: sel.Get(name),
		Geo:      geo,
	}
}

// monthControl es como control pero con los meses en orden de calendario.
func monthControl(d *dataset.Dataset, name, label string, sel dataset.Selection) FilterControl {
	return FilterControl{
		Name:     name,
		Label:    label,
		Options:  dataset.MonthOptions(d, name),
		Selected: sel.Get(name),
	}
}

// chartFromTable convierte una agregación en gráfica de barras agrupadas con
// etiqueta de porcentaje por grupo. Los grupos cuyo primer valor sumado es 0
// no se dibujan (meses sin presupuesto).
func chartFromTable(t *report.Table, id, title, keyCol string, valueCols []string, names []string, pctCol string) Chart {
	ch := Chart{ID: id, Title: title}
	for i := range valueCols {
		ch.Series = append(ch.Series, Series{Name: names[i]})
	}
	if t == nil {
		return ch
	}
	for _, r := range t.Export.Rows {
		key := dataset.Str(r[keyCol])
		if key == report.TotalLabel {
			continue
		}
		if dataset.Float(r[valueCols[0]]) == 0 {
			continue
		}
		ch.Labels = append(ch.Labels, key)
		for i, c := range valueCols {
			ch.Series[i].Data = append(ch.Series[i].Data, dataset.Float(r[c]))
		}
		if pctCol != "" {
			ch.Annotations = append(ch.Annotations, report.FmtPctShort(dataset.Float(r[pctCol])))
		}
	}
	return ch
}
