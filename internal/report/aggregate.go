// Package report implementa el motor de agregación de los tableros: sumas por
// clave de agrupación, razones seguras ante denominador cero, fila de totales
// recalculada desde las sumas globales y el par de salidas export/display.
package report

import (
	"sort"
	"strings"

	"github.com/dmendozad/tableros-vpo/internal/dataset"
)

// TotalLabel es la clave sintética de la fila de totales.
const TotalLabel = "TOTAL"

// DiffCol es la columna derivada numerador - denominador.
const DiffCol = "DIFERENCIA"

// Metric asocia (numerador, denominador) con el nombre de la razón derivada,
// p. ej. (EJECUTADO, PRESUPUESTO) -> PORCENTAJE_EJECUCION.
type Metric struct {
	Num   string
	Den   string
	Ratio string
}

// Spec parametriza una agregación. Cada tabla de cada tablero es una Spec
// distinta sobre el mismo motor.
type Spec struct {
	GroupBy []string // clave simple o compuesta, en orden
	Metrics []Metric
	Sums    []string // orden de las columnas sumadas; si va vacío se deriva de Metrics

	// ShareOf agrega una columna de participación: suma del grupo sobre la
	// suma general de esa columna, por cien.
	ShareOf   string
	ShareName string

	WithTotal bool // fila TOTAL recalculada desde las sumas globales
	WithDiff  bool // DIFERENCIA sobre el primer par (num - den)

	MonthOrder bool   // reordenar por calendario; meses no reconocidos se descartan
	SortBy     string // columna de orden; vacío = primera clave
	SortDesc   bool

	Rename map[string]string // cabeceras display; lo no mapeado se titula solo
}

// Table es el par alineado de salidas de una agregación.
type Table struct {
	Export  *dataset.Dataset // números crudos
	Display *dataset.Dataset // todo cadenas formateadas, cabeceras legibles
}

// Ratio es la división segura de los tableros: porcentaje, y 0 ante
// denominador cero en vez de NaN/Inf.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

// Sum totaliza una columna numérica de un dataset.
func Sum(d *dataset.Dataset, col string) float64 {
	if d == nil {
		return 0
	}
	var t float64
	for _, r := range d.Rows {
		t += dataset.Float(r[col])
	}
	return t
}

type group struct {
	keys []string
	sums map[string]float64
}

// sumCols devuelve el orden de columnas a sumar.
func (s Spec) sumCols() []string {
	if len(s.Sums) > 0 {
		return s.Sums
	}
	var out []string
	seen := map[string]bool{}
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, m := range s.Metrics {
		add(m.Num)
		add(m.Den)
	}
	add(s.ShareOf)
	return out
}

// Aggregate corre el motor sobre un dataset ya filtrado. Devuelve nil cuando
// no hay nada que agrupar (columna ausente, sin valores, o todo centinela):
// el llamador lo trata como "sin datos", nunca como error.
func Aggregate(d *dataset.Dataset, spec Spec) *Table {
	if d.Empty() || len(spec.GroupBy) == 0 {
		return nil
	}
	for _, g := range spec.GroupBy {
		if !d.HasCol(g) {
			return nil
		}
	}
	sums := spec.sumCols()

	// agrupar descartando filas con clave centinela
	byKey := map[string]*group{}
	var order []string
	for _, r := range d.Rows {
		keys := make([]string, len(spec.GroupBy))
		skip := false
		for i, g := range spec.GroupBy {
			v := strings.TrimSpace(dataset.Str(r[g]))
			if v == "" || v == dataset.NA {
				skip = true
				break
			}
			keys[i] = v
		}
		if skip {
			continue
		}
		k := strings.Join(keys, "\x1f")
		grp, ok := byKey[k]
		if !ok {
			grp = &group{keys: keys, sums: map[string]float64{}}
			byKey[k] = grp
			order = append(order, k)
		}
		for _, c := range sums {
			grp.sums[c] += dataset.Float(r[c])
		}
	}
	if len(order) == 0 {
		return nil
	}

	groups := make([]*group, 0, len(order))
	for _, k := range order {
		groups = append(groups, byKey[k])
	}
	groups = sortGroups(groups, spec)
	if len(groups) == 0 {
		return nil
	}

	// totales generales, para la fila TOTAL y para la participación
	grand := map[string]float64{}
	for _, g := range groups {
		for _, c := range sums {
			grand[c] += g.sums[c]
		}
	}

	export := buildExport(groups, grand, spec, sums)
	return &Table{Export: export, Display: buildDisplay(export, spec)}
}

// sortGroups ordena por calendario, por columna pedida o por clave. Con orden
// calendario, los meses no reconocidos no tienen posición y se descartan.
func sortGroups(groups []*group, spec Spec) []*group {
	if spec.MonthOrder {
		kept := make([]*group, 0, len(groups))
		for _, g := range groups {
			if dataset.MonthIndex(g.keys[0]) > 0 {
				kept = append(kept, g)
			}
		}
		sort.SliceStable(kept, func(i, j int) bool {
			return dataset.MonthIndex(kept[i].keys[0]) < dataset.MonthIndex(kept[j].keys[0])
		})
		return kept
	}
	by := spec.SortBy
	if by == "" {
		by = spec.GroupBy[0]
	}
	for i, gcol := range spec.GroupBy {
		if by == gcol {
			idx := i
			sort.SliceStable(groups, func(a, b int) bool {
				if spec.SortDesc {
					return groups[a].keys[idx] > groups[b].keys[idx]
				}
				return groups[a].keys[idx] < groups[b].keys[idx]
			})
			return groups
		}
	}
	sort.SliceStable(groups, func(a, b int) bool {
		va := metricValue(groups[a], spec, by)
		vb := metricValue(groups[b], spec, by)
		if spec.SortDesc {
			return va > vb
		}
		return va < vb
	})
	return groups
}

// metricValue evalúa una columna derivada o sumada de un grupo, para ordenar.
func metricValue(g *group, spec Spec, col string) float64 {
	for _, m := range spec.Metrics {
		if m.Ratio == col {
			return Ratio(g.sums[m.Num], g.sums[m.Den])
		}
	}
	if col == DiffCol && len(spec.Metrics) > 0 {
		return g.sums[spec.Metrics[0].Num] - g.sums[spec.Metrics[0].Den]
	}
	return g.sums[col]
}

// exportCols fija el orden de columnas de la salida: claves, sumas,
// diferencia, razones, participación.
func (s Spec) exportCols(sums []string) []string {
	cols := append([]string{}, s.GroupBy...)
	cols = append(cols, sums...)
	if s.WithDiff && len(s.Metrics) > 0 {
		cols = append(cols, DiffCol)
	}
	for _, m := range s.Metrics {
		cols = append(cols, m.Ratio)
	}
	if s.ShareOf != "" {
		cols = append(cols, s.shareName())
	}
	return cols
}

func (s Spec) shareName() string {
	if s.ShareName != "" {
		return s.ShareName
	}
	return "PARTICIPACION"
}

func buildExport(groups []*group, grand map[string]float64, spec Spec, sums []string) *dataset.Dataset {
	out := dataset.New(spec.exportCols(sums)...)
	emit := func(keys []string, vals map[string]float64) {
		row := map[string]any{}
		for i, g := range spec.GroupBy {
			row[g] = keys[i]
		}
		for _, c := range sums {
			row[c] = vals[c]
		}
		if spec.WithDiff && len(spec.Metrics) > 0 {
			row[DiffCol] = vals[spec.Metrics[0].Num] - vals[spec.Metrics[0].Den]
		}
		for _, m := range spec.Metrics {
			row[m.Ratio] = Ratio(vals[m.Num], vals[m.Den])
		}
		if spec.ShareOf != "" {
			row[spec.shareName()] = Ratio(vals[spec.ShareOf], grand[spec.ShareOf])
		}
		out.Append(row)
	}
	for _, g := range groups {
		emit(g.keys, g.sums)
	}
	if spec.WithTotal {
		// la fila TOTAL se recalcula desde las sumas globales, nunca
		// promediando las razones por grupo
		keys := make([]string, len(spec.GroupBy))
		keys[0] = TotalLabel
		emit(keys, grand)
	}
	return out
}

// buildDisplay produce la tabla hermana formateada: miles para montos,
// dos decimales para porcentajes, cabeceras legibles.
func buildDisplay(export *dataset.Dataset, spec Spec) *dataset.Dataset {
	keySet := map[string]bool{}
	for _, g := range spec.GroupBy {
		keySet[g] = true
	}
	pctSet := map[string]bool{}
	for _, m := range spec.Metrics {
		pctSet[m.Ratio] = true
	}
	if spec.ShareOf != "" {
		pctSet[spec.shareName()] = true
	}

	headers := make([]string, len(export.Cols))
	for i, c := range export.Cols {
		if h, ok := spec.Rename[c]; ok {
			headers[i] = h
		} else {
			headers[i] = PrettyHeader(c)
		}
	}
	out := dataset.New(headers...)
	for _, r := range export.Rows {
		m := make(map[string]any, len(headers))
		for i, c := range export.Cols {
			switch {
			case keySet[c]:
				m[headers[i]] = dataset.Str(r[c])
			case pctSet[c]:
				m[headers[i]] = FmtPct(dataset.Float(r[c]))
			default:
				m[headers[i]] = FmtMoney(dataset.Float(r[c]))
			}
		}
		out.Append(m)
	}
	return out
}
