// Package dataset implementa el modelo tabular común a todos los tableros:
// filas ordenadas con columnas nominales, normalización de cabeceras,
// filtros de igualdad y el cruce territorial por código DANE.
package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Centinelas. "N/A" marca dato ausente; "Todos" es la opción de filtro neutra.
const (
	NA  = "N/A"
	All = "Todos"
)

// Dataset es una secuencia ordenada de filas, cada una un mapa columna->valor,
// más el orden de columnas para render y export.
type Dataset struct {
	Cols []string
	Rows []map[string]any
}

func New(cols ...string) *Dataset {
	return &Dataset{Cols: append([]string{}, cols...)}
}

func (d *Dataset) Empty() bool { return d == nil || len(d.Rows) == 0 }

func (d *Dataset) HasCol(name string) bool {
	for _, c := range d.Cols {
		if c == name {
			return true
		}
	}
	return false
}

func (d *Dataset) Append(row map[string]any) {
	d.Rows = append(d.Rows, row)
}

// Clone copia la estructura completa, incluidos los mapas de fila.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := New(d.Cols...)
	out.Rows = make([]map[string]any, 0, len(d.Rows))
	for _, r := range d.Rows {
		m := make(map[string]any, len(r))
		for k, v := range r {
			m[k] = v
		}
		out.Rows = append(out.Rows, m)
	}
	return out
}

// shallow devuelve un dataset nuevo que comparte los mapas de fila con el
// original. Basta para los filtros, que nunca escriben en las filas.
func (d *Dataset) shallow(rows []map[string]any) *Dataset {
	return &Dataset{Cols: append([]string{}, d.Cols...), Rows: rows}
}

// Str representa cualquier valor de celda como cadena.
func Str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01")
	default:
		return fmt.Sprint(v)
	}
}

// Float coerciona una celda a numérico; lo no parseable vale 0.
func Float(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", ""))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// NormalizeName canonicaliza un nombre de columna: trim, mayúsculas y espacios
// a guión bajo. El alias histórico %_EJECUCION pasa a PORCENTAJE_EJECUCION.
func NormalizeName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	if s == "%_EJECUCION" {
		s = "PORCENTAJE_EJECUCION"
	}
	return s
}

// Normalize devuelve una copia con todas las cabeceras canonicalizadas.
// Es idempotente: normalizar dos veces da lo mismo que una.
func Normalize(d *Dataset) *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{Cols: make([]string, 0, len(d.Cols))}
	rename := make(map[string]string, len(d.Cols))
	for _, c := range d.Cols {
		n := NormalizeName(c)
		rename[c] = n
		out.Cols = append(out.Cols, n)
	}
	out.Rows = make([]map[string]any, 0, len(d.Rows))
	for _, r := range d.Rows {
		m := make(map[string]any, len(r))
		for k, v := range r {
			if n, ok := rename[k]; ok {
				m[n] = v
			} else {
				m[NormalizeName(k)] = v
			}
		}
		out.Rows = append(out.Rows, m)
	}
	return out
}

// Distinct devuelve los valores únicos no centinela de una columna, ordenados.
func Distinct(d *Dataset, col string) []string {
	if d == nil || !d.HasCol(col) {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, r := range d.Rows {
		v := strings.TrimSpace(Str(r[col]))
		if v == "" || v == NA {
			continue
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Options arma la lista de opciones de un filtro: "Todos" más los valores únicos.
func Options(d *Dataset, col string) []string {
	return append([]string{All}, Distinct(d, col)...)
}

// MonthOptions ordena las opciones de mes por calendario en vez de alfabeto.
func MonthOptions(d *Dataset, col string) []string {
	vals := Distinct(d, col)
	sort.SliceStable(vals, func(i, j int) bool {
		return MonthIndex(vals[i]) < MonthIndex(vals[j])
	})
	return append([]string{All}, vals...)
}

// Meses abreviados y completos; ambos alfabetos aparecen en los extractos.
var monthOrder = map[string]int{
	"ENE": 1, "FEB": 2, "MAR": 3, "ABR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AGO": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DIC": 12,
	"ENERO": 1, "FEBRERO": 2, "MARZO": 3, "ABRIL": 4, "MAYO": 5,
	"JUNIO": 6, "JULIO": 7, "AGOSTO": 8, "SEPTIEMBRE": 9,
	"OCTUBRE": 10, "NOVIEMBRE": 11, "DICIEMBRE": 12,
}

// MonthIndex devuelve 1..12 para un nombre de mes en español, 0 si no lo es.
func MonthIndex(s string) int {
	return monthOrder[strings.ToUpper(strings.TrimSpace(s))]
}
