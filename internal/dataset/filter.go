package dataset

import (
	"strings"
	"sync"
)

// canon normaliza un valor para comparación de filtros: trim + mayúsculas.
func canon(v any) string {
	return strings.ToUpper(strings.TrimSpace(Str(v)))
}

// IsAll reconoce el centinela de filtro neutro sin importar la caja.
func IsAll(v string) bool {
	return v == "" || strings.EqualFold(strings.TrimSpace(v), All)
}

// Filter devuelve el subconjunto de filas donde col == val. Si la columna no
// existe o la selección es "Todos", devuelve el dataset intacto (misma orden).
// No muta el original: el resultado comparte filas pero no el slice.
func Filter(d *Dataset, col, val string) *Dataset {
	if d == nil {
		return nil
	}
	if !d.HasCol(col) || IsAll(val) {
		return d.shallow(append([]map[string]any{}, d.Rows...))
	}
	want := canon(val)
	var rows []map[string]any
	for _, r := range d.Rows {
		if canon(r[col]) == want {
			rows = append(rows, r)
		}
	}
	return d.shallow(rows)
}

// Selection mapea nombre de filtro -> valor elegido. El nombre de cada filtro
// coincide con la columna que restringe.
type Selection map[string]string

func (s Selection) Get(name string) string {
	if s == nil {
		return All
	}
	if v, ok := s[name]; ok && v != "" {
		return v
	}
	return All
}

func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Apply aplica los filtros en orden, uno por columna. Los filtros componen por
// intersección secuencial; el encadenamiento jerárquico región->departamento->
// municipio sale solo de ese orden.
func Apply(d *Dataset, sel Selection, cols ...string) *Dataset {
	out := d
	for _, c := range cols {
		out = Filter(out, c, sel.Get(c))
	}
	return out
}

// Store es el dueño del estado de filtros de la sesión: valores vigentes y
// restablecimiento a los predeterminados. El motor queda puro (dataset +
// Selection -> resultado); el mutex existe porque net/http atiende concurrente.
type Store struct {
	mu       sync.Mutex
	defaults Selection
	current  Selection
}

func NewStore(defaults Selection) *Store {
	if defaults == nil {
		defaults = Selection{}
	}
	return &Store{defaults: defaults.Clone(), current: defaults.Clone()}
}

// Current devuelve una copia de la selección vigente.
func (st *Store) Current() Selection {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current.Clone()
}

// Merge fija los valores recibidos y devuelve la selección resultante.
func (st *Store) Merge(vals Selection) Selection {
	st.mu.Lock()
	defer st.mu.Unlock()
	for k, v := range vals {
		if v == "" {
			continue
		}
		st.current[k] = v
	}
	return st.current.Clone()
}

// Reset vuelve a los valores predeterminados.
func (st *Store) Reset() Selection {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = st.defaults.Clone()
	return st.current.Clone()
}
