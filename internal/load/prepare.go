package load

import (
	"strings"
	"time"

	"github.com/dmendozad/tableros-vpo/internal/dataset"
)

// Schema declara, por tablero, qué columnas se esperan y cómo tratarlas.
// Reemplaza los chequeos tardíos de nombre de columna repartidos por las
// páginas: se valida una sola vez al cargar.
type Schema struct {
	// Expected se rellena si falta: 0 si el nombre pinta numérico según
	// NumericHints, "N/A" si no. El motor nunca aborta por columna opcional.
	Expected     []string
	NumericHints []string // subcadenas que marcan columna de monto/conteo
	Numeric      []string // coerción numérica explícita
	UpperText    []string // categóricas a TRIM+UPPER
	Drop         []string // columnas precalculadas que se recalculan aquí
	DeriveFecha  bool     // FECHA desde ANO+MES (primer día del mes)
}

func (s Schema) numericName(name string) bool {
	for _, h := range s.NumericHints {
		if strings.Contains(name, h) {
			return true
		}
	}
	return false
}

// Prepare aplica el esquema sobre una copia del dataset: backfill de columnas
// esperadas, coerción numérica, limpieza de categóricas y FECHA derivada.
func Prepare(d *dataset.Dataset, s Schema) *dataset.Dataset {
	if d == nil {
		return nil
	}
	out := d.Clone()

	for _, c := range s.Expected {
		if out.HasCol(c) {
			continue
		}
		out.Cols = append(out.Cols, c)
		var fill any = dataset.NA
		if s.numericName(c) {
			fill = 0.0
		}
		for _, r := range out.Rows {
			r[c] = fill
		}
	}

	if len(s.Drop) > 0 {
		drop := map[string]bool{}
		for _, c := range s.Drop {
			drop[c] = true
		}
		kept := out.Cols[:0]
		for _, c := range out.Cols {
			if !drop[c] {
				kept = append(kept, c)
			}
		}
		out.Cols = kept
		for _, r := range out.Rows {
			for c := range drop {
				delete(r, c)
			}
		}
	}

	numeric := map[string]bool{}
	for _, c := range out.Cols {
		if s.numericName(c) {
			numeric[c] = true
		}
	}
	for _, c := range s.Numeric {
		if out.HasCol(c) {
			numeric[c] = true
		}
	}
	upper := map[string]bool{}
	for _, c := range s.UpperText {
		if out.HasCol(c) {
			upper[c] = true
		}
	}

	for _, r := range out.Rows {
		for c := range numeric {
			r[c] = dataset.Float(r[c])
		}
		for c := range upper {
			v := strings.ToUpper(strings.TrimSpace(dataset.Str(r[c])))
			if v == "" {
				v = dataset.NA
			}
			r[c] = v
		}
	}

	if s.DeriveFecha {
		deriveFecha(out)
	}
	return out
}

// deriveFecha construye la columna FECHA con el primer día de ANO+MES.
// Las filas con año o mes inválido quedan con fecha cero.
func deriveFecha(d *dataset.Dataset) {
	if !d.HasCol("ANO") || !d.HasCol("MES") {
		return
	}
	if !d.HasCol("FECHA") {
		d.Cols = append(d.Cols, "FECHA")
	}
	for _, r := range d.Rows {
		// el año puede venir como "2024", 2024 o "2024.0" según la fuente
		year := int(dataset.Float(r["ANO"]))
		month := dataset.MonthIndex(dataset.Str(r["MES"]))
		if year == 0 || month == 0 {
			r["FECHA"] = time.Time{}
			continue
		}
		r["FECHA"] = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	}
}
