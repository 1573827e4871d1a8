package load

import (
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// fromExcel lee una hoja completa: primera fila no vacía como cabecera, el
// resto como filas de datos. Las celdas llegan como cadenas; la coerción
// numérica la hace después Prepare según el esquema del tablero.
func fromExcel(path, sheet string) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "no se pudo abrir %s", path)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "no se pudo leer la hoja %q de %s", sheet, path)
	}

	var header []string
	start := 0
	for i, r := range rows {
		if !rowEmpty(r) {
			header = r
			start = i + 1
			break
		}
	}
	if header == nil {
		return nil, errors.Errorf("la hoja %q de %s está vacía", sheet, path)
	}

	ds := dataset.New(header...)
	for _, r := range rows[start:] {
		if rowEmpty(r) {
			continue
		}
		m := make(map[string]any, len(header))
		for j, c := range header {
			// GetRows recorta las celdas finales vacías
			if j < len(r) {
				m[c] = r[j]
			} else {
				m[c] = ""
			}
		}
		ds.Append(m)
	}
	return ds, nil
}

func rowEmpty(r []string) bool {
	for _, c := range r {
		if c != "" {
			return false
		}
	}
	return true
}
