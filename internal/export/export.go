// Package export escribe las tablas de los tableros como CSV o libros XLSX.
// El CSV lleva las cabeceras legibles y los valores crudos con punto decimal;
// el XLSX lleva números reales para que Excel/LibreOffice los trate como tales.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/dmendozad/tableros-vpo/internal/board"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/report"
)

// cell devuelve el valor de exportación de una celda: números con 2 decimales
// y punto decimal, texto tal cual.
func cell(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return dataset.Str(v)
}

// TableCSV escribe una tabla como CSV UTF-8, sin columna índice.
func TableCSV(w io.Writer, t *report.Table) error {
	if t == nil {
		return errors.New("sin datos para exportar")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Display.Cols); err != nil {
		return err
	}
	for _, r := range t.Export.Rows {
		row := make([]string, len(t.Export.Cols))
		for i, c := range t.Export.Cols {
			row[i] = cell(r[c])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// TableXLSX escribe una tabla en la hoja dada de un libro ya abierto.
func TableXLSX(f *excelize.File, sheet string, t *report.Table) error {
	if t == nil {
		return errors.New("sin datos para exportar")
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	head := make([]any, len(t.Display.Cols))
	for i, c := range t.Display.Cols {
		head[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	for i, r := range t.Export.Rows {
		row := make([]any, len(t.Export.Cols))
		for j, c := range t.Export.Cols {
			if fv, ok := r[c].(float64); ok {
				row[j] = fv
			} else {
				row[j] = dataset.Str(r[c])
			}
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

// ViewXLSX arma un libro con una hoja por tabla con datos de la vista.
func ViewXLSX(v *board.View) (*excelize.File, error) {
	f := excelize.NewFile()
	wrote := false
	for _, rt := range v.Tables {
		if rt.Table == nil {
			continue
		}
		sheet := report.SafeFile(rt.ID)
		if err := TableXLSX(f, sheet, rt.Table); err != nil {
			_ = f.Close()
			return nil, err
		}
		wrote = true
	}
	if !wrote {
		_ = f.Close()
		return nil, errors.New("la vista no tiene tablas con datos")
	}
	// la hoja por defecto de excelize sobra
	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

// SaveViewCSV escribe un CSV por tabla de la vista en el directorio dado y
// devuelve las rutas creadas.
func SaveViewCSV(v *board.View, dir string) ([]string, error) {
	var out []string
	stamp := time.Now().Unix()
	for _, rt := range v.Tables {
		if rt.Table == nil {
			continue
		}
		fn := filepath.Join(dir, fmt.Sprintf("%s_%s_%d.csv", report.SafeFile(v.Slug), report.SafeFile(rt.ID), stamp))
		f, err := os.Create(fn)
		if err != nil {
			return out, errors.Wrapf(err, "no se pudo crear %s", fn)
		}
		err = TableCSV(f, rt.Table)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return out, errors.Wrapf(err, "no se pudo escribir %s", fn)
		}
		out = append(out, fn)
	}
	if len(out) == 0 {
		return nil, errors.New("la vista no tiene tablas con datos")
	}
	return out, nil
}

// SaveViewXLSX escribe el libro de la vista y devuelve la ruta creada.
func SaveViewXLSX(v *board.View, dir string) (string, error) {
	f, err := ViewXLSX(v)
	if err != nil {
		return "", err
	}
	fn := filepath.Join(dir, fmt.Sprintf("%s_%d.xlsx", report.SafeFile(v.Slug), time.Now().Unix()))
	if err := f.SaveAs(fn); err != nil {
		_ = f.Close()
		return "", errors.Wrapf(err, "no se pudo guardar %s", fn)
	}
	_ = f.Close()
	return fn, nil
}
