package export

import (
	"strings"
	"testing"

	"github.com/dmendozad/tableros-vpo/internal/board"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/report"
)

func tablaFixture() *report.Table {
	export := dataset.New("MES", "PRESUPUESTO", "PORCENTAJE_EJECUCION")
	export.Append(map[string]any{"MES": "ENE", "PRESUPUESTO": 1500.5, "PORCENTAJE_EJECUCION": 93.333})
	display := dataset.New("Mes", "Presupuesto", "% Ejecución")
	display.Append(map[string]any{"Mes": "ENE", "Presupuesto": "1,501", "% Ejecución": "93.33%"})
	return &report.Table{Export: export, Display: display}
}

func TestTableCSV(t *testing.T) {
	var b strings.Builder
	if err := TableCSV(&b, tablaFixture()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("líneas = %d: %q", len(lines), b.String())
	}
	// cabeceras legibles, valores crudos con punto decimal
	if lines[0] != "Mes,Presupuesto,% Ejecución" {
		t.Errorf("cabecera = %q", lines[0])
	}
	if lines[1] != "ENE,1500.50,93.33" {
		t.Errorf("fila = %q", lines[1])
	}
}

func TestTableCSVSinDatos(t *testing.T) {
	var b strings.Builder
	if err := TableCSV(&b, nil); err == nil {
		t.Fatal("tabla nil debía dar error")
	}
}

func TestViewXLSX(t *testing.T) {
	v := &board.View{
		Slug: "ingreso",
		Tables: []board.RenderedTable{
			{ID: "mes", Title: "Por Mes", Table: tablaFixture()},
			{ID: "vacia", Title: "Sin Datos", Table: nil},
		},
	}
	f, err := ViewXLSX(v)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := f.GetCellValue("mes", "A1")
	if err != nil || got != "Mes" {
		t.Errorf("cabecera A1 = %q (%v)", got, err)
	}
	val, err := f.GetCellValue("mes", "B2")
	if err != nil || val != "1500.5" {
		t.Errorf("celda B2 = %q (%v)", val, err)
	}
}

func TestViewXLSXSinTablas(t *testing.T) {
	v := &board.View{Slug: "x", Tables: []board.RenderedTable{{ID: "a", Table: nil}}}
	if _, err := ViewXLSX(v); err == nil {
		t.Fatal("vista sin tablas con datos debía dar error")
	}
}
