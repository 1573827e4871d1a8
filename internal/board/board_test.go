package board

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dmendozad/tableros-vpo/internal/config"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/load"
	"github.com/dmendozad/tableros-vpo/internal/report"
)

func TestChartFromTable(t *testing.T) {
	export := dataset.New("MES", "TOTAL_PRESUPUESTO", "TOTAL_EJECUTADO", "PORCENTAJE_EJECUCION")
	export.Append(map[string]any{"MES": "ENE", "TOTAL_PRESUPUESTO": 100.0, "TOTAL_EJECUTADO": 90.0, "PORCENTAJE_EJECUCION": 90.0})
	export.Append(map[string]any{"MES": "FEB", "TOTAL_PRESUPUESTO": 0.0, "TOTAL_EJECUTADO": 0.0, "PORCENTAJE_EJECUCION": 0.0})
	export.Append(map[string]any{"MES": report.TotalLabel, "TOTAL_PRESUPUESTO": 100.0, "TOTAL_EJECUTADO": 90.0, "PORCENTAJE_EJECUCION": 90.0})
	tb := &report.Table{Export: export, Display: export}

	ch := chartFromTable(tb, "mes", "título", "MES",
		[]string{"TOTAL_PRESUPUESTO", "TOTAL_EJECUTADO"}, []string{"Presupuesto", "Ejecutado"}, "PORCENTAJE_EJECUCION")

	// FEB (primer valor 0) y la fila TOTAL no se dibujan
	if len(ch.Labels) != 1 || ch.Labels[0] != "ENE" {
		t.Fatalf("labels = %v", ch.Labels)
	}
	if len(ch.Series) != 2 || ch.Series[0].Data[0] != 100.0 || ch.Series[1].Data[0] != 90.0 {
		t.Errorf("series = %v", ch.Series)
	}
	if ch.Annotations[0] != "90.0%" {
		t.Errorf("annotations = %v", ch.Annotations)
	}

	// tabla nil: gráfica vacía pero con las series declaradas
	ch = chartFromTable(nil, "x", "t", "MES", []string{"A"}, []string{"A"}, "")
	if len(ch.Labels) != 0 || len(ch.Series) != 1 {
		t.Errorf("gráfica de tabla nil: %+v", ch)
	}
}

func TestSubcuentasTable(t *testing.T) {
	d := dataset.New("PRESUPUESTO_UPC_LMA", "EJECUTADO_UPC_LMA", "PRESUPUESTO_PYP", "EJECUTADO_PYP", "PRESUPUESTO_PROVISION", "EJECUTADO_PROVISION")
	d.Append(map[string]any{
		"PRESUPUESTO_UPC_LMA": 100.0, "EJECUTADO_UPC_LMA": 50.0,
		"PRESUPUESTO_PYP": 10.0, "EJECUTADO_PYP": 10.0,
		"PRESUPUESTO_PROVISION": 0.0, "EJECUTADO_PROVISION": 5.0,
	})
	d.Append(map[string]any{
		"PRESUPUESTO_UPC_LMA": 100.0, "EJECUTADO_UPC_LMA": 30.0,
		"PRESUPUESTO_PYP": 0.0, "EJECUTADO_PYP": 0.0,
		"PRESUPUESTO_PROVISION": 0.0, "EJECUTADO_PROVISION": 0.0,
	})

	tb := subcuentasTable(d)
	if tb == nil {
		t.Fatal("subcuentasTable devolvió nil con datos")
	}
	if len(tb.Export.Rows) != 3 {
		t.Fatalf("filas = %d, quería una por subcuenta", len(tb.Export.Rows))
	}
	upc := tb.Export.Rows[0]
	if upc["PRESUPUESTO"] != 200.0 || upc["EJECUTADO"] != 80.0 || upc[report.DiffCol] != -120.0 {
		t.Errorf("fila UPC LMA: %v", upc)
	}
	if upc["PORCENTAJE_EJECUCION"] != 40.0 {
		t.Errorf("%% UPC LMA = %v", upc["PORCENTAJE_EJECUCION"])
	}
	// provisión con presupuesto 0: la razón es 0, no infinito
	prov := tb.Export.Rows[2]
	if prov["PORCENTAJE_EJECUCION"] != 0.0 {
		t.Errorf("%% PROVISION = %v", prov["PORCENTAJE_EJECUCION"])
	}

	if tb = subcuentasTable(dataset.New()); tb != nil {
		t.Errorf("sin filas debía dar nil")
	}
}

// writeBook escribe hojas de prueba en un libro xlsx.
func writeBook(t *testing.T, path string, sheets map[string][][]any) {
	t.Helper()
	f := excelize.NewFile()
	for sheet, rows := range sheets {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatal(err)
		}
		for i, row := range rows {
			r := row
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
				t.Fatal(err)
			}
		}
	}
	_ = f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
}

func testConfig(t *testing.T) *config.Configuration {
	t.Helper()
	dir := t.TempDir()

	writeBook(t, filepath.Join(dir, "informes.xlsx"), map[string][][]any{
		"ingreso": {
			{"ANO", "MES", "REGIMEN", "DANE", "TOTAL_PRESUPUESTO", "TOTAL_EJECUTADO"},
			{"2024", "ENE", "SUBSIDIADO", "5001", 100.0, 90.0},
			{"2024", "ENE", "CONTRIBUTIVO", "11001", 50.0, 50.0},
			{"2024", "FEB", "SUBSIDIADO", "5001", 200.0, 0.0},
		},
		"componentes": {
			{"ANO", "MES", "REGIMEN", "CONCEPTO", "PRESUPUESTO", "EJECUTADO"},
			{"2024", "ENE", "SUBSIDIADO", "UPC", 100.0, 90.0},
		},
		"poblacion": {
			{"ANO", "MES", "REGIMEN", "DANE", "POBLACION_BDUA", "POBLACION_PAIS", "PRESUPUESTO"},
			{"2024", "ENERO", "SUBSIDIADO", "5001", 800.0, 2000.0, 1000.0},
			{"2024", "ENERO", "CONTRIBUTIVO", "11001", 200.0, 1000.0, 250.0},
		},
	})
	writeBook(t, filepath.Join(dir, "territorio.xlsx"), map[string][][]any{
		"cobertura_eps": {
			{"DANE", "REGIÓN", "DEPARTAMENTO", "MUNICIPIO"},
			{"05001", "ANTIOQUIA", "ANTIOQUIA", "MEDELLÍN"},
			{"11001", "CENTRO", "BOGOTÁ D.C.", "BOGOTÁ"},
		},
	})
	writeBook(t, filepath.Join(dir, "sgsss.xlsx"), map[string][][]any{
		"consolidado": {
			{"PERIODO", "ENTIDAD", "DEPTO", "CONTRIBUTIVO", "SUBSIDIADO", "TOTAL"},
			{"2024-01", "EPS A", "ANTIOQUIA", 300.0, 100.0, 400.0},
			{"2024-01", "EPS B", "BOGOTA", 50.0, 50.0, 100.0},
		},
	})

	conf := config.Default()
	conf.Data.Dir = dir
	conf.Data.Informes = "informes.xlsx"
	conf.Data.Territorialidad = "territorio.xlsx"
	conf.Data.SGSSS = "sgsss.xlsx"
	return conf
}

func TestIngresoRender(t *testing.T) {
	conf := testConfig(t)
	b := NewIngreso(conf, load.NewLoader(), zap.NewNop())

	v, err := b.Render(dataset.Selection{})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Notices) != 0 {
		t.Errorf("avisos inesperados: %v", v.Notices)
	}
	if len(v.KPIGroups) == 0 || v.KPIGroups[0].KPIs[0].Value != "350" {
		t.Fatalf("KPI de presupuesto total: %+v", v.KPIGroups)
	}

	mes := v.Table("mes")
	if mes == nil {
		t.Fatal("falta la tabla por mes")
	}
	if got := dataset.Str(mes.Export.Rows[0]["MES"]); got != "ENE" {
		t.Errorf("primer mes = %q", got)
	}
	// cruce territorial aplicado: la tabla por región existe
	if v.Table("region") == nil {
		t.Errorf("falta la tabla por región tras el cruce")
	}
	if v.Table("componentes") == nil {
		t.Errorf("falta la tabla de componentes")
	}

	// filtrar por régimen recorta los totales
	v, err = b.Render(dataset.Selection{"REGIMEN": "CONTRIBUTIVO"})
	if err != nil {
		t.Fatal(err)
	}
	if v.KPIGroups[0].KPIs[0].Value != "50" {
		t.Errorf("KPI filtrado = %q, quería 50", v.KPIGroups[0].KPIs[0].Value)
	}
}

func TestIngresoRenderSinTerritorio(t *testing.T) {
	conf := testConfig(t)
	conf.Data.Territorialidad = "no_existe.xlsx"
	b := NewIngreso(conf, load.NewLoader(), zap.NewNop())

	v, err := b.Render(dataset.Selection{})
	if err != nil {
		t.Fatalf("la falta de territorialidad no debe tumbar el tablero: %v", err)
	}
	if len(v.Notices) == 0 {
		t.Errorf("debía avisar de filtros limitados")
	}
	if v.Table("region") != nil {
		t.Errorf("sin cruce no debería haber tabla por región")
	}
	if v.Table("mes") == nil {
		t.Errorf("la tabla por mes debe seguir disponible")
	}
}

func TestPoblacionRender(t *testing.T) {
	conf := testConfig(t)
	b := NewPoblacion(conf, load.NewLoader(), zap.NewNop())

	v, err := b.Render(dataset.Selection{})
	if err != nil {
		t.Fatal(err)
	}
	kpis := v.KPIGroups[0].KPIs
	if kpis[1].Value != "1,000" {
		t.Errorf("población BDUA = %q", kpis[1].Value)
	}
	// participación país: 1000 de 3000
	if kpis[3].Value != "33.33%" {
		t.Errorf("participación país = %q", kpis[3].Value)
	}
	// un grupo de tarjetas por cada régimen
	if len(v.KPIGroups) != 3 {
		t.Errorf("grupos de KPIs = %d, quería total + 2 regímenes", len(v.KPIGroups))
	}
	reg := v.Table("regimen")
	if reg == nil {
		t.Fatal("falta la tabla por régimen")
	}
	if len(reg.Export.Rows) != 2 {
		t.Errorf("filas por régimen = %d", len(reg.Export.Rows))
	}
}

func TestSGSSSRender(t *testing.T) {
	conf := testConfig(t)
	b := NewSGSSS(conf, load.NewLoader(), zap.NewNop())

	v, err := b.Render(dataset.Selection{})
	if err != nil {
		t.Fatal(err)
	}
	if v.KPIGroups[0].KPIs[0].Value != "500" {
		t.Errorf("total afiliados = %q", v.KPIGroups[0].KPIs[0].Value)
	}
	rank := v.Table("entidad")
	if rank == nil {
		t.Fatal("falta el ranking por entidad")
	}
	if rank.Export.Rows[0]["ENTIDAD"] != "EPS A" {
		t.Errorf("ranking desordenado: %v", rank.Export.Rows[0])
	}
	last := rank.Export.Rows[len(rank.Export.Rows)-1]
	if dataset.Str(last["ENTIDAD"]) != report.TotalLabel {
		t.Errorf("falta la fila TOTAL del ranking")
	}

	// filtrar por entidad recorta los KPIs
	v, err = b.Render(dataset.Selection{"ENTIDAD": "EPS A"})
	if err != nil {
		t.Fatal(err)
	}
	if v.KPIGroups[0].KPIs[0].Value != "400" {
		t.Errorf("total filtrado = %q", v.KPIGroups[0].KPIs[0].Value)
	}
}

func TestRegistryYLookup(t *testing.T) {
	conf := testConfig(t)
	boards := Registry(conf, load.NewLoader(), zap.NewNop())
	if len(boards) != 3 {
		t.Fatalf("tableros = %d", len(boards))
	}
	if b := Lookup(boards, "poblacion"); b == nil || b.Slug() != "poblacion" {
		t.Errorf("Lookup(poblacion) = %v", b)
	}
	if b := Lookup(boards, "nope"); b != nil {
		t.Errorf("Lookup de slug desconocido debía dar nil")
	}
}
