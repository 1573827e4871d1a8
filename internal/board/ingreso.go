package board

import (
	"errors"

	"github.com/dmendozad/tableros-vpo/internal/config"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/load"
	"github.com/dmendozad/tableros-vpo/internal/report"
	"go.uber.org/zap"
)

// geoDims son las dimensiones de filtro territorial, en el orden en que se
// aplican (la jerarquía región -> departamento -> municipio sale del orden).
var geoDims = []string{
	"REGIÓN", "DEPARTAMENTO", "MUNICIPIO", "REGIONAL", "ZONAL", "PROVINCIA",
	"CATEGORIA_DEPARTAMENTO", "CATEGORIA_MUNICIPIO", "DESCRIPCIÓN_ZONA", "SUBREGIÓN",
}

var ingresoSchema = load.Schema{
	Expected: []string{
		"ANO", "MES", "REGIMEN", "DANE",
		"TOTAL_PRESUPUESTO", "TOTAL_EJECUTADO",
		"PRESUPUESTO_UPC_LMA", "EJECUTADO_UPC_LMA",
		"PRESUPUESTO_PYP", "EJECUTADO_PYP",
		"PRESUPUESTO_PROVISION", "EJECUTADO_PROVISION",
	},
	NumericHints: []string{"TOTAL", "PRESUPUESTO", "EJECUTADO"},
	UpperText:    []string{"ANO", "MES", "REGIMEN"},
	DeriveFecha:  true,
}

var componentesSchema = load.Schema{
	Expected:     []string{"PRESUPUESTO", "EJECUTADO"},
	NumericHints: []string{"TOTAL", "PRESUPUESTO", "EJECUTADO"},
	UpperText:    []string{"ANO", "MES", "REGIMEN", "CONCEPTO"},
	// la diferencia precalculada del extracto se descarta y se recalcula
	Drop: []string{"DIFERENCIA"},
}

var kpiRename = map[string]string{
	"TOTAL_PRESUPUESTO":    "Presupuesto",
	"TOTAL_EJECUTADO":      "Ejecutado",
	report.DiffCol:         "Diferencia",
	"PORCENTAJE_EJECUCION": "% Ejecución",
	"MES":                  "Mes",
	"REGIMEN":              "Régimen",
	"REGIONAL":             "Regional",
	"REGIÓN":               "Región",
	"SUBREGIÓN":            "Subregión",
	"ZONAL":                "Zonal",
}

// Ingreso es el tablero de ejecución del ingreso UPC.
type Ingreso struct {
	conf   *config.Configuration
	loader *load.Loader
	log    *zap.Logger
}

func NewIngreso(conf *config.Configuration, loader *load.Loader, log *zap.Logger) *Ingreso {
	return &Ingreso{conf: conf, loader: loader, log: log}
}

func (b *Ingreso) Slug() string  { return "ingreso" }
func (b *Ingreso) Title() string { return "Ejecución del Ingreso UPC" }

// kpiSpec es la agregación estándar del tablero: sumas de presupuesto y
// ejecutado, diferencia y % de ejecución por la columna pedida.
func kpiSpec(groupCol string, monthOrder bool) report.Spec {
	return report.Spec{
		GroupBy:    []string{groupCol},
		Sums:       []string{"TOTAL_PRESUPUESTO", "TOTAL_EJECUTADO"},
		Metrics:    []report.Metric{{Num: "TOTAL_EJECUTADO", Den: "TOTAL_PRESUPUESTO", Ratio: "PORCENTAJE_EJECUCION"}},
		WithDiff:   true,
		MonthOrder: monthOrder,
		Rename:     kpiRename,
	}
}

func (b *Ingreso) Render(sel dataset.Selection) (*View, error) {
	// el extracto principal es obligatorio: si falta, el tablero no se pinta
	main, err := b.loader.Dataset(b.conf.Data.InformesPath(), b.conf.Data.SheetIngreso)
	if err != nil {
		return nil, err
	}
	main = load.Prepare(main, ingresoSchema)

	v := &View{Slug: b.Slug(), Title: b.Title()}

	// cruce territorial: opcional, degrada a filtros limitados
	geo, gerr := b.loader.Dataset(b.conf.Data.TerritorialidadPath(), b.conf.Data.SheetCobertura)
	if gerr != nil {
		b.log.Warn("territorialidad no disponible", zap.Error(gerr))
		v.Notices = append(v.Notices, "Archivo de territorialidad no cargado. Los filtros geográficos estarán limitados.")
	} else {
		joined, jerr := dataset.JoinGeo(main, geo, "DANE", dataset.GeoCandidates)
		if errors.Is(jerr, dataset.ErrPartialJoin) {
			v.Notices = append(v.Notices, "No se pudo hacer el cruce territorial completo; el tablero sigue funcionando con filtros limitados.")
		} else {
			main = joined
		}
	}

	// componentes: opcional, su pestaña reporta "sin datos" si falta
	var comp *dataset.Dataset
	if c, cerr := b.loader.Dataset(b.conf.Data.InformesPath(), b.conf.Data.SheetComponentes); cerr != nil {
		b.log.Warn("componentes no disponible", zap.Error(cerr))
		v.Notices = append(v.Notices, "Archivo de Componentes no cargado o vacío.")
	} else {
		comp = load.Prepare(c, componentesSchema)
	}

	// vistas con subconjuntos de filtros distintos: la tendencia mensual
	// omite el filtro de mes para que todos los meses sigan visibles
	full := dataset.Apply(main, sel, "ANO")
	kpis := dataset.Apply(full, sel, append([]string{"MES", "REGIMEN"}, geoDims...)...)
	trend := dataset.Apply(full, sel, append([]string{"REGIMEN"}, geoDims...)...)
	compView := dataset.Apply(comp, sel, "ANO", "MES", "REGIMEN")

	v.Filters = b.filters(main, sel)

	// KPIs de ejecución total
	tp := report.Sum(kpis, "TOTAL_PRESUPUESTO")
	te := report.Sum(kpis, "TOTAL_EJECUTADO")
	v.KPIGroups = append(v.KPIGroups, KPIGroup{
		Title: "Ejecución Total",
		KPIs: []KPI{
			{Label: "Presupuesto Total", Value: report.FmtMoney(tp)},
			{Label: "Ejecutado Total", Value: report.FmtMoney(te)},
			{Label: "Diferencia (Ejecutado - Presupuesto)", Value: report.FmtMoney(te - tp)},
			{Label: "% Ejecución Global", Value: report.FmtPct(report.Ratio(te, tp))},
		},
	})

	v.Tables = append(v.Tables,
		RenderedTable{ID: "subcuentas", Title: "Ejecución por Subcuenta", Table: subcuentasTable(kpis)},
		RenderedTable{ID: "mes", Title: "Ejecución por Mes", Table: report.Aggregate(trend, kpiSpec("MES", true))},
		RenderedTable{ID: "regimen", Title: "Ejecución por Régimen", Table: report.Aggregate(kpis, kpiSpec("REGIMEN", false))},
		RenderedTable{ID: "regional", Title: "Ejecución por Regional", Table: report.Aggregate(kpis, kpiSpec("REGIONAL", false))},
		RenderedTable{ID: "region", Title: "Ejecución por Región", Table: report.Aggregate(kpis, kpiSpec("REGIÓN", false))},
		RenderedTable{ID: "subregion", Title: "Detalle por Subregión", Table: report.Aggregate(kpis, kpiSpec("SUBREGIÓN", false))},
		RenderedTable{ID: "zonal", Title: "Detalle por Zonal", Table: report.Aggregate(kpis, kpiSpec("ZONAL", false))},
		RenderedTable{ID: "componentes", Title: "Ejecución por Componente", Table: report.Aggregate(compView, report.Spec{
			GroupBy:   []string{"CONCEPTO"},
			Sums:      []string{"PRESUPUESTO", "EJECUTADO"},
			Metrics:   []report.Metric{{Num: "EJECUTADO", Den: "PRESUPUESTO", Ratio: "PORCENTAJE_EJECUCION"}},
			WithDiff:  true,
			WithTotal: true,
			Rename: map[string]string{
				"CONCEPTO":             "Concepto",
				"PRESUPUESTO":          "Presupuesto",
				"EJECUTADO":            "Ejecutado",
				report.DiffCol:         "Diferencia",
				"PORCENTAJE_EJECUCION": "% Ejecución",
			},
		})},
	)

	mesTable := v.Table("mes")
	v.Charts = append(v.Charts, chartFromTable(mesTable,
		"mes", "Presupuesto vs. Ejecutado por Mes",
		"MES", []string{"TOTAL_PRESUPUESTO", "TOTAL_EJECUTADO"},
		[]string{"Presupuesto", "Ejecutado"}, "PORCENTAJE_EJECUCION"))

	return v, nil
}

func (b *Ingreso) filters(main *dataset.Dataset, sel dataset.Selection) []FilterControl {
	out := []FilterControl{
		control(main, "ANO", "Año", sel, false),
		monthControl(main, "MES", "Mes", sel),
		control(main, "REGIMEN", "Régimen", sel, false),
	}
	// las opciones de departamento y municipio se estrechan con el padre
	region := dataset.Filter(main, "REGIÓN", sel.Get("REGIÓN"))
	depto := dataset.Filter(region, "DEPARTAMENTO", sel.Get("DEPARTAMENTO"))
	geoSrc := map[string]*dataset.Dataset{"DEPARTAMENTO": region, "MUNICIPIO": depto}
	labels := map[string]string{
		"REGIÓN": "Región", "DEPARTAMENTO": "Departamento", "MUNICIPIO": "Municipio",
		"REGIONAL": "Regional", "ZONAL": "Zonal", "PROVINCIA": "Provincia",
		"CATEGORIA_DEPARTAMENTO": "Categoría Departamento",
		"CATEGORIA_MUNICIPIO":    "Categoría Municipio",
		"DESCRIPCIÓN_ZONA":       "Descripción Zona", "SUBREGIÓN": "Subregión",
	}
	for _, dim := range geoDims {
		src := main
		if s, ok := geoSrc[dim]; ok {
			src = s
		}
		if !main.HasCol(dim) {
			continue // cruce parcial: ese filtro no se ofrece
		}
		out = append(out, control(src, dim, labels[dim], sel, true))
	}
	return out
}

// subcuentasTable arma la tabla fija de subcuentas (UPC LMA, PYP, Provisión)
// sumando cada par de columnas presupuesto/ejecutado de la vista filtrada.
func subcuentasTable(d *dataset.Dataset) *report.Table {
	if d.Empty() {
		return nil
	}
	rubros := []struct{ key, label string }{
		{"UPC_LMA", "UPC LMA"},
		{"PYP", "PYP"},
		{"PROVISION", "PROVISION"},
	}
	export := dataset.New("SUBCUENTA", "PRESUPUESTO", "EJECUTADO", report.DiffCol, "PORCENTAJE_EJECUCION")
	display := dataset.New("Subcuenta", "Presupuesto", "Ejecutado", "Diferencia", "% Ejecución")
	for _, r := range rubros {
		p := report.Sum(d, "PRESUPUESTO_"+r.key)
		e := report.Sum(d, "EJECUTADO_"+r.key)
		pct := report.Ratio(e, p)
		export.Append(map[string]any{
			"SUBCUENTA": r.label, "PRESUPUESTO": p, "EJECUTADO": e,
			report.DiffCol: e - p, "PORCENTAJE_EJECUCION": pct,
		})
		display.Append(map[string]any{
			"Subcuenta": r.label, "Presupuesto": report.FmtMoney(p),
			"Ejecutado": report.FmtMoney(e), "Diferencia": report.FmtMoney(e - p),
			"% Ejecución": report.FmtPct(pct),
		})
	}
	return &report.Table{Export: export, Display: display}
}
