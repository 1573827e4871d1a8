package board

import (
	"errors"

	"github.com/dmendozad/tableros-vpo/internal/config"
	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/dmendozad/tableros-vpo/internal/load"
	"github.com/dmendozad/tableros-vpo/internal/report"
	"go.uber.org/zap"
)

// pobGeoDims son las dimensiones territoriales que trae el extracto de
// población tras el cruce con la referencia de municipios.
var pobGeoDims = []string{"REGIÓN", "REGIONAL", "SUBREGIÓN", "DEPARTAMENTO", "MUNICIPIO"}

var poblacionSchema = load.Schema{
	Expected: []string{
		"ANO", "MES", "REGIMEN", "DANE",
		"POBLACION_BDUA", "POBLACION_INTEGRAL", "POBLACION_PAIS", "PRESUPUESTO",
	},
	NumericHints: []string{"POBLACION", "PRESUPUESTO"},
	UpperText:    []string{"ANO", "MES", "REGIMEN"},
	DeriveFecha:  true,
}

var pobRename = map[string]string{
	"MES":                  "Mes",
	"REGIMEN":              "Régimen",
	"REGIONAL":             "Regional",
	"ZONAL":                "Zonal",
	"REGIÓN":               "Región",
	"SUBREGIÓN":            "Subregión",
	"PRESUPUESTO":          "Presupuesto",
	"POBLACION_BDUA":       "Población BDUA",
	"POBLACION_PAIS":       "Población País",
	"PORCENTAJE_EJECUCION": "% Ejecución",
	"PARTICIPACION_PAIS":   "% Participación País",
}

// Poblacion es el tablero de población afiliada según BDUA.
type Poblacion struct {
	conf   *config.Configuration
	loader *load.Loader
	log    *zap.Logger
}

func NewPoblacion(conf *config.Configuration, loader *load.Loader, log *zap.Logger) *Poblacion {
	return &Poblacion{conf: conf, loader: loader, log: log}
}

func (b *Poblacion) Slug() string  { return "poblacion" }
func (b *Poblacion) Title() string { return "Población BDUA" }

// pobSpec es la agregación estándar: población presupuestada vs. BDUA, más la
// participación de la población BDUA sobre la del país.
func pobSpec(groupBy []string, monthOrder bool, sortBy string, desc bool) report.Spec {
	return report.Spec{
		GroupBy: groupBy,
		Sums:    []string{"PRESUPUESTO", "POBLACION_BDUA", "POBLACION_PAIS"},
		Metrics: []report.Metric{
			{Num: "POBLACION_BDUA", Den: "PRESUPUESTO", Ratio: "PORCENTAJE_EJECUCION"},
			{Num: "POBLACION_BDUA", Den: "POBLACION_PAIS", Ratio: "PARTICIPACION_PAIS"},
		},
		MonthOrder: monthOrder,
		SortBy:     sortBy,
		SortDesc:   desc,
		Rename:     pobRename,
	}
}

func (b *Poblacion) Render(sel dataset.Selection) (*View, error) {
	main, err := b.loader.Dataset(b.conf.Data.InformesPath(), b.conf.Data.SheetPoblacion)
	if err != nil {
		return nil, err
	}
	main = load.Prepare(main, poblacionSchema)

	v := &View{Slug: b.Slug(), Title: b.Title()}

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

	full := dataset.Apply(main, sel, "ANO")
	kpis := dataset.Apply(full, sel, append([]string{"MES", "REGIMEN"}, pobGeoDims...)...)
	trend := dataset.Apply(full, sel, append([]string{"REGIMEN"}, pobGeoDims...)...)

	v.Filters = b.filters(main, sel)

	bdua := report.Sum(kpis, "POBLACION_BDUA")
	pais := report.Sum(kpis, "POBLACION_PAIS")
	pres := report.Sum(kpis, "PRESUPUESTO")
	v.KPIGroups = append(v.KPIGroups, KPIGroup{
		Title: "Población Total",
		KPIs: []KPI{
			{Label: "Población Presupuestada", Value: report.FmtMoney(pres)},
			{Label: "Población BDUA", Value: report.FmtMoney(bdua)},
			{Label: "Población País", Value: report.FmtMoney(pais)},
			{Label: "% Participación País", Value: report.FmtPct(report.Ratio(bdua, pais))},
		},
	})
	// un grupo de tarjetas por régimen presente en la selección
	for _, reg := range dataset.Distinct(kpis, "REGIMEN") {
		sub := dataset.Filter(kpis, "REGIMEN", reg)
		rb := report.Sum(sub, "POBLACION_BDUA")
		rp := report.Sum(sub, "PRESUPUESTO")
		v.KPIGroups = append(v.KPIGroups, KPIGroup{
			Title: "Régimen " + reg,
			KPIs: []KPI{
				{Label: "Población BDUA", Value: report.FmtMoney(rb)},
				{Label: "% Ejecución", Value: report.FmtPct(report.Ratio(rb, rp))},
				{Label: "% del Total BDUA", Value: report.FmtPct(report.Ratio(rb, bdua))},
			},
		})
	}

	v.Tables = append(v.Tables,
		RenderedTable{ID: "mes", Title: "Población por Mes", Table: report.Aggregate(trend, pobSpec([]string{"MES"}, true, "", false))},
		RenderedTable{ID: "regimen", Title: "Población por Régimen", Table: report.Aggregate(kpis, pobSpec([]string{"REGIMEN"}, false, "", false))},
		RenderedTable{ID: "regional", Title: "Población por Regional", Table: report.Aggregate(kpis, pobSpec([]string{"REGIONAL"}, false, "PARTICIPACION_PAIS", true))},
		RenderedTable{ID: "regional-zonal", Title: "Detalle Regional y Zonal", Table: report.Aggregate(kpis, pobSpec([]string{"REGIONAL", "ZONAL"}, false, "PARTICIPACION_PAIS", true))},
		RenderedTable{ID: "region", Title: "Población por Región", Table: report.Aggregate(kpis, pobSpec([]string{"REGIÓN"}, false, "", false))},
		RenderedTable{ID: "region-subregion", Title: "Detalle Región y Subregión", Table: report.Aggregate(kpis, pobSpec([]string{"REGIÓN", "SUBREGIÓN"}, false, "", false))},
	)

	v.Charts = append(v.Charts,
		chartFromTable(v.Table("mes"),
			"mes", "Población Presupuestada vs. BDUA por Mes",
			"MES", []string{"PRESUPUESTO", "POBLACION_BDUA"},
			[]string{"Presupuestada", "BDUA"}, "PORCENTAJE_EJECUCION"),
		chartFromTable(v.Table("regimen"),
			"regimen", "Población BDUA por Régimen",
			"REGIMEN", []string{"POBLACION_BDUA"},
			[]string{"Población BDUA"}, "PARTICIPACION_PAIS"),
	)

	return v, nil
}

func (b *Poblacion) filters(main *dataset.Dataset, sel dataset.Selection) []FilterControl {
	out := []FilterControl{
		control(main, "ANO", "Año", sel, false),
		monthControl(main, "MES", "Mes", sel),
		control(main, "REGIMEN", "Régimen", sel, false),
	}
	region := dataset.Filter(main, "REGIÓN", sel.Get("REGIÓN"))
	depto := dataset.Filter(region, "DEPARTAMENTO", sel.Get("DEPARTAMENTO"))
	geoSrc := map[string]*dataset.Dataset{"DEPARTAMENTO": region, "MUNICIPIO": depto}
	labels := map[string]string{
		"REGIÓN": "Región", "REGIONAL": "Regional", "SUBREGIÓN": "Subregión",
		"DEPARTAMENTO": "Departamento", "MUNICIPIO": "Municipio",
	}
	for _, dim := range pobGeoDims {
		if !main.HasCol(dim) {
			continue
		}
		src := main
		if s, ok := geoSrc[dim]; ok {
			src = s
		}
		out = append(out, control(src, dim, labels[dim], sel, true))
	}
	return out
}
